package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/metrics"
	"github.com/sujalbistaa/suara/internal/service"
	"github.com/sujalbistaa/suara/internal/ws"
)

// --- Structs for request binding ---

type pageQuery struct {
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
	UserID string `form:"userId"`
	Search string `form:"q"`
}

type ReactInput struct {
	InteractionType string `json:"interactionType"`
}

// --- Handlers ---

type Env struct {
	Svc     *service.Service
	Hub     *ws.Hub
	Metrics *metrics.Metrics
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apierror.BadRequest("invalid request body"))
		return false
	}
	return true
}

func bindPage(c *gin.Context) (pageQuery, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, apierror.BadRequest("limit and offset must be integers"))
		return q, false
	}
	return q, true
}

// Health answers the legacy "test" probe.
func (e *Env) Health(c *gin.Context) {
	respond(c, http.StatusOK, "API is working", gin.H{"status": "ok"})
}

// --- Auth ---

func (e *Env) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	sess, err := e.Svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "registration successful", sess)
}

func (e *Env) Login(c *gin.Context) {
	var in service.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	sess, err := e.Svc.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "login successful", sess)
}

func (e *Env) Me(c *gin.Context) {
	respond(c, http.StatusOK, "current user", currentUser(c))
}

// --- Posts ---

func (e *Env) GetPosts(c *gin.Context) {
	q, ok := bindPage(c)
	if !ok {
		return
	}
	list, err := e.Svc.ListPosts(c.Request.Context(), currentUser(c), service.ListPostsQuery{
		UserID: q.UserID,
		Page:   service.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "posts retrieved", list)
}

func (e *Env) GetUserPosts(c *gin.Context) {
	q, ok := bindPage(c)
	if !ok {
		return
	}
	list, err := e.Svc.ListPosts(c.Request.Context(), currentUser(c), service.ListPostsQuery{
		UserID: c.Param("id"),
		Page:   service.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "posts retrieved", list)
}

func (e *Env) GetPost(c *gin.Context) {
	post, err := e.Svc.GetPost(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "post retrieved", post)
}

func (e *Env) CreatePost(c *gin.Context) {
	var in service.CreatePostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := e.Svc.CreatePost(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "post created", post)
}

func (e *Env) UpdatePost(c *gin.Context) {
	var in service.UpdatePostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := e.Svc.UpdatePost(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "post updated", post)
}

func (e *Env) DeletePost(c *gin.Context) {
	if err := e.Svc.DeletePost(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "post deleted", gin.H{"idPostingan": c.Param("id")})
}

// --- Reactions ---

func (e *Env) React(c *gin.Context) {
	var in ReactInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := e.Svc.React(c.Request.Context(), currentUser(c), c.Param("id"), in.InteractionType)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "reaction saved", res)
}

func (e *Env) RemoveReaction(c *gin.Context) {
	res, err := e.Svc.RemoveReaction(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "reaction removed", res)
}

// --- Comments ---

func (e *Env) GetComments(c *gin.Context) {
	list, err := e.Svc.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "comments retrieved", list)
}

func (e *Env) CreateComment(c *gin.Context) {
	var in service.CreateCommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := e.Svc.CreateComment(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "comment created", comment)
}

func (e *Env) DeleteComment(c *gin.Context) {
	if err := e.Svc.DeleteComment(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "comment deleted", gin.H{"idComment": c.Param("id")})
}

// --- Profile ---

func (e *Env) GetProfile(c *gin.Context) {
	prof, err := e.Svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "profile retrieved", prof)
}

func (e *Env) UpdateProfile(c *gin.Context) {
	var in service.UpdateProfileInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := e.Svc.UpdateProfile(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "profile updated", user)
}

func (e *Env) ChangePassword(c *gin.Context) {
	var in service.ChangePasswordInput
	if !bindJSON(c, &in) {
		return
	}
	if err := e.Svc.ChangePassword(c.Request.Context(), currentUser(c), in); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "password changed", nil)
}

// --- Notifications ---

func (e *Env) GetNotifications(c *gin.Context) {
	q, ok := bindPage(c)
	if !ok {
		return
	}
	list, err := e.Svc.ListNotifications(c.Request.Context(), currentUser(c), service.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "notifications retrieved", list)
}

func (e *Env) MarkNotificationRead(c *gin.Context) {
	n, err := e.Svc.MarkNotificationRead(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "notification marked as read", n)
}

func (e *Env) MarkAllNotificationsRead(c *gin.Context) {
	changed, err := e.Svc.MarkAllNotificationsRead(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "all notifications marked as read", gin.H{"updated": changed})
}

// --- Uploads ---

func (e *Env) UploadImage(c *gin.Context) {
	var in service.UploadImageInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := e.Svc.UploadImage(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "image uploaded", res)
}

// --- Admin ---

func (e *Env) AdminStats(c *gin.Context) {
	st, err := e.Svc.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "stats retrieved", st)
}

func (e *Env) AdminUsers(c *gin.Context) {
	q, ok := bindPage(c)
	if !ok {
		return
	}
	list, err := e.Svc.ListUsers(c.Request.Context(), currentUser(c), service.ListUsersQuery{
		Search: q.Search,
		Page:   service.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "users retrieved", list)
}

func (e *Env) AdminSetRole(c *gin.Context) {
	var in service.SetRoleInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := e.Svc.SetUserRole(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "role updated", user)
}

func (e *Env) AdminDeleteUser(c *gin.Context) {
	if err := e.Svc.DeleteUser(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "user deleted", gin.H{"idUsers": c.Param("id")})
}

// --- WebSocket ---

// ServeWs accepts an optional token query parameter. Anonymous viewers get
// broadcasts only.
func (e *Env) ServeWs(c *gin.Context) {
	userID := ""
	if token := c.Query("token"); token != "" {
		user, err := e.Svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		userID = user.ID
	}
	ws.ServeWs(e.Hub, c.Writer, c.Request, userID)
}
