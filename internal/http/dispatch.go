package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/logger"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/service"
)

// execRequest carries every field any action reads. Query parameters are
// bound first and a JSON body, when present, overrides them.
type execRequest struct {
	Action string `form:"action" json:"action"`
	Token  string `form:"token" json:"token"`

	PostID         string `form:"idPostingan" json:"idPostingan"`
	CommentID      string `form:"idComment" json:"idComment"`
	NotificationID string `form:"idNotification" json:"idNotification"`
	UserID         string `form:"idUsers" json:"idUsers"`
	TargetUserID   string `form:"userId" json:"userId"`

	Judul           *string `form:"judul" json:"judul"`
	Deskripsi       *string `form:"deskripsi" json:"deskripsi"`
	ImageURL        *string `form:"imageUrl" json:"imageUrl"`
	InteractionType string  `form:"interactionType" json:"interactionType"`
	Comment         string  `form:"comment" json:"comment"`

	Email       string  `form:"email" json:"email"`
	Username    *string `form:"username" json:"username"`
	Password    string  `form:"password" json:"password"`
	NIM         *string `form:"nim" json:"nim"`
	Gender      *string `form:"gender" json:"gender"`
	Jurusan     *string `form:"jurusan" json:"jurusan"`
	OldPassword string  `form:"oldPassword" json:"oldPassword"`
	NewPassword string  `form:"newPassword" json:"newPassword"`
	Role        string  `form:"role" json:"role"`

	Image    string `form:"image" json:"image"`
	FileName string `form:"fileName" json:"fileName"`

	Limit  int    `form:"limit" json:"limit"`
	Offset int    `form:"offset" json:"offset"`
	Search string `form:"q" json:"q"`
}

func (r *execRequest) page() service.Page {
	return service.Page{Limit: r.Limit, Offset: r.Offset}
}

func (r *execRequest) targetUser() string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.TargetUserID
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// actionFunc returns the success message and payload for one action.
type actionFunc func(c *gin.Context, req *execRequest, actor *models.User) (string, interface{}, error)

func (e *Env) actions() map[string]actionFunc {
	svc := e.Svc
	return map[string]actionFunc{
		"test": func(*gin.Context, *execRequest, *models.User) (string, interface{}, error) {
			return "API is working", gin.H{"status": "ok"}, nil
		},
		"register": func(c *gin.Context, r *execRequest, _ *models.User) (string, interface{}, error) {
			sess, err := svc.Register(c.Request.Context(), service.RegisterInput{
				Email:    r.Email,
				Username: deref(r.Username),
				Password: r.Password,
				NIM:      deref(r.NIM),
				Gender:   deref(r.Gender),
				Jurusan:  deref(r.Jurusan),
			})
			return "registration successful", sess, err
		},
		"login": func(c *gin.Context, r *execRequest, _ *models.User) (string, interface{}, error) {
			sess, err := svc.Login(c.Request.Context(), service.LoginInput{Email: r.Email, Password: r.Password})
			return "login successful", sess, err
		},
		"getPosts": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			list, err := svc.ListPosts(c.Request.Context(), actor, service.ListPostsQuery{Page: r.page()})
			return "posts retrieved", list, err
		},
		"getUserPosts": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			target := r.targetUser()
			if target == "" && actor != nil {
				target = actor.ID
			}
			if target == "" {
				return "", nil, apierror.ValidationError("idUsers", "idUsers is required")
			}
			list, err := svc.ListPosts(c.Request.Context(), actor, service.ListPostsQuery{UserID: target, Page: r.page()})
			return "posts retrieved", list, err
		},
		"getPost": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			post, err := svc.GetPost(c.Request.Context(), actor, r.PostID)
			return "post retrieved", post, err
		},
		"createPost": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			post, err := svc.CreatePost(c.Request.Context(), actor, service.CreatePostInput{
				Judul:     deref(r.Judul),
				Deskripsi: deref(r.Deskripsi),
				ImageURL:  deref(r.ImageURL),
			})
			return "post created", post, err
		},
		"updatePost": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			post, err := svc.UpdatePost(c.Request.Context(), actor, r.PostID, service.UpdatePostInput{
				Judul:     r.Judul,
				Deskripsi: r.Deskripsi,
				ImageURL:  r.ImageURL,
			})
			return "post updated", post, err
		},
		"deletePost": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			err := svc.DeletePost(c.Request.Context(), actor, r.PostID)
			return "post deleted", gin.H{"idPostingan": r.PostID}, err
		},
		"likeDislike": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			res, err := svc.React(c.Request.Context(), actor, r.PostID, r.InteractionType)
			return "reaction saved", res, err
		},
		"removeReaction": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			res, err := svc.RemoveReaction(c.Request.Context(), actor, r.PostID)
			return "reaction removed", res, err
		},
		"getComments": func(c *gin.Context, r *execRequest, _ *models.User) (string, interface{}, error) {
			list, err := svc.ListComments(c.Request.Context(), r.PostID)
			return "comments retrieved", list, err
		},
		"createComment": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			comment, err := svc.CreateComment(c.Request.Context(), actor, r.PostID, service.CreateCommentInput{Content: r.Comment})
			return "comment created", comment, err
		},
		"deleteComment": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			err := svc.DeleteComment(c.Request.Context(), actor, r.CommentID)
			return "comment deleted", gin.H{"idComment": r.CommentID}, err
		},
		"getProfile": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			target := r.targetUser()
			if target == "" && actor != nil {
				target = actor.ID
			}
			prof, err := svc.GetProfile(c.Request.Context(), target)
			return "profile retrieved", prof, err
		},
		"updateProfile": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			user, err := svc.UpdateProfile(c.Request.Context(), actor, service.UpdateProfileInput{
				Username: r.Username,
				NIM:      r.NIM,
				Gender:   r.Gender,
				Jurusan:  r.Jurusan,
			})
			return "profile updated", user, err
		},
		"changePassword": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			err := svc.ChangePassword(c.Request.Context(), actor, service.ChangePasswordInput{
				OldPassword: r.OldPassword,
				NewPassword: r.NewPassword,
			})
			return "password changed", nil, err
		},
		"getNotifications": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			list, err := svc.ListNotifications(c.Request.Context(), actor, r.page())
			return "notifications retrieved", list, err
		},
		"markNotificationRead": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			n, err := svc.MarkNotificationRead(c.Request.Context(), actor, r.NotificationID)
			return "notification marked as read", n, err
		},
		"markAllNotificationsRead": func(c *gin.Context, _ *execRequest, actor *models.User) (string, interface{}, error) {
			changed, err := svc.MarkAllNotificationsRead(c.Request.Context(), actor)
			return "all notifications marked as read", gin.H{"updated": changed}, err
		},
		"uploadImage": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			res, err := svc.UploadImage(c.Request.Context(), actor, service.UploadImageInput{Image: r.Image, FileName: r.FileName})
			return "image uploaded", res, err
		},
		"getAdminStats": func(c *gin.Context, _ *execRequest, actor *models.User) (string, interface{}, error) {
			st, err := svc.Stats(c.Request.Context(), actor)
			return "stats retrieved", st, err
		},
		"getUsers": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			list, err := svc.ListUsers(c.Request.Context(), actor, service.ListUsersQuery{Search: r.Search, Page: r.page()})
			return "users retrieved", list, err
		},
		"setUserRole": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			user, err := svc.SetUserRole(c.Request.Context(), actor, r.targetUser(), service.SetRoleInput{Role: r.Role})
			return "role updated", user, err
		},
		"deleteUser": func(c *gin.Context, r *execRequest, actor *models.User) (string, interface{}, error) {
			err := svc.DeleteUser(c.Request.Context(), actor, r.targetUser())
			return "user deleted", gin.H{"idUsers": r.targetUser()}, err
		},
	}
}

// Exec serves the action dispatcher. Exactly one action runs per request;
// a missing action, or a body that does not parse, means "test".
func (e *Env) Exec(table map[string]actionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req execRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, apierror.BadRequest("invalid query parameters"))
			return
		}
		if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
			// A body that does not parse is dropped; only query fields remain.
			if err := c.ShouldBindJSON(&req); err != nil {
				logger.Log.Debug("Ignoring unparseable exec body", logger.WithRequestID(requestID(c)), zap.Error(err))
				req = execRequest{}
				_ = c.ShouldBindQuery(&req)
			}
		}

		action := strings.TrimSpace(req.Action)
		if action == "" {
			action = "test"
		}
		run, ok := table[action]
		if !ok {
			respondError(c, apierror.BadRequest("unknown action: "+action))
			return
		}

		actor := currentUser(c)
		if actor == nil {
			if token := strings.TrimSpace(req.Token); token != "" {
				user, err := e.Svc.Authenticate(c.Request.Context(), token)
				if err != nil {
					respondError(c, err)
					return
				}
				actor = user
				c.Set(ctxUser, user)
			}
		}

		message, data, err := run(c, &req, actor)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, message, data)
	}
}
