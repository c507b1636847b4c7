package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/suara/internal/service"
)

func (s *RoutesSuite) exec(body gin.H, token string) (int, envelope) {
	w, env := s.do(http.MethodPost, "/api/exec", body, token)
	return w.Code, env
}

func (s *RoutesSuite) TestExecDefaultsToTest() {
	w, env := s.do(http.MethodGet, "/api/exec", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("API is working", env.Message)

	code, env := s.exec(gin.H{}, "")
	s.Equal(http.StatusOK, code)
	s.Equal("API is working", env.Message)

	code, env = s.exec(gin.H{"action": "dropTables"}, "")
	s.Equal(http.StatusBadRequest, code)
	s.Equal("BAD_REQUEST", env.Code)
}

func (s *RoutesSuite) postRaw(path, contentType, body string) (int, envelope) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *RoutesSuite) TestExecUnparseableBodyFallsBackToTest() {
	for _, tc := range []struct {
		contentType, body string
	}{
		{"application/json", `"not json"`},
		{"application/json", `{"action":`},
		{"application/x-www-form-urlencoded", "action=getPosts"},
	} {
		code, env := s.postRaw("/api/exec", tc.contentType, tc.body)
		s.Equal(http.StatusOK, code, tc.body)
		s.Equal("API is working", env.Message, tc.body)
	}

	// Query fields still apply when the body is unreadable.
	code, env := s.postRaw("/api/exec?action=getPosts", "application/json", "{oops")
	s.Equal(http.StatusOK, code)
	s.Equal("posts retrieved", env.Message)
}

func (s *RoutesSuite) TestExecLegacyFlow() {
	code, env := s.exec(gin.H{
		"action": "register", "email": "dina@kampus.ac.id", "username": "dina", "password": "rahasia1",
	}, "")
	s.Require().Equal(http.StatusOK, code, env.Error)
	var sess service.Session
	s.Require().NoError(json.Unmarshal(env.Data, &sess))

	code, env = s.exec(gin.H{"action": "createPost", "judul": "Lab", "deskripsi": "PC lab lambat"}, "")
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("UNAUTHORIZED", env.Code)

	// Token passed as a field rather than a header.
	code, env = s.exec(gin.H{"action": "createPost", "token": sess.Token, "judul": "Lab", "deskripsi": "PC lab lambat"}, "")
	s.Require().Equal(http.StatusOK, code, env.Error)
	var post struct {
		ID string `json:"idPostingan"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &post))

	code, _ = s.exec(gin.H{"action": "likeDislike", "idPostingan": post.ID, "interactionType": "LIKE"}, sess.Token)
	s.Equal(http.StatusOK, code)
	code, env = s.exec(gin.H{"action": "likeDislike", "idPostingan": post.ID, "interactionType": "like"}, sess.Token)
	s.Equal(http.StatusConflict, code)
	s.Equal("CONFLICT", env.Code)

	code, _ = s.exec(gin.H{"action": "createComment", "idPostingan": post.ID, "comment": "ada yang sama?"}, sess.Token)
	s.Equal(http.StatusOK, code)

	w, env := s.do(http.MethodGet, "/api/exec?action=getComments&idPostingan="+post.ID, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var comments []struct {
		Comment  string `json:"comment"`
		Username string `json:"username"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &comments))
	s.Require().Len(comments, 1)
	s.Equal("dina", comments[0].Username)

	w, env = s.do(http.MethodGet, "/api/exec?action=getPosts&limit=5", nil, sess.Token)
	s.Require().Equal(http.StatusOK, w.Code)
	var list service.PostList
	s.Require().NoError(json.Unmarshal(env.Data, &list))
	s.Equal(5, list.Page.Limit)
	s.Require().Len(list.Posts, 1)
	s.Equal("like", list.Posts[0].MyReaction)

	code, _ = s.exec(gin.H{"action": "getProfile"}, sess.Token)
	s.Equal(http.StatusOK, code)

	code, env = s.exec(gin.H{"action": "getAdminStats"}, sess.Token)
	s.Equal(http.StatusForbidden, code)
	s.Equal("FORBIDDEN", env.Code)

	code, _ = s.exec(gin.H{"action": "deletePost", "idPostingan": post.ID}, sess.Token)
	s.Equal(http.StatusOK, code)
	code, _ = s.exec(gin.H{"action": "getPost", "idPostingan": post.ID}, "")
	s.Equal(http.StatusNotFound, code)
}

func (s *RoutesSuite) TestExecRejectsBadInput() {
	w, env := s.do(http.MethodGet, "/api/exec?action=getPosts&limit=many", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("BAD_REQUEST", env.Code)

	code, env := s.exec(gin.H{"action": "login", "email": "ghost@kampus.ac.id", "password": "x"}, "")
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("INVALID_CREDENTIALS", env.Code)

	code, _ = s.exec(gin.H{"action": "getNotifications", "token": "forged"}, "")
	s.Equal(http.StatusUnauthorized, code)
}
