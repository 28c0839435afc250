package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/models"
	"github.com/streamspace-dev/chatcore/internal/session"
	"github.com/streamspace-dev/chatcore/internal/store"
)

// authHandlers implements the thin HTTP surface that issues and clears
// the id/sess cookie pair the WebSocket edge's auth guard reads. The
// request/response form handling this wraps (validation, admin CRUD) is
// intentionally minimal: it is not the hard part of this system.
type authHandlers struct {
	store    *store.Store
	sessions *session.Registry
}

func (a *authHandlers) signup(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.HandleError(c, apperr.BadRequest(err.Error()))
		return
	}

	user, err := a.store.CreateUser(c.Request.Context(), &req)
	if err != nil {
		apperr.HandleError(c, apperr.InternalServer(err.Error()))
		return
	}

	a.issueSession(c, user.ID)
	c.JSON(http.StatusOK, user)
}

func (a *authHandlers) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.HandleError(c, apperr.BadRequest(err.Error()))
		return
	}

	user, err := a.store.VerifyPassword(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperr.HandleError(c, apperr.BadRequest(err.Error()))
		return
	}

	a.issueSession(c, user.ID)
	c.JSON(http.StatusOK, user)
}

func (a *authHandlers) logout(c *gin.Context) {
	idCookie, err := c.Cookie("id")
	sessCookie, sessErr := c.Cookie("sess")
	if err == nil && sessErr == nil {
		if userID, parseErr := strconv.ParseInt(idCookie, 10, 64); parseErr == nil {
			_ = a.sessions.Revoke(c.Request.Context(), userID, sessCookie)
		}
	}

	c.SetCookie("id", "", -1, "/", "", true, true)
	c.SetCookie("sess", "", -1, "/", "", true, true)
	c.Status(http.StatusOK)
}

func (a *authHandlers) issueSession(c *gin.Context, userID int64) {
	token, err := a.sessions.Issue(c.Request.Context(), userID)
	if err != nil {
		apperr.HandleError(c, apperr.InternalServer(err.Error()))
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("id", strconv.FormatInt(userID, 10), cookieMaxAge, "/", "", true, true)
	c.SetCookie("sess", token, cookieMaxAge, "/", "", true, true)
}
