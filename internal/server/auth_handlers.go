package server

import (
	"errors"
	"net/http"

	"github.com/driftboard/listlink/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	CreatedAtSeconds int64  `json:"created_at_s"`
}

func newUserPayload(user *users.User) userPayload {
	return userPayload{
		ID:               user.ID,
		Email:            user.Email,
		CreatedAtSeconds: user.CreatedAt.Unix(),
	}
}

func (h *httpHandler) handleSignUp(c *gin.Context) {
	var request credentialsPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.userService.SignUp(c.Request.Context(), request.Email, request.Password, c.ClientIP())
	if err != nil {
		h.respondSignUpError(c, err)
		return
	}

	if !h.issueSession(c, user) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": newUserPayload(user)})
}

func (h *httpHandler) respondSignUpError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, users.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too_many_requests"})
	case errors.Is(err, users.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
	case errors.Is(err, users.ErrInvalidEmail), errors.Is(err, users.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	default:
		h.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func (h *httpHandler) handleSignIn(c *gin.Context) {
	var request credentialsPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.userService.SignIn(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		// Unknown address and wrong password take the same path so the
		// response never reveals whether an account exists.
		switch {
		case errors.Is(err, users.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too_many_requests"})
		case errors.Is(err, users.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		default:
			h.logger.Error("signin failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	if !h.issueSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserPayload(user)})
}

func (h *httpHandler) handleSignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleMe(c *gin.Context) {
	identity := h.currentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		h.logger.Error("account lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserPayload(user)})
}

// issueSession sets the session cookie for the user. The token also works
// as a Bearer header for non-browser clients.
func (h *httpHandler) issueSession(c *gin.Context, user *users.User) bool {
	token, err := h.tokens.IssueToken(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, int(h.tokens.TokenTTL().Seconds()), "/", "", false, true)
	return true
}
