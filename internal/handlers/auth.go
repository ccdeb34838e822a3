package handlers

import (
	"errors"
	"net/http"

	"gym_timer/internal/repository"
	"gym_timer/internal/service"

	"github.com/gin-gonic/gin"
)

// authCredentials is the body of sign-up and sign-in. bcrypt ignores
// anything past 72 bytes, so longer passwords are refused.
type authCredentials struct {
	Username string `json:"username" binding:"required,min=3,max=64" example:"lifter"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"hunter22"`
}

// bindCredentials writes a 400 and returns false when the body is unusable.
func (h *Handler) bindCredentials(c *gin.Context, dst *authCredentials) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

// @Summary      Create an API account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      201   {object}  map[string]int   "id"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "username taken"
// @Failure      500   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var in authCredentials
	if !h.bindCredentials(c, &in) {
		return
	}

	id, err := h.services.SignUp(in.Username, in.Password)
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": repository.ErrUsernameTaken.Error()})
		return
	case errors.Is(err, service.ErrEmptyUsername), errors.Is(err, service.ErrEmptyPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to create user", "auth_sign_up_failed", err,
			"username", in.Username)
		return
	}
	if h.log != nil {
		h.log.Infow("auth_user_created", "user_id", id)
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Obtain a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials    true  "Credentials"
// @Success      200   {object}  map[string]string  "token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var in authCredentials
	if !h.bindCredentials(c, &in) {
		return
	}

	token, err := h.services.GenerateToken(in.Username, in.Password)
	if err != nil {
		// never tell which half of the credentials was wrong
		if h.log != nil {
			h.log.Infow("auth_sign_in_failed", "username", in.Username, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "token_type": "Bearer"})
}
