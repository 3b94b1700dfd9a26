package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/middleware"
	authsvc "github.com/oggyb/storefront/internal/service/auth"
)

// AuthHandler exposes register/login/logout.
type AuthHandler struct {
	appCtx *app.AppContext
	svc    *authsvc.Service
}

// NewAuthHandler wires the auth endpoints to the auth service.
func NewAuthHandler(appCtx *app.AppContext) *AuthHandler {
	return &AuthHandler{appCtx: appCtx, svc: authsvc.NewAuthService(appCtx)}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("email, username and password are required"))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{"id": user.ID, "email": user.Email, "username": user.Username},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.appCtx.Logger, svcErr.InvalidArgument("email and password are required"))
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.appCtx.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "email": user.Email, "username": user.Username},
	})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.svc.Logout(c.Request.Context(), token); err != nil {
			respondError(c, h.appCtx.Logger, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
