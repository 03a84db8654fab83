package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apperr"
)

type AuthHandler struct{ svc AuthService }

// RegisterRoutes: /login は公開、/accounts は staff のみ。
func RegisterRoutes(public gin.IRoutes, staff gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	public.POST("/login", h.Login)
	staff.POST("/accounts", h.Register)
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, http.StatusBadRequest, "invalid request"))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, ErrAuthFailed) {
			c.JSON(http.StatusUnauthorized, apperr.Body(apperr.CodeUnauthorized, http.StatusUnauthorized, "invalid id or password"))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apperr.Body(apperr.CodeInternal, http.StatusInternalServerError, "login failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Login successful",
	})
}

type RegisterRequest struct {
	ID        string `json:"id" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=staff student"`
	ProfileID string `json:"profile_id" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, http.StatusBadRequest, "invalid request"))
		return
	}

	if err := h.svc.Register(c.Request.Context(), req.ID, req.Password, req.Role, req.ProfileID); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyExists):
			// CONFLICT のステータスは apperr の対応表に合わせる
			e := apperr.ErrConflict("id already exists")
			c.JSON(apperr.ToHTTPStatus(e), apperr.FromErr(e))
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, http.StatusBadRequest, "invalid role"))
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, apperr.Body(apperr.CodeInternal, http.StatusInternalServerError, "register failed"))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}
