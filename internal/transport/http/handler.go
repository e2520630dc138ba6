package handlers

import (
	"context"
	"net/http"

	"coursemarket/internal/application/usecase"
	"coursemarket/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Authenticator interface {
	Role() domain.Role
	Signup(ctx context.Context, in usecase.SignupInput) (uuid.UUID, error)
	Signin(ctx context.Context, in usecase.SigninInput) (string, error)
}

// AuthHandler serves signup and signin for the role of its use case.
type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) label() string {
	if h.auth.Role() == domain.RoleAdmin {
		return "Admin"
	}
	return "User"
}

// POST /api/v1/{user,admin}/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req usecase.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if _, err := h.auth.Signup(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": h.label() + " signed up successfully"})
}

// POST /api/v1/{user,admin}/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var req usecase.SigninInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	token, err := h.auth.Signin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": h.label() + " signed in successfully",
		"token":   token,
	})
}
