package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taskflow/backend/internal/errors"
	"taskflow/backend/internal/models"
	"taskflow/backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		c.JSON(httpErr.StatusCode, apperrors.ErrorResponse{Error: httpErr.Message})
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		c.JSON(httpErr.StatusCode, apperrors.ErrorResponse{Error: httpErr.Message})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User,
	})
}
