package handler

import (
	"net/http"

	"github.com/jdirocco/forno/internal/apierror"
	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/middleware"
	"github.com/jdirocco/forno/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	svc     service.AuthService
	userSvc service.UserService
}

func NewAuthHandler(svc service.AuthService, userSvc service.UserService) *AuthHandler {
	return &AuthHandler{svc: svc, userSvc: userSvc}
}

// Login godoc
// @Summary Login utente
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenziali"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Profilo dell'utente autenticato
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token non valido o scaduto"))
		return
	}
	resp, err := h.userSvc.Get(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
