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

type UsersHandler struct{ svc service.UserService }

func NewUsersHandler(svc service.UserService) *UsersHandler { return &UsersHandler{svc: svc} }

// List godoc
// @Summary      Elenco utenti
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.UserResponse
// @Router       /api/users [get]
func (h *UsersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento degli utenti"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListDrivers godoc
// @Summary      Elenco autisti attivi
// @Description  Usato per popolare la tendina di assegnazione autista.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.UserResponse
// @Router       /api/users/drivers [get]
func (h *UsersHandler) ListDrivers(c *gin.Context) {
	resp, err := h.svc.ListDrivers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento degli autisti"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary      Profilo dell'utente autenticato
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.UserResponse
// @Router       /api/users/me [get]
func (h *UsersHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token non valido o scaduto"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Dettaglio utente
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID utente"
// @Success      200 {object} dto.UserResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/users/{id} [get]
func (h *UsersHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Crea utente
// @Description  Gli account SHOP devono essere associati a un negozio esistente.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateUserRequest true "Dati utente"
// @Success      201 {object} dto.UserResponse
// @Failure      409 {object} apierror.APIError
// @Router       /api/users [post]
func (h *UsersHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Modifica utente
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID utente"
// @Param        body body dto.UpdateUserRequest true "Campi da aggiornare"
// @Success      200 {object} dto.UserResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/users/{id} [put]
func (h *UsersHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleActive godoc
// @Summary      Attiva o disattiva utente
// @Description  Gli utenti non vengono mai eliminati: la disattivazione revoca l'accesso preservando lo storico.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID utente"
// @Success      200 {object} dto.UserResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/users/{id}/toggle-active [put]
func (h *UsersHandler) ToggleActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ToggleActive(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Elimina utente
// @Description  Disattiva l'account; lo storico delle spedizioni resta intatto.
// @Tags         users
// @Security     BearerAuth
// @Param        id path string true "UUID utente"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /api/users/{id} [delete]
func (h *UsersHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
