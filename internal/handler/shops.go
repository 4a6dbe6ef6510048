package handler

import (
	"net/http"

	"github.com/jdirocco/forno/internal/apierror"
	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/service"

	"github.com/gin-gonic/gin"
)

type ShopsHandler struct{ svc service.ShopService }

func NewShopsHandler(svc service.ShopService) *ShopsHandler { return &ShopsHandler{svc: svc} }

// List godoc
// @Summary      Elenco negozi
// @Description  Di default solo i negozi attivi; includeInactive=true aggiunge i disattivati.
// @Tags         shops
// @Produce      json
// @Security     BearerAuth
// @Param        includeInactive query bool false "Includi negozi disattivati"
// @Success      200 {array} dto.ShopResponse
// @Router       /api/shops [get]
func (h *ShopsHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"
	resp, err := h.svc.List(c.Request.Context(), includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento dei negozi"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Dettaglio negozio
// @Tags         shops
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID negozio"
// @Success      200 {object} dto.ShopResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/shops/{id} [get]
func (h *ShopsHandler) Get(c *gin.Context) {
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
// @Summary      Crea negozio
// @Tags         shops
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateShopRequest true "Dati negozio"
// @Success      201 {object} dto.ShopResponse
// @Failure      409 {object} apierror.APIError
// @Router       /api/shops [post]
func (h *ShopsHandler) Create(c *gin.Context) {
	var req dto.CreateShopRequest
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
// @Summary      Modifica negozio
// @Tags         shops
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID negozio"
// @Param        body body dto.UpdateShopRequest true "Campi da aggiornare"
// @Success      200 {object} dto.ShopResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/shops/{id} [put]
func (h *ShopsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateShopRequest
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

// Delete godoc
// @Summary      Disattiva negozio
// @Description  Disattivazione logica: i negozi referenziati da spedizioni non vengono mai rimossi.
// @Tags         shops
// @Security     BearerAuth
// @Param        id path string true "UUID negozio"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /api/shops/{id} [delete]
func (h *ShopsHandler) Delete(c *gin.Context) {
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
