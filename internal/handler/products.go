package handler

import (
	"net/http"

	"github.com/jdirocco/forno/internal/apierror"
	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List godoc
// @Summary      Catalogo prodotti
// @Description  Di default solo i prodotti attivi; includeInactive=true aggiunge i disattivati.
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        includeInactive query bool false "Includi prodotti disattivati"
// @Success      200 {array} dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"
	resp, err := h.svc.List(c.Request.Context(), includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento dei prodotti"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Dettaglio prodotto
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID prodotto"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
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
// @Summary      Crea prodotto
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProductRequest true "Dati prodotto"
// @Success      201 {object} dto.ProductResponse
// @Failure      409 {object} apierror.APIError
// @Router       /api/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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
// @Summary      Modifica prodotto
// @Description  Il nuovo prezzo vale solo per le spedizioni future; le righe già salvate restano invariate.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID prodotto"
// @Param        body body dto.UpdateProductRequest true "Campi da aggiornare"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
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
// @Summary      Disattiva prodotto
// @Description  Disattivazione logica: i prodotti referenziati da spedizioni non vengono mai rimossi.
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "UUID prodotto"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /api/products/{id} [delete]
func (h *ProductsHandler) Delete(c *gin.Context) {
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
