package handler

import (
	"net/http"

	"github.com/jdirocco/forno/internal/apierror"
	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/middleware"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"
	"github.com/jdirocco/forno/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReturnsHandler struct{ svc service.ReturnService }

func NewReturnsHandler(svc service.ReturnService) *ReturnsHandler {
	return &ReturnsHandler{svc: svc}
}

// Create godoc
// @Summary      Registra un documento di reso
// @Description  Il reso nasce in stato PENDING e riferisce una spedizione confermata.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateReturnRequest true "Dati reso"
// @Success      201 {object} dto.ReturnResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/returns [post]
func (h *ReturnsHandler) Create(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Elenco resi
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string false "Data inizio YYYY-MM-DD"
// @Param        endDate   query string false "Data fine YYYY-MM-DD"
// @Param        shopId    query string false "UUID negozio"
// @Param        status    query string false "Stato del reso"
// @Success      200 {array} dto.ReturnResponse
// @Router       /api/returns [get]
func (h *ReturnsHandler) List(c *gin.Context) {
	f := repository.ReturnFilter{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		ShopID:    c.Query("shopId"),
		Status:    c.Query("status"),
	}
	claims := middleware.GetClaims(c)
	if claims != nil && claims.Role == string(model.RoleShop) {
		if claims.ShopID == nil {
			c.JSON(http.StatusOK, []dto.ReturnResponse{})
			return
		}
		f.ShopID = *claims.ShopID
	}
	resp, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento dei resi"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Dettaglio reso
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID reso"
// @Success      200 {object} dto.ReturnResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/returns/{id} [get]
func (h *ReturnsHandler) Get(c *gin.Context) {
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

// ListByShop godoc
// @Summary      Resi di un negozio
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID negozio"
// @Success      200 {array} dto.ReturnResponse
// @Router       /api/returns/shop/{id} [get]
func (h *ReturnsHandler) ListByShop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), repository.ReturnFilter{ShopID: id.String()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento dei resi"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListByShipment godoc
// @Summary      Resi di una spedizione
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID spedizione"
// @Success      200 {array} dto.ReturnResponse
// @Router       /api/returns/shipment/{id} [get]
func (h *ReturnsHandler) ListByShipment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), repository.ReturnFilter{ShipmentID: id.String()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento dei resi"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Modifica reso
// @Description  Aggiorna data, motivo e note di un reso in attesa; le righe non sono modificabili.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID reso"
// @Param        body body dto.UpdateReturnRequest true "Dati reso"
// @Success      200 {object} dto.ReturnResponse
// @Failure      409 {object} apierror.APIError
// @Router       /api/returns/{id} [put]
func (h *ReturnsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReturnRequest
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

// UpdateStatus godoc
// @Summary      Cambia lo stato del reso
// @Description  PENDING può diventare APPROVED, REJECTED o CANCELLED; APPROVED può diventare PROCESSED o CANCELLED.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID reso"
// @Param        body body dto.UpdateReturnStatusRequest true "Nuovo stato"
// @Success      200 {object} dto.ReturnResponse
// @Failure      409 {object} apierror.APIError
// @Router       /api/returns/{id}/status [put]
func (h *ReturnsHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReturnStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actor, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, actor, model.ReturnStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Elimina reso
// @Description  Consentita solo sui resi in attesa, rifiutati o annullati.
// @Tags         returns
// @Security     BearerAuth
// @Param        id path string true "UUID reso"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /api/returns/{id} [delete]
func (h *ReturnsHandler) Delete(c *gin.Context) {
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
