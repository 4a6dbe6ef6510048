package handler

import (
	"net/http"
	"path/filepath"

	"github.com/jdirocco/forno/internal/apierror"
	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/middleware"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShipmentsHandler struct{ svc service.ShipmentService }

func NewShipmentsHandler(svc service.ShipmentService) *ShipmentsHandler {
	return &ShipmentsHandler{svc: svc}
}

// scopeToShop forces SHOP accounts onto their own shop. Other roles pass
// through untouched.
func scopeToShop(c *gin.Context, f *dto.ShipmentFilter) bool {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.Role != string(model.RoleShop) {
		return true
	}
	if claims.ShopID == nil {
		return false
	}
	f.ShopID = *claims.ShopID
	return true
}

// List godoc
// @Summary      Elenco spedizioni
// @Description  Filtra per data, negozio, autista e stato. Con page+size risponde con l'involucro paginato, altrimenti con l'array piatto.
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string false "Data inizio YYYY-MM-DD"
// @Param        endDate   query string false "Data fine YYYY-MM-DD"
// @Param        shopId    query string false "UUID negozio"
// @Param        driverId  query string false "UUID autista"
// @Param        statuses  query []string false "Stati (ripetibile)"
// @Param        page      query int    false "Pagina (0-based)"
// @Param        size      query int    false "Elementi per pagina"
// @Success      200 {object} dto.ShipmentPageResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/shipments [get]
func (h *ShipmentsHandler) List(c *gin.Context) {
	var f dto.ShipmentFilter
	if !bindQuery(c, &f) {
		return
	}
	if !scopeToShop(c, &f) {
		// SHOP account without a linked shop sees nothing rather than everything.
		if f.Paginated() {
			c.JSON(http.StatusOK, dto.ShipmentPageResponse{Content: []dto.ShipmentResponse{}})
		} else {
			c.JSON(http.StatusOK, []dto.ShipmentResponse{})
		}
		return
	}

	page, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento delle spedizioni"))
		return
	}
	if f.Paginated() {
		c.JSON(http.StatusOK, page)
		return
	}
	c.JSON(http.StatusOK, page.Content)
}

// Get godoc
// @Summary      Dettaglio spedizione
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID spedizione"
// @Success      200 {object} dto.ShipmentResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/shipments/{id} [get]
func (h *ShipmentsHandler) Get(c *gin.Context) {
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
// @Summary      Crea spedizione (bozza)
// @Description  La spedizione nasce in stato BOZZA; il numero progressivo è assegnato dal server.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateShipmentRequest true "Dati spedizione"
// @Success      201 {object} dto.ShipmentResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/shipments [post]
func (h *ShipmentsHandler) Create(c *gin.Context) {
	var req dto.CreateShipmentRequest
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

// Update godoc
// @Summary      Modifica spedizione
// @Description  Solo le bozze sono modificabili. Le righe SHIPMENT vengono sostituite, i resi restano intatti.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID spedizione"
// @Param        body body dto.UpdateShipmentRequest true "Campi da aggiornare"
// @Success      200 {object} dto.ShipmentResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/shipments/{id} [put]
func (h *ShipmentsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateShipmentRequest
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
// @Summary      Elimina spedizione
// @Description  Eliminazione fisica, consentita solo sulle bozze.
// @Tags         shipments
// @Security     BearerAuth
// @Param        id path string true "UUID spedizione"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /api/shipments/{id} [delete]
func (h *ShipmentsHandler) Delete(c *gin.Context) {
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

// Confirm godoc
// @Summary      Conferma spedizione
// @Description  Passa la bozza a IN_CONSEGNA, genera il DDT e accoda le notifiche email/WhatsApp.
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID spedizione"
// @Success      200 {object} dto.ShipmentResponse
// @Failure      409 {object} apierror.APIError
// @Router       /api/shipments/{id}/confirm [post]
func (h *ShipmentsHandler) Confirm(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ChangeStatus(c.Request.Context(), id, model.StatusInConsegna)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary      Avanza lo stato della spedizione
// @Description  Le transizioni sono solo in avanti: BOZZA → IN_CONSEGNA → CONSEGNATA.
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string true "UUID spedizione"
// @Param        status query string true "Stato di destinazione"
// @Success      200 {object} dto.ShipmentResponse
// @Failure      409 {object} apierror.APIError
// @Router       /api/shipments/{id}/status [put]
func (h *ShipmentsHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	target := model.ShipmentStatus(c.Query("status"))
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, apierror.New("Stato non valido"))
		return
	}
	resp, err := h.svc.ChangeStatus(c.Request.Context(), id, target)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AttachReturns godoc
// @Summary      Registra i resi di una spedizione
// @Description  Sostituisce le righe RETURN della spedizione con il lotto inviato. Le quantità a zero vengono scartate.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID spedizione"
// @Param        body body dto.AttachReturnsRequest true "Righe di reso"
// @Success      200 {object} dto.ShipmentResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/shipments/{id}/returns [post]
func (h *ShipmentsHandler) AttachReturns(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AttachReturnsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AttachReturns(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadPDF godoc
// @Summary      Scarica il DDT in PDF
// @Tags         shipments
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID spedizione"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Router       /api/shipments/{id}/pdf [get]
func (h *ShipmentsHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.PDFPath(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// SendWhatsApp godoc
// @Summary      Invia il DDT via WhatsApp
// @Description  Accoda l'invio al negozio tramite il worker asincrono.
// @Tags         shipments
// @Security     BearerAuth
// @Param        id path string true "UUID spedizione"
// @Success      202
// @Failure      400 {object} apierror.APIError
// @Router       /api/shipments/{id}/send-whatsapp [post]
func (h *ShipmentsHandler) SendWhatsApp(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SendWhatsApp(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}

// SendEmail godoc
// @Summary      Invia il DDT via email
// @Tags         shipments
// @Security     BearerAuth
// @Param        id path string true "UUID spedizione"
// @Success      202
// @Failure      400 {object} apierror.APIError
// @Router       /api/shipments/{id}/send-email [post]
func (h *ShipmentsHandler) SendEmail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SendEmail(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}

// TodayForDriver godoc
// @Summary      Consegne di oggi dell'autista autenticato
// @Description  Solo spedizioni confermate con data odierna assegnate all'autista.
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.ShipmentResponse
// @Router       /api/shipments/driver/today [get]
func (h *ShipmentsHandler) TodayForDriver(c *gin.Context) {
	claims := middleware.GetClaims(c)
	driverID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token non valido o scaduto"))
		return
	}
	resp, err := h.svc.TodayForDriver(c.Request.Context(), driverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento delle consegne"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListByShop godoc
// @Summary      Spedizioni di un negozio
// @Description  Come l'elenco generale, con il negozio fissato dal path.
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id        path  string true  "UUID negozio"
// @Param        startDate query string false "Data inizio YYYY-MM-DD"
// @Param        endDate   query string false "Data fine YYYY-MM-DD"
// @Param        statuses  query []string false "Stati (ripetibile)"
// @Param        page      query int    false "Pagina (0-based)"
// @Param        size      query int    false "Elementi per pagina"
// @Success      200 {object} dto.ShipmentPageResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/shipments/shop/{id} [get]
func (h *ShipmentsHandler) ListByShop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var f dto.ShipmentFilter
	if !bindQuery(c, &f) {
		return
	}
	f.ShopID = id.String()
	// A SHOP account can only consult its own shop, whatever id it puts
	// in the path.
	if !scopeToShop(c, &f) {
		if f.Paginated() {
			c.JSON(http.StatusOK, dto.ShipmentPageResponse{Content: []dto.ShipmentResponse{}})
		} else {
			c.JSON(http.StatusOK, []dto.ShipmentResponse{})
		}
		return
	}

	page, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nel caricamento delle spedizioni"))
		return
	}
	if f.Paginated() {
		c.JSON(http.StatusOK, page)
		return
	}
	c.JSON(http.StatusOK, page.Content)
}

// LastForShop godoc
// @Summary      Ultima spedizione confermata di un negozio
// @Description  Cerca nell'ultimo mese fino a ieri; usata per precompilare una nuova spedizione.
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID negozio"
// @Success      200 {object} dto.ShipmentResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/shipments/shop/{id}/last-shipment [get]
func (h *ShipmentsHandler) LastForShop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.LastForShop(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
