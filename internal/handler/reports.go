package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jdirocco/forno/internal/apierror"
	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/middleware"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// scopeReport forces SHOP accounts onto their own shop, like the shipment
// list does. Returns false when the account has no linked shop.
func scopeReport(c *gin.Context, f *dto.ReportFilter) bool {
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

// Dashboard godoc
// @Summary      Report spedizioni
// @Description  Totali di sintesi, serie temporale e classifiche prodotto per il periodo scelto (default: mese corrente).
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        startDate    query string false "Data inizio YYYY-MM-DD"
// @Param        endDate      query string false "Data fine YYYY-MM-DD"
// @Param        shopId       query string false "UUID negozio"
// @Param        driverId     query string false "UUID autista"
// @Param        statuses     query []string false "Stati (ripetibile)"
// @Param        chartGroupBy query string false "DAILY | WEEKLY | MONTHLY"
// @Success      200 {object} dto.ReportDashboardResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	var f dto.ReportFilter
	if !bindQuery(c, &f) {
		return
	}
	if !scopeReport(c, &f) {
		c.JSON(http.StatusOK, dto.ReportDashboardResponse{})
		return
	}
	resp, err := h.svc.Dashboard(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nella generazione del report"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Shipments godoc
// @Summary      Report tabellare spedizioni
// @Description  Una riga per spedizione nel periodo scelto, con conteggi e totali per tipo riga.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string false "Data inizio YYYY-MM-DD"
// @Param        endDate   query string false "Data fine YYYY-MM-DD"
// @Param        shopId    query string false "UUID negozio"
// @Param        driverId  query string false "UUID autista"
// @Param        statuses  query []string false "Stati (ripetibile)"
// @Success      200 {array} dto.ShipmentReportRow
// @Failure      400 {object} apierror.APIError
// @Router       /api/reports/shipments [get]
func (h *ReportsHandler) Shipments(c *gin.Context) {
	var f dto.ReportFilter
	if !bindQuery(c, &f) {
		return
	}
	if !scopeReport(c, &f) {
		c.JSON(http.StatusOK, []dto.ShipmentReportRow{})
		return
	}
	rows, err := h.svc.ShipmentsReport(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nella generazione del report"))
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Returns godoc
// @Summary      Report resi
// @Description  Valore complessivo e dettaglio per prodotto dei resi nel periodo scelto.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string false "Data inizio YYYY-MM-DD"
// @Param        endDate   query string false "Data fine YYYY-MM-DD"
// @Param        shopId    query string false "UUID negozio"
// @Param        driverId  query string false "UUID autista"
// @Success      200 {object} dto.ReturnsReportResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/reports/returns [get]
func (h *ReportsHandler) Returns(c *gin.Context) {
	var f dto.ReportFilter
	if !bindQuery(c, &f) {
		return
	}
	if !scopeReport(c, &f) {
		c.JSON(http.StatusOK, dto.ReturnsReportResponse{})
		return
	}
	resp, err := h.svc.ReturnsReport(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nella generazione del report"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func exportFilename(ext string) string {
	return fmt.Sprintf("report_spedizioni_%s.%s", time.Now().Format("2006-01-02"), ext)
}

// ExportCSV godoc
// @Summary      Esporta il report in CSV
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        startDate query string false "Data inizio YYYY-MM-DD"
// @Param        endDate   query string false "Data fine YYYY-MM-DD"
// @Param        shopId    query string false "UUID negozio"
// @Param        driverId  query string false "UUID autista"
// @Param        details   query bool   false "Aggiungi le sezioni per prodotto"
// @Success      200 {file} file
// @Router       /api/reports/export.csv [get]
func (h *ReportsHandler) ExportCSV(c *gin.Context) {
	var f dto.ReportFilter
	if !bindQuery(c, &f) {
		return
	}
	if !scopeReport(c, &f) {
		c.JSON(http.StatusForbidden, apierror.New("Permessi insufficienti"))
		return
	}
	data, err := h.svc.ExportCSV(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nella generazione dell'export"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename("csv")+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportXLSX godoc
// @Summary      Esporta il report in XLSX
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        startDate query string false "Data inizio YYYY-MM-DD"
// @Param        endDate   query string false "Data fine YYYY-MM-DD"
// @Param        shopId    query string false "UUID negozio"
// @Param        driverId  query string false "UUID autista"
// @Param        details   query bool   false "Aggiungi i fogli per prodotto"
// @Success      200 {file} file
// @Router       /api/reports/export.xlsx [get]
func (h *ReportsHandler) ExportXLSX(c *gin.Context) {
	var f dto.ReportFilter
	if !bindQuery(c, &f) {
		return
	}
	if !scopeReport(c, &f) {
		c.JSON(http.StatusForbidden, apierror.New("Permessi insufficienti"))
		return
	}
	data, err := h.svc.ExportXLSX(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Errore nella generazione dell'export"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename("xlsx")+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
