package handler

import (
	"net/http"

	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// BalanceServicio returns the handler for one collection service, e.g.
// GET /api/weno-gs.
//
// @Summary Total a depositar de un servicio de cobranza
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string false "AAAA-MM-DD (default: inicio de mes)"
// @Param hasta query string false "AAAA-MM-DD (default: hoy)"
// @Success 200 {object} dto.BalanceServicioResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/weno-gs [get]
// @Router /api/wepa-usd [get]
// @Router /api/aquipago [get]
func (h *ReportesHandler) BalanceServicio(servicio string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.svc.BalanceServicio(c.Request.Context(), servicio, c.Query("desde"), c.Query("hasta"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Balance godoc
// @Summary Balance de caja mayor por moneda
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string false "AAAA-MM-DD"
// @Param hasta query string false "AAAA-MM-DD"
// @Success 200 {object} dto.BalanceResponse
// @Router /api/balance [get]
func (h *ReportesHandler) Balance(c *gin.Context) {
	resp, err := h.svc.Balance(c.Request.Context(), c.Query("desde"), c.Query("hasta"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
