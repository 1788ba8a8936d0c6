package handler

import (
	"net/http"
	"strconv"
	"strings"

	"sistemaservicios/internal/apierror"
	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaMayorHandler struct{ svc service.CajaMayorService }

func NewCajaMayorHandler(svc service.CajaMayorService) *CajaMayorHandler {
	return &CajaMayorHandler{svc: svc}
}

// Listar godoc
// @Summary Lista movimientos de caja mayor
// @Tags caja-mayor
// @Produce json
// @Security BearerAuth
// @Param moneda query string false "PYG | USD | BRL"
// @Param tipo query string false "Tipo de movimiento"
// @Param desde query string false "AAAA-MM-DD"
// @Param hasta query string false "AAAA-MM-DD"
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} dto.MovimientoCajaMayorListResponse
// @Router /api/caja_mayor_movimientos [get]
func (h *CajaMayorHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.CajaMayorFilter{
		Moneda: c.Query("moneda"),
		Tipo:   c.Query("tipo"),
		Desde:  c.Query("desde"),
		Hasta:  c.Query("hasta"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary Obtiene un movimiento de caja mayor
// @Tags caja-mayor
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del movimiento"
// @Success 200 {object} dto.MovimientoCajaMayorResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/caja_mayor_movimientos/{id} [get]
func (h *CajaMayorHandler) ObtenerPorID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("id invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarManual godoc
// @Summary Registra un ingreso o egreso manual
// @Tags caja-mayor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoCajaMayorResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /api/caja_mayor_movimientos [post]
func (h *CajaMayorHandler) RegistrarManual(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarManual(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Saldos godoc
// @Summary Saldo actual por moneda
// @Tags caja-mayor
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.SaldoResponse
// @Router /api/caja_mayor_movimientos/saldos [get]
func (h *CajaMayorHandler) Saldos(c *gin.Context) {
	resp, err := h.svc.Saldos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerificarContinuidad godoc
// @Summary Verifica la continuidad de saldos de una moneda
// @Tags caja-mayor
// @Produce json
// @Security BearerAuth
// @Param moneda path string true "PYG | USD | BRL o guaranies | dolares | reales"
// @Success 200 {object} dto.ContinuidadResponse
// @Router /api/caja_mayor_movimientos/verificar/{moneda} [get]
func (h *CajaMayorHandler) VerificarContinuidad(c *gin.Context) {
	m, err := model.ParseMoneda(strings.TrimSpace(c.Param("moneda")))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("moneda invalida"))
		return
	}
	resp, err := h.svc.VerificarContinuidad(c.Request.Context(), m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
