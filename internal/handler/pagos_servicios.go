package handler

import (
	"net/http"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
)

const categoriaPagos = "pagos"

type PagosServiciosHandler struct {
	svc   service.PagoServicioService
	store *infra.FileStore
}

func NewPagosServiciosHandler(svc service.PagoServicioService, store *infra.FileStore) *PagosServiciosHandler {
	return &PagosServiciosHandler{svc: svc, store: store}
}

// Crear godoc
// @Summary Registra un pago de servicio
// @Tags pagos-servicios
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearPagoServicioRequest true "Pago"
// @Success 201 {object} dto.PagoServicioResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/pagos-servicios [post]
func (h *PagosServiciosHandler) Crear(c *gin.Context) {
	var req dto.CrearPagoServicioRequest
	ruta, ok := bindConComprobante(c, h.store, categoriaPagos, &req)
	if !ok {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.UsuarioID(c), req, ruta)
	if err != nil {
		descartarComprobante(h.store, ruta)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista pagos de servicios
// @Tags pagos-servicios
// @Produce json
// @Security BearerAuth
// @Param servicio query string false "Código de servicio"
// @Param estado query string false "PENDIENTE | PROCESADO | ANULADO | RECHAZADO"
// @Param desde query string false "AAAA-MM-DD"
// @Param hasta query string false "AAAA-MM-DD"
// @Success 200 {object} dto.PagoServicioListResponse
// @Router /api/pagos-servicios [get]
func (h *PagosServiciosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.PagoServicioFilter{
		Servicio: c.Query("servicio"),
		Estado:   c.Query("estado"),
		Desde:    c.Query("desde"),
		Hasta:    c.Query("hasta"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary Obtiene un pago de servicio
// @Tags pagos-servicios
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.PagoServicioResponse
// @Router /api/pagos-servicios/{id} [get]
func (h *PagosServiciosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado godoc
// @Summary Marca un pago como PROCESADO o RECHAZADO
// @Tags pagos-servicios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param body body dto.CambiarEstadoPagoRequest true "Estado"
// @Success 200 {object} dto.PagoServicioResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/pagos-servicios/{id}/estado [patch]
func (h *PagosServiciosHandler) CambiarEstado(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarEstadoPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), id, middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular godoc
// @Summary Anula un pago de servicio y revierte su movimiento
// @Tags pagos-servicios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param body body dto.AnularPagoRequest true "Motivo"
// @Success 200 {object} dto.PagoServicioResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/pagos-servicios/{id}/anular [post]
func (h *PagosServiciosHandler) Anular(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), id, middleware.UsuarioID(c), req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
