package handler

import (
	"net/http"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
)

type RetirosHandler struct{ svc service.RetiroService }

func NewRetirosHandler(svc service.RetiroService) *RetirosHandler { return &RetirosHandler{svc: svc} }

// Crear godoc
// @Summary Registra un retiro de caja pendiente de recepción
// @Tags retiros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearRetiroRequest true "Retiro"
// @Success 201 {object} dto.RetiroResponse
// @Router /api/retiros [post]
func (h *RetirosHandler) Crear(c *gin.Context) {
	var req dto.CrearRetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista retiros
// @Tags retiros
// @Produce json
// @Security BearerAuth
// @Param caja_id query string false "Caja"
// @Param estado query string false "PENDIENTE | RECIBIDO | RECHAZADO"
// @Param moneda query string false "PYG | USD | BRL"
// @Success 200 {object} dto.RetiroListResponse
// @Router /api/retiros [get]
func (h *RetirosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.RetiroFilter{
		CajaID: c.Query("caja_id"),
		Estado: c.Query("estado"),
		Moneda: c.Query("moneda"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recibir godoc
// @Summary Recibe un retiro en caja mayor
// @Tags retiros
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.RetiroResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/retiros/{id}/recibir [post]
func (h *RetirosHandler) Recibir(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Recibir(c.Request.Context(), id, middleware.UsuarioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rechazar godoc
// @Summary Rechaza un retiro
// @Tags retiros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param body body dto.RechazarRetiroRequest true "Motivo"
// @Success 200 {object} dto.RetiroResponse
// @Router /api/retiros/{id}/rechazar [post]
func (h *RetirosHandler) Rechazar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RechazarRetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Rechazar(c.Request.Context(), id, middleware.UsuarioID(c), req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Devolver godoc
// @Summary Devuelve un retiro recibido a PENDIENTE y revierte su ingreso
// @Tags retiros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param body body dto.DevolverRetiroRequest false "Movimiento esperado y motivo"
// @Success 200 {object} dto.RetiroResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/retiros/{id}/devolver [post]
func (h *RetirosHandler) Devolver(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.DevolverRetiroRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Devolver(c.Request.Context(), id, middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
