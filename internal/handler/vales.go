package handler

import (
	"net/http"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
)

type ValesHandler struct{ svc service.ValeService }

func NewValesHandler(svc service.ValeService) *ValesHandler { return &ValesHandler{svc: svc} }

// Emitir godoc
// @Summary Emite un vale contra caja mayor
// @Tags vales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EmitirValeRequest true "Vale"
// @Success 201 {object} dto.ValeResponse
// @Router /api/vales [post]
func (h *ValesHandler) Emitir(c *gin.Context) {
	var req dto.EmitirValeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Emitir(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista vales
// @Tags vales
// @Produce json
// @Security BearerAuth
// @Param estado query string false "PENDIENTE | COBRADO | CANCELADO"
// @Success 200 {object} dto.ValeListResponse
// @Router /api/vales [get]
func (h *ValesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.ValeFilter{
		Estado: c.Query("estado"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cobrar godoc
// @Summary Registra el cobro de un vale
// @Tags vales
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.ValeResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/vales/{id}/cobrar [post]
func (h *ValesHandler) Cobrar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cobrar(c.Request.Context(), id, middleware.UsuarioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela un vale pendiente
// @Tags vales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param body body dto.CancelarValeRequest true "Motivo"
// @Success 200 {object} dto.ValeResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/vales/{id}/cancelar [post]
func (h *ValesHandler) Cancelar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarValeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, middleware.UsuarioID(c), req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary Obtiene un vale
// @Tags vales
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.ValeResponse
// @Router /api/vales/{id} [get]
func (h *ValesHandler) ObtenerPorID(c *gin.Context) {
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
