package handler

import (
	"net/http"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
)

type CambiosHandler struct{ svc service.CambioService }

func NewCambiosHandler(svc service.CambioService) *CambiosHandler { return &CambiosHandler{svc: svc} }

// Registrar godoc
// @Summary Registra un cambio de moneda
// @Tags cambios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarCambioRequest true "Cambio"
// @Success 201 {object} dto.CambioResponse
// @Router /api/cambios [post]
func (h *CambiosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarCambioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista cambios de moneda
// @Tags cambios
// @Produce json
// @Security BearerAuth
// @Param desde query string false "AAAA-MM-DD"
// @Param hasta query string false "AAAA-MM-DD"
// @Success 200 {object} dto.CambioListResponse
// @Router /api/cambios [get]
func (h *CambiosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.CambioFilter{
		Desde: c.Query("desde"),
		Hasta: c.Query("hasta"),
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular godoc
// @Summary Anula un cambio y revierte sus dos movimientos
// @Tags cambios
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.CambioResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/cambios/{id}/anular [post]
func (h *CambiosHandler) Anular(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), id, middleware.UsuarioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
