package handler

import (
	"net/http"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
)

type ConteosHandler struct{ svc service.ConteoService }

func NewConteosHandler(svc service.ConteoService) *ConteosHandler { return &ConteosHandler{svc: svc} }

// Crear godoc
// @Summary Registra un conteo físico de caja mayor
// @Description Compara el total contado con el saldo del sistema y, si se pide, registra el ajuste.
// @Tags conteos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearConteoRequest true "Conteo por denominación"
// @Success 201 {object} dto.ConteoResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /api/conteos [post]
func (h *ConteosHandler) Crear(c *gin.Context) {
	var req dto.CrearConteoRequest
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
// @Summary Lista conteos
// @Tags conteos
// @Produce json
// @Security BearerAuth
// @Param moneda query string false "PYG | USD | BRL"
// @Success 200 {object} dto.ConteoListResponse
// @Router /api/conteos [get]
func (h *ConteosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.ConteoFilter{
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

// ObtenerPorID godoc
// @Summary Obtiene un conteo con su detalle
// @Tags conteos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.ConteoResponse
// @Router /api/conteos/{id} [get]
func (h *ConteosHandler) ObtenerPorID(c *gin.Context) {
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
