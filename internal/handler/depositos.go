package handler

import (
	"errors"
	"net/http"
	"path/filepath"

	"sistemaservicios/internal/apierror"
	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
)

const categoriaDepositos = "depositos"

type DepositosHandler struct {
	svc   service.DepositoService
	store *infra.FileStore
}

func NewDepositosHandler(svc service.DepositoService, store *infra.FileStore) *DepositosHandler {
	return &DepositosHandler{svc: svc, store: store}
}

// Crear godoc
// @Summary Registra un depósito bancario
// @Description JSON, o multipart/form-data con el JSON en "data" y el archivo en "comprobante".
// @Tags depositos
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearDepositoRequest true "Depósito"
// @Success 201 {object} dto.DepositoResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/depositos-bancarios [post]
func (h *DepositosHandler) Crear(c *gin.Context) {
	var req dto.CrearDepositoRequest
	ruta, ok := bindConComprobante(c, h.store, categoriaDepositos, &req)
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
// @Summary Lista depósitos bancarios
// @Tags depositos
// @Produce json
// @Security BearerAuth
// @Param cuenta_bancaria_id query string false "Cuenta"
// @Param moneda query string false "PYG | USD | BRL"
// @Param desde query string false "AAAA-MM-DD"
// @Param hasta query string false "AAAA-MM-DD"
// @Param incluir_cancelados query bool false "Incluir cancelados"
// @Success 200 {object} dto.DepositoListResponse
// @Router /api/depositos-bancarios [get]
func (h *DepositosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.DepositoFilter{
		CuentaBancariaID:  c.Query("cuenta_bancaria_id"),
		Moneda:            c.Query("moneda"),
		Desde:             c.Query("desde"),
		Hasta:             c.Query("hasta"),
		IncluirCancelados: c.Query("incluir_cancelados") == "true",
		Page:              queryInt(c, "page"),
		Limit:             queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary Obtiene un depósito bancario
// @Tags depositos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {object} dto.DepositoResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/depositos-bancarios/{id} [get]
func (h *DepositosHandler) ObtenerPorID(c *gin.Context) {
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

// Actualizar godoc
// @Summary Actualiza boleta, observación o fecha de un depósito
// @Tags depositos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param body body dto.ActualizarDepositoRequest true "Cambios"
// @Success 200 {object} dto.DepositoResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/depositos-bancarios/{id} [put]
func (h *DepositosHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarDepositoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela un depósito y revierte su movimiento de caja mayor
// @Tags depositos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID"
// @Param body body dto.CancelarDepositoRequest true "Motivo"
// @Success 200 {object} dto.DepositoResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/depositos-bancarios/{id}/cancelar [post]
func (h *DepositosHandler) Cancelar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarDepositoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarComprobante godoc
// @Summary Descarga el comprobante de un depósito
// @Tags depositos
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "ID"
// @Success 200 {file} file
// @Failure 404 {object} apierror.APIError
// @Router /api/depositos-bancarios/{id}/comprobante [get]
func (h *DepositosHandler) DescargarComprobante(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ruta, err := h.svc.RutaComprobante(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	path, err := h.store.Resolver(ruta, categoriaDepositos)
	if errors.Is(err, infra.ErrArchivoNoEncontrado) {
		c.JSON(http.StatusNotFound, apierror.New("archivo de comprobante no encontrado"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
