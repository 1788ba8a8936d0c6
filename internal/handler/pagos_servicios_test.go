package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Stub service ─────────────────────────────────────────────────────────────

type stubPagoSvc struct {
	err       error
	usuarioID uuid.UUID
	req       dto.CrearPagoServicioRequest
	ruta      *string
}

func (s *stubPagoSvc) Crear(_ context.Context, usuarioID uuid.UUID, req dto.CrearPagoServicioRequest, ruta *string) (*dto.PagoServicioResponse, error) {
	s.usuarioID, s.req, s.ruta = usuarioID, req, ruta
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PagoServicioResponse{ID: uuid.NewString(), Servicio: req.Servicio, Estado: "PENDIENTE", RutaComprobante: ruta}, nil
}

func (s *stubPagoSvc) CambiarEstado(_ context.Context, id, _ uuid.UUID, req dto.CambiarEstadoPagoRequest) (*dto.PagoServicioResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PagoServicioResponse{ID: id.String(), Estado: req.Estado}, nil
}

func (s *stubPagoSvc) Anular(_ context.Context, id, _ uuid.UUID, _ string) (*dto.PagoServicioResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PagoServicioResponse{ID: id.String(), Estado: "ANULADO"}, nil
}

func (s *stubPagoSvc) ObtenerPorID(_ context.Context, id uuid.UUID) (*dto.PagoServicioResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PagoServicioResponse{ID: id.String()}, nil
}

func (s *stubPagoSvc) Listar(_ context.Context, _ dto.PagoServicioFilter) (*dto.PagoServicioListResponse, error) {
	return &dto.PagoServicioListResponse{Data: []dto.PagoServicioResponse{}}, s.err
}

// ── Helpers ──────────────────────────────────────────────────────────────────

var usuarioPrueba = uuid.MustParse("5d2f9a36-2c1b-4a8e-9e0f-1b2c3d4e5f60")

func setupPagos(t *testing.T, svc service.PagoServicioService) (*gin.Engine, string) {
	t.Helper()
	base := t.TempDir()
	h := NewPagosServiciosHandler(svc, infra.NewFileStore(base))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{UserID: usuarioPrueba.String(), Rol: middleware.RolTesorero})
		c.Next()
	})
	r.POST("/pagos", h.Crear)
	r.GET("/pagos/:id", h.ObtenerPorID)
	r.PATCH("/pagos/:id/estado", h.CambiarEstado)
	r.POST("/pagos/:id/anular", h.Anular)
	return r, base
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r *gin.Engine, path, data, archivo string, contenido []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", data))
	if archivo != "" {
		part, err := mw.CreateFormFile("comprobante", archivo)
		require.NoError(t, err)
		_, err = part.Write(contenido)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	return w
}

func archivosEn(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

const pagoValido = `{"servicio":"weno-gs","moneda":"PYG","monto":150000,"referencia":"R-1"}`

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCrearPago_JSON(t *testing.T) {
	svc := &stubPagoSvc{}
	r, _ := setupPagos(t, svc)

	w := doJSON(r, http.MethodPost, "/pagos", pagoValido)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, usuarioPrueba, svc.usuarioID)
	assert.Equal(t, "150000", svc.req.Monto.String())
	assert.Nil(t, svc.ruta)
}

func TestCrearPago_ValidacionDeCampos(t *testing.T) {
	r, _ := setupPagos(t, &stubPagoSvc{})

	w := doJSON(r, http.MethodPost, "/pagos", `{"servicio":"weno-gs","moneda":"EUR","monto":0}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Detail string            `json:"detail"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "oneof", body.Fields["moneda"])
	assert.Equal(t, "required", body.Fields["monto"])
}

func TestCrearPago_JSONMalformado(t *testing.T) {
	r, _ := setupPagos(t, &stubPagoSvc{})

	w := doJSON(r, http.MethodPost, "/pagos", `{"servicio":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondError_MapeoDeEstados(t *testing.T) {
	casos := []struct {
		err    error
		status int
		detail string
	}{
		{&service.Error{Kind: service.ErrNoEncontrado, Msg: "pago de servicio no encontrado"}, http.StatusNotFound, "pago de servicio no encontrado"},
		{&service.Error{Kind: service.ErrValidacion, Msg: "monto inválido"}, http.StatusBadRequest, "monto inválido"},
		{&service.Error{Kind: service.ErrConflicto, Msg: "el pago ya está anulado"}, http.StatusConflict, "el pago ya está anulado"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "Error interno del servidor"},
	}
	for _, tc := range casos {
		r, _ := setupPagos(t, &stubPagoSvc{err: tc.err})
		w := doJSON(r, http.MethodPost, "/pagos/"+uuid.NewString()+"/anular", `{"motivo":"duplicado"}`)

		assert.Equal(t, tc.status, w.Code, tc.detail)
		assert.JSONEq(t, `{"detail":"`+tc.detail+`"}`, w.Body.String())
	}
}

func TestObtenerPago_IDInvalido(t *testing.T) {
	r, _ := setupPagos(t, &stubPagoSvc{})

	w := doJSON(r, http.MethodGet, "/pagos/123", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCambiarEstado_SoloProcesadoORechazado(t *testing.T) {
	r, _ := setupPagos(t, &stubPagoSvc{})

	w := doJSON(r, http.MethodPatch, "/pagos/"+uuid.NewString()+"/estado", `{"estado":"ANULADO"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPatch, "/pagos/"+uuid.NewString()+"/estado", `{"estado":"PROCESADO"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCrearPago_MultipartGuardaComprobante(t *testing.T) {
	svc := &stubPagoSvc{}
	r, base := setupPagos(t, svc)

	w := doMultipart(t, r, "/pagos", pagoValido, "ticket.jpg", []byte{0xff, 0xd8, 0xff})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, svc.ruta)
	assert.True(t, strings.HasSuffix(*svc.ruta, ".jpg"))
	assert.Len(t, archivosEn(t, filepath.Join(base, categoriaPagos)), 1)
}

func TestCrearPago_MultipartSinArchivo(t *testing.T) {
	svc := &stubPagoSvc{}
	r, _ := setupPagos(t, svc)

	w := doMultipart(t, r, "/pagos", pagoValido, "", nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, svc.ruta)
}

func TestCrearPago_FalloDelServicioBorraElComprobante(t *testing.T) {
	svc := &stubPagoSvc{err: &service.Error{Kind: service.ErrValidacion, Msg: "el servicio opera en USD"}}
	r, base := setupPagos(t, svc)

	w := doMultipart(t, r, "/pagos", pagoValido, "ticket.pdf", []byte("%PDF"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, svc.ruta, "el archivo se guardó antes de llamar al servicio")
	assert.Empty(t, archivosEn(t, filepath.Join(base, categoriaPagos)))
}

func TestCrearPago_MultipartExtensionNoPermitida(t *testing.T) {
	svc := &stubPagoSvc{}
	r, base := setupPagos(t, svc)

	w := doMultipart(t, r, "/pagos", pagoValido, "virus.exe", []byte("MZ"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, archivosEn(t, filepath.Join(base, categoriaPagos)))
	assert.Equal(t, uuid.Nil, svc.usuarioID, "el servicio no se invoca")
}

func TestCrearPago_MultipartSinData(t *testing.T) {
	r, _ := setupPagos(t, &stubPagoSvc{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pagos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"campo data requerido"}`, w.Body.String())
}
