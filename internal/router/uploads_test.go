package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"sistemaservicios/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMontarUploads_SirveLaRutaGuardada(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := filepath.Join(t.TempDir(), "uploads")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "depositos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "depositos", "boleta.pdf"), []byte("%PDF-1.4"), 0o644))

	autenticado := false
	r := gin.New()
	montarUploads(r, infra.NewFileStore(base), func(c *gin.Context) {
		if !autenticado {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, get("/uploads/depositos/boleta.pdf").Code)

	autenticado = true
	w := get("/uploads/depositos/boleta.pdf")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())
	assert.Equal(t, http.StatusNotFound, get("/api/uploads/depositos/boleta.pdf").Code)
}
