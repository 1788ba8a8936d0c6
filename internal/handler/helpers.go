package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"sistemaservicios/internal/apierror"
	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal validates as a number so gt=0 / required work on amounts.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// report json names in ValidationError.Fields
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds the JSON body and runs the validate tags. On false
// the response is already written.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindConComprobante accepts either a JSON body or multipart/form-data with
// the JSON payload in "data" and an optional file in "comprobante". The file
// is written only after the payload validates; the caller must remove it if
// the domain write fails.
func bindConComprobante(c *gin.Context, store *infra.FileStore, categoria string, req interface{}) (*string, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return nil, bindAndValidate(c, req)
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, infra.TamanoMaximoComprobante+1<<20)
	data := c.PostForm("data")
	if data == "" {
		c.JSON(http.StatusBadRequest, apierror.New("campo data requerido"))
		return nil, false
	}
	if err := json.Unmarshal([]byte(data), req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido en data: "+err.Error()))
		return nil, false
	}
	if !validar(c, req) {
		return nil, false
	}

	fh, err := c.FormFile("comprobante")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("comprobante invalido: "+err.Error()))
		return nil, false
	}
	ruta, err := store.Guardar(categoria, fh)
	switch {
	case errors.Is(err, infra.ErrExtensionNoPermitida), errors.Is(err, infra.ErrArchivoGrande):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return nil, false
	case err != nil:
		respondError(c, err)
		return nil, false
	}
	return &ruta, true
}

// descartarComprobante removes an upload whose domain write failed.
func descartarComprobante(store *infra.FileStore, ruta *string) {
	if ruta == nil {
		return
	}
	if err := store.Eliminar(*ruta); err != nil {
		log.Warn().Err(err).Str("ruta", *ruta).Msg("no se pudo eliminar el comprobante huérfano")
	}
}

// respondError maps service error kinds to HTTP status. Anything untyped is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var se *service.Error
	if errors.As(err, &se) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrNoEncontrado):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrValidacion):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrConflicto):
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(se.Msg))
		return
	}
	log.Error().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Err(err).
		Msg("error interno")
	c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}
