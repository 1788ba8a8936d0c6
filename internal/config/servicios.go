package config

import (
	"fmt"
	"os"
	"strings"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Servicio is a collection service whose takings must be deposited into one
// bank account.
type Servicio struct {
	Codigo           string       `yaml:"codigo"`
	Nombre           string       `yaml:"nombre"`
	Moneda           model.Moneda `yaml:"moneda"`
	CuentaBancariaID uuid.UUID    `yaml:"cuenta_bancaria_id"`
}

// CatalogoServicios is keyed by Servicio.Codigo.
type CatalogoServicios map[string]Servicio

func (c CatalogoServicios) Buscar(codigo string) (Servicio, bool) {
	s, ok := c[strings.ToLower(strings.TrimSpace(codigo))]
	return s, ok
}

type archivoServicios struct {
	Servicios []Servicio `yaml:"servicios"`
}

// CargarServicios reads the services catalog. A missing file yields an
// empty catalog.
func CargarServicios(path string) (CatalogoServicios, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CatalogoServicios{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	return ParseServicios(raw)
}

func ParseServicios(raw []byte) (CatalogoServicios, error) {
	var f archivoServicios
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catálogo de servicios: %w", err)
	}
	cat := make(CatalogoServicios, len(f.Servicios))
	for _, s := range f.Servicios {
		s.Codigo = strings.ToLower(strings.TrimSpace(s.Codigo))
		if s.Codigo == "" {
			return nil, fmt.Errorf("catálogo de servicios: servicio sin código")
		}
		if !s.Moneda.Valida() {
			return nil, fmt.Errorf("catálogo de servicios: %s con moneda inválida %q", s.Codigo, s.Moneda)
		}
		if s.CuentaBancariaID == uuid.Nil {
			return nil, fmt.Errorf("catálogo de servicios: %s sin cuenta_bancaria_id", s.Codigo)
		}
		if _, dup := cat[s.Codigo]; dup {
			return nil, fmt.Errorf("catálogo de servicios: código repetido %s", s.Codigo)
		}
		if s.Nombre == "" {
			s.Nombre = s.Codigo
		}
		cat[s.Codigo] = s
	}
	return cat, nil
}
