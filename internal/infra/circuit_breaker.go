package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards the outbound dependencies that are allowed to fail without failing
// the request: the Kafka broker and the SMTP relay.
//
//   cerrado → abierto after FallosParaAbrir consecutive failures
//   abierto → semiabierto once Espera has elapsed
//   semiabierto → cerrado after ExitosParaCerrar trial calls, → abierto on any failure

type EstadoCB int

const (
	CBCerrado EstadoCB = iota
	CBAbierto
	CBSemiabierto
)

func (s EstadoCB) String() string {
	switch s {
	case CBCerrado:
		return "closed"
	case CBAbierto:
		return "open"
	case CBSemiabierto:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitoAbierto is returned by Ejecutar while the breaker is open.
var ErrCircuitoAbierto = errors.New("circuit breaker abierto")

type ConfigCB struct {
	FallosParaAbrir  int
	ExitosParaCerrar int
	Espera           time.Duration
}

func DefaultConfigCB() ConfigCB {
	return ConfigCB{FallosParaAbrir: 5, ExitosParaCerrar: 2, Espera: 30 * time.Second}
}

type CircuitBreaker struct {
	nombre string
	cfg    ConfigCB

	mu          sync.Mutex
	estado      EstadoCB
	fallos      int
	exitos      int
	ultimoFallo time.Time
}

func NewCircuitBreaker(nombre string, cfg ConfigCB) *CircuitBreaker {
	def := DefaultConfigCB()
	if cfg.FallosParaAbrir <= 0 {
		cfg.FallosParaAbrir = def.FallosParaAbrir
	}
	if cfg.ExitosParaCerrar <= 0 {
		cfg.ExitosParaCerrar = def.ExitosParaCerrar
	}
	if cfg.Espera <= 0 {
		cfg.Espera = def.Espera
	}
	return &CircuitBreaker{nombre: nombre, cfg: cfg, estado: CBCerrado}
}

func (cb *CircuitBreaker) Estado() EstadoCB {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.estadoLocked()
}

func (cb *CircuitBreaker) estadoLocked() EstadoCB {
	if cb.estado == CBAbierto && time.Since(cb.ultimoFallo) >= cb.cfg.Espera {
		cb.cambiar(CBSemiabierto)
	}
	return cb.estado
}

// Ejecutar runs fn unless the breaker is open.
func (cb *CircuitBreaker) Ejecutar(fn func() error) error {
	if cb.Estado() == CBAbierto {
		return ErrCircuitoAbierto
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.fallos++
		cb.ultimoFallo = time.Now()
		if cb.estado == CBSemiabierto || cb.fallos >= cb.cfg.FallosParaAbrir {
			cb.cambiar(CBAbierto)
		}
		return err
	}

	switch cb.estado {
	case CBCerrado:
		cb.fallos = 0
	case CBSemiabierto:
		cb.exitos++
		if cb.exitos >= cb.cfg.ExitosParaCerrar {
			cb.cambiar(CBCerrado)
		}
	}
	return nil
}

// cambiar must be called under lock.
func (cb *CircuitBreaker) cambiar(nuevo EstadoCB) {
	if cb.estado == nuevo {
		return
	}
	log.Warn().Str("breaker", cb.nombre).
		Str("de", cb.estado.String()).
		Str("a", nuevo.String()).
		Msg("circuit breaker: cambio de estado")
	cb.estado = nuevo
	cb.fallos = 0
	cb.exitos = 0
}
