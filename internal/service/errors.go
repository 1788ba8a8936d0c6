package service

import "errors"

// Error kinds. Handlers map them to HTTP status with errors.Is.
var (
	ErrNoEncontrado = errors.New("no encontrado")
	ErrValidacion   = errors.New("validación")
	ErrConflicto    = errors.New("conflicto")
)

// Error carries a client-facing message and one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func noEncontrado(msg string) error { return &Error{Kind: ErrNoEncontrado, Msg: msg} }
func validacion(msg string) error   { return &Error{Kind: ErrValidacion, Msg: msg} }
func conflicto(msg string) error    { return &Error{Kind: ErrConflicto, Msg: msg} }
