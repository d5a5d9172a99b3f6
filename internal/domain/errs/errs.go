// Package errs define la taxonomía de errores compartida por dominio, stores y handlers.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error es un error de dominio con mensaje pensado para el cliente.
// Kind es uno de los sentinels de arriba, así errors.Is sigue funcionando.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Invalid(msg string) error   { return New(ErrInvalidInput, msg) }
func NotFound(msg string) error  { return New(ErrNotFound, msg) }
func Forbidden(msg string) error { return New(ErrForbidden, msg) }
func Conflict(msg string) error  { return New(ErrConflict, msg) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// StoreError envuelve fallas de I/O del store (driver, red, disco).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store devuelve nil si err es nil; deja pasar errores de dominio sin envolver.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// Message devuelve el texto apto para el body de la respuesta. Lo que no es
// un error de dominio no se expone.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Error()
	}
	for _, kind := range []error{ErrInvalidInput, ErrNotFound, ErrForbidden, ErrConflict, ErrUnauthorized} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal error"
}
