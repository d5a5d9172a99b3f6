// Package httpx junta lo que todos los handlers repiten: JSON in/out,
// mapeo de errores de dominio a status y links de paginación.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"animal-shelter-api/internal/domain/errs"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const MsgMissingAttributes = "The request object is missing at least one of the required attributes"

var validate = newValidator()

// Los errores de validación nombran el campo como viene en el JSON.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"Error"`
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}

// StatusFor traduce la taxonomía de errs a códigos HTTP. Conflict es 403.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden), errors.Is(err, errs.ErrConflict):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func WriteDomainError(w http.ResponseWriter, err error) {
	WriteError(w, StatusFor(err), errs.Message(err))
}

// Decode lee el body en v y corre las reglas validate:"...". Cualquier
// falla (JSON roto, campo faltante o de tipo incorrecto) es 400.
func Decode(r *http.Request, v any) error {
	if err := DecodeBody(r, v); err != nil {
		return err
	}
	return Validate(v)
}

// DecodeBody solo decodifica. Para PATCH, donde nada es obligatorio.
func DecodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Invalid(MsgMissingAttributes)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return errs.Invalid("Invalid type for attribute " + typeErr.Field)
		}
		return errs.Invalid("Invalid JSON body")
	}
	return nil
}

func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			if fe := ve[0]; fe.Tag() != "required" {
				return errs.Invalid("Invalid value for attribute " + fe.Field())
			}
			return errs.Invalid(MsgMissingAttributes)
		}
		return errs.Invalid(err.Error())
	}
	return nil
}

// PathID lee un path param numérico. Mal formado => 0, que ningún store
// tiene, así el not found sale en el mismo orden que cualquier otro id.
func PathID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, name)), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
