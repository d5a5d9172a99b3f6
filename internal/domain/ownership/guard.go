// Package ownership decide si un usuario autenticado puede operar sobre un recurso ajeno.
package ownership

import (
	"strings"

	"animal-shelter-api/internal/domain/errs"
)

const (
	ResourceShelter = "shelter"
	ResourceAdopter = "adopter"
)

var ErrUnauthenticated = errs.New(errs.ErrUnauthorized, "Missing or invalid JWT")

// Authorize devuelve nil solo si callerID es el dueño.
// Falla cerrado: dueño vacío (registro legacy sin usuario) => forbidden.
func Authorize(resource, callerID, ownerID string) error {
	callerID = strings.TrimSpace(callerID)
	ownerID = strings.TrimSpace(ownerID)

	if callerID == "" {
		return ErrUnauthenticated
	}
	if ownerID == "" || ownerID != callerID {
		return errs.Forbidden("The JWT is valid but the " + resource + " belongs to another user")
	}
	return nil
}
