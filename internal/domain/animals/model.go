package animals

import (
	"strings"
	"time"
)

// LocationType indica dónde está el animal.
// @Enum shelter, adopter
type LocationType string

const (
	LocationShelter LocationType = "shelter"
	LocationAdopter LocationType = "adopter"
)

// Location referencia al refugio o adoptante que tiene al animal.
type Location struct {
	ID   int64        `json:"id"`
	Name string       `json:"name"`
	Type LocationType `json:"type"`
}

// Animal representa un animal registrado. Location nil => sin ubicación.
type Animal struct {
	ID int64

	Name         string
	Species      string
	Breed        string
	Age          int
	Gender       string
	Colors       []string
	Adoptable    bool
	Microchipped bool

	Location *Location

	// Usuario que lo registró (opcional).
	OwnerUserID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Animal) Unlocated() bool { return a.Location == nil }

// At dice si la ubicación del animal es exactamente (typ, id).
func (a Animal) At(typ LocationType, id int64) bool {
	return a.Location != nil && a.Location.Type == typ && a.Location.ID == id
}

// Clone copia slices y punteros para que el caller no comparta memoria con el store.
func (a Animal) Clone() Animal {
	out := a
	if a.Colors != nil {
		out.Colors = append([]string(nil), a.Colors...)
	}
	if a.Location != nil {
		loc := *a.Location
		out.Location = &loc
	}
	return out
}

// NormalizeColors trimea, descarta vacíos y deduplica manteniendo el orden.
func NormalizeColors(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
