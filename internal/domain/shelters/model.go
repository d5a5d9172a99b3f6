package shelters

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Contact del refugio. Registros viejos guardaban un string suelto.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (c Contact) Empty() bool {
	return strings.TrimSpace(c.Email) == "" && strings.TrimSpace(c.Phone) == ""
}

// UnmarshalJSON acepta {"email":..,"phone":..} o un string ("a@b.org" / "555-1234").
func (c *Contact) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = ParseContact(s)
		return nil
	}
	type plain Contact
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = Contact{Email: strings.TrimSpace(p.Email), Phone: strings.TrimSpace(p.Phone)}
	return nil
}

func ParseContact(s string) Contact {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "@") {
		return Contact{Email: s}
	}
	return Contact{Phone: s}
}

// AnimalSummary es la copia denormalizada que el refugio guarda de cada animal.
type AnimalSummary struct {
	ID        int64
	Name      string
	Species   string
	Adoptable bool
}

type Shelter struct {
	ID int64

	Name    string
	Address string
	Contact Contact
	Website string

	Animals []AnimalSummary

	OwnerUserID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Shelter) Clone() Shelter {
	out := s
	out.Animals = append(make([]AnimalSummary, 0, len(s.Animals)), s.Animals...)
	return out
}

func (s Shelter) HasAnimal(id int64) bool {
	for _, a := range s.Animals {
		if a.ID == id {
			return true
		}
	}
	return false
}

// UpsertAnimal agrega el resumen o lo refresca si ya estaba.
func (s *Shelter) UpsertAnimal(sum AnimalSummary) {
	for i := range s.Animals {
		if s.Animals[i].ID == sum.ID {
			s.Animals[i] = sum
			return
		}
	}
	s.Animals = append(s.Animals, sum)
}

// RemoveAnimal filtra por id. Devuelve false si no estaba. Nunca deja nil.
func (s *Shelter) RemoveAnimal(id int64) bool {
	kept := make([]AnimalSummary, 0, len(s.Animals))
	found := false
	for _, a := range s.Animals {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	s.Animals = kept
	return found
}
