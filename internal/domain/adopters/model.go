package adopters

import "time"

// PetSummary es la copia denormalizada que el adoptante guarda de cada animal.
type PetSummary struct {
	ID      int64
	Name    string
	Species string
}

type Adopter struct {
	ID int64

	Name        string
	Email       string
	PhoneNumber string

	Pets []PetSummary

	OwnerUserID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Adopter) Clone() Adopter {
	out := a
	out.Pets = append(make([]PetSummary, 0, len(a.Pets)), a.Pets...)
	return out
}

func (a Adopter) HasPet(id int64) bool {
	for _, p := range a.Pets {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (a *Adopter) UpsertPet(sum PetSummary) {
	for i := range a.Pets {
		if a.Pets[i].ID == sum.ID {
			a.Pets[i] = sum
			return
		}
	}
	a.Pets = append(a.Pets, sum)
}

// RemovePet filtra por id. Devuelve false si no estaba. Nunca deja nil.
func (a *Adopter) RemovePet(id int64) bool {
	kept := make([]PetSummary, 0, len(a.Pets))
	found := false
	for _, p := range a.Pets {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	a.Pets = kept
	return found
}
