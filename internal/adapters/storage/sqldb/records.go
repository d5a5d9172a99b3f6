package sqldb

import (
	"encoding/json"
	"time"

	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/shelters"
	"animal-shelter-api/internal/domain/users"
)

// Forma persistida en la columna data. Los campos "legacy" solo se leen:
// registros viejos guardaban contact como string, el dueño en "user"
// y la lista de mascotas del adoptante en "pet".

type animalRecord struct {
	Name         string            `json:"name"`
	Species      string            `json:"species"`
	Breed        string            `json:"breed"`
	Age          int               `json:"age"`
	Gender       string            `json:"gender"`
	Colors       []string          `json:"colors"`
	Adoptable    bool              `json:"adoptable"`
	Microchipped bool              `json:"microchipped"`
	Location     *animals.Location `json:"location"`
	OwnerUserID  string            `json:"owner_user_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func encodeAnimal(a animals.Animal) ([]byte, error) {
	colors := a.Colors
	if colors == nil {
		colors = []string{}
	}
	return json.Marshal(animalRecord{
		Name: a.Name, Species: a.Species, Breed: a.Breed, Age: a.Age, Gender: a.Gender,
		Colors: colors, Adoptable: a.Adoptable, Microchipped: a.Microchipped,
		Location: a.Location, OwnerUserID: a.OwnerUserID,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	})
}

func decodeAnimal(id int64, data []byte) (animals.Animal, error) {
	var rec animalRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return animals.Animal{}, err
	}
	return animals.Animal{
		ID: id, Name: rec.Name, Species: rec.Species, Breed: rec.Breed, Age: rec.Age, Gender: rec.Gender,
		Colors: animals.NormalizeColors(rec.Colors), Adoptable: rec.Adoptable, Microchipped: rec.Microchipped,
		Location: rec.Location, OwnerUserID: rec.OwnerUserID,
		CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt,
	}, nil
}

type shelterAnimalRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Species   string `json:"species"`
	Adoptable bool   `json:"adoptable"`
}

type shelterRecord struct {
	Name        string                `json:"name"`
	Address     string                `json:"address"`
	Contact     shelters.Contact      `json:"contact"`
	Website     string                `json:"website,omitempty"`
	Animals     []shelterAnimalRecord `json:"animals"`
	OwnerUserID string                `json:"owner_user_id"`
	LegacyUser  string                `json:"user,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func encodeShelter(sh shelters.Shelter) ([]byte, error) {
	rec := shelterRecord{
		Name: sh.Name, Address: sh.Address, Contact: sh.Contact, Website: sh.Website,
		Animals:     make([]shelterAnimalRecord, 0, len(sh.Animals)),
		OwnerUserID: sh.OwnerUserID,
		CreatedAt:   sh.CreatedAt, UpdatedAt: sh.UpdatedAt,
	}
	for _, a := range sh.Animals {
		rec.Animals = append(rec.Animals, shelterAnimalRecord(a))
	}
	return json.Marshal(rec)
}

func decodeShelter(id int64, data []byte) (shelters.Shelter, error) {
	var rec shelterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return shelters.Shelter{}, err
	}
	owner := rec.OwnerUserID
	if owner == "" {
		owner = rec.LegacyUser
	}
	sh := shelters.Shelter{
		ID: id, Name: rec.Name, Address: rec.Address, Contact: rec.Contact, Website: rec.Website,
		Animals:     make([]shelters.AnimalSummary, 0, len(rec.Animals)),
		OwnerUserID: owner,
		CreatedAt:   rec.CreatedAt, UpdatedAt: rec.UpdatedAt,
	}
	for _, a := range rec.Animals {
		sh.Animals = append(sh.Animals, shelters.AnimalSummary(a))
	}
	return sh, nil
}

type petRecord struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
}

type adopterRecord struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	Pets        []petRecord `json:"pets"`
	OwnerUserID string      `json:"owner_user_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	LegacyContact *struct {
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
	} `json:"contact,omitempty"`
	LegacyPet  []petRecord `json:"pet,omitempty"`
	LegacyUser string      `json:"user,omitempty"`
}

func encodeAdopter(a adopters.Adopter) ([]byte, error) {
	rec := adopterRecord{
		Name: a.Name, Email: a.Email, PhoneNumber: a.PhoneNumber,
		Pets:        make([]petRecord, 0, len(a.Pets)),
		OwnerUserID: a.OwnerUserID,
		CreatedAt:   a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
	for _, p := range a.Pets {
		rec.Pets = append(rec.Pets, petRecord(p))
	}
	return json.Marshal(rec)
}

func decodeAdopter(id int64, data []byte) (adopters.Adopter, error) {
	var rec adopterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return adopters.Adopter{}, err
	}
	if c := rec.LegacyContact; c != nil {
		if rec.Email == "" {
			rec.Email = c.Email
		}
		if rec.PhoneNumber == "" {
			rec.PhoneNumber = c.PhoneNumber
		}
	}
	if rec.Pets == nil {
		rec.Pets = rec.LegacyPet
	}
	if rec.OwnerUserID == "" {
		rec.OwnerUserID = rec.LegacyUser
	}

	a := adopters.Adopter{
		ID: id, Name: rec.Name, Email: rec.Email, PhoneNumber: rec.PhoneNumber,
		Pets:        make([]adopters.PetSummary, 0, len(rec.Pets)),
		OwnerUserID: rec.OwnerUserID,
		CreatedAt:   rec.CreatedAt, UpdatedAt: rec.UpdatedAt,
	}
	for _, p := range rec.Pets {
		a.Pets = append(a.Pets, adopters.PetSummary(p))
	}
	return a, nil
}

type userRecord struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func encodeUser(u users.User) ([]byte, error) {
	return json.Marshal(userRecord{Email: u.Email, CreatedAt: u.CreatedAt})
}

func decodeUser(id int64, externalID string, data []byte) (users.User, error) {
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return users.User{}, err
	}
	return users.User{ID: id, ExternalID: externalID, Email: rec.Email, CreatedAt: rec.CreatedAt}, nil
}
