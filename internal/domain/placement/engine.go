package placement

import (
	"context"
	"errors"
	"time"

	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/ownership"
	"animal-shelter-api/internal/domain/shelters"

	"go.uber.org/zap"
)

var (
	ErrAlreadyPlaced      = errs.Conflict("The animal is already in another shelter or has already been adopted")
	ErrWithAnotherAdopter = errs.Forbidden("The animal is already in another adopter's care")
	ErrNotInShelter       = errs.NotFound("The animal is not in this shelter")
	ErrNotWithAdopter     = errs.NotFound("The animal is not in this adopter's care")
)

type Engine struct {
	uow     UnitOfWork
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(uow UnitOfWork, opts ...Option) *Engine {
	e := &Engine{
		uow: uow,
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) run(ctx context.Context, op string, fn func(ctx context.Context, r Repos) error) error {
	err := e.uow.Within(ctx, fn)
	e.metrics.observe(op, err)
	return err
}

// AssignShelter mueve un animal sin ubicación al refugio.
// Orden de chequeos: refugio 404, dueño 403, animal 404, estado.
func (e *Engine) AssignShelter(ctx context.Context, callerID string, animalID, shelterID int64) error {
	return e.run(ctx, "assign_shelter", func(ctx context.Context, r Repos) error {
		sh, err := loadShelter(ctx, r, shelterID)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(ownership.ResourceShelter, callerID, sh.OwnerUserID); err != nil {
			return err
		}
		a, err := loadAnimal(ctx, r, animalID)
		if err != nil {
			return err
		}
		if !a.Unlocated() {
			return ErrAlreadyPlaced
		}

		now := e.now()
		a.Location = &animals.Location{ID: sh.ID, Name: sh.Name, Type: animals.LocationShelter}
		a.UpdatedAt = now
		sh.UpsertAnimal(shelterSummary(a))
		sh.UpdatedAt = now

		if err := r.Animals.Update(ctx, a); err != nil {
			return err
		}
		return r.Shelters.Update(ctx, sh)
	})
}

// AssignAdopter acepta animales sin ubicación o en un refugio (adopción).
// Si ya está con un adoptante, falla.
func (e *Engine) AssignAdopter(ctx context.Context, callerID string, animalID, adopterID int64) error {
	return e.run(ctx, "assign_adopter", func(ctx context.Context, r Repos) error {
		ad, err := loadAdopter(ctx, r, adopterID)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(ownership.ResourceAdopter, callerID, ad.OwnerUserID); err != nil {
			return err
		}
		a, err := loadAnimal(ctx, r, animalID)
		if err != nil {
			return err
		}

		now := e.now()
		if a.Location != nil {
			switch a.Location.Type {
			case animals.LocationAdopter:
				return ErrWithAnotherAdopter
			case animals.LocationShelter:
				if err := e.leaveShelter(ctx, r, a, now); err != nil {
					return err
				}
			}
		}

		a.Location = &animals.Location{ID: ad.ID, Name: ad.Name, Type: animals.LocationAdopter}
		a.UpdatedAt = now
		ad.UpsertPet(adopterSummary(a))
		ad.UpdatedAt = now

		if err := r.Animals.Update(ctx, a); err != nil {
			return err
		}
		return r.Adopters.Update(ctx, ad)
	})
}

func (e *Engine) UnassignShelter(ctx context.Context, callerID string, animalID, shelterID int64) error {
	return e.run(ctx, "unassign_shelter", func(ctx context.Context, r Repos) error {
		sh, err := loadShelter(ctx, r, shelterID)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(ownership.ResourceShelter, callerID, sh.OwnerUserID); err != nil {
			return err
		}
		a, err := loadAnimal(ctx, r, animalID)
		if err != nil {
			return err
		}
		if !a.At(animals.LocationShelter, sh.ID) {
			return ErrNotInShelter
		}

		now := e.now()
		sh.RemoveAnimal(a.ID)
		sh.UpdatedAt = now
		a.Location = nil
		a.UpdatedAt = now

		if err := r.Shelters.Update(ctx, sh); err != nil {
			return err
		}
		return r.Animals.Update(ctx, a)
	})
}

func (e *Engine) UnassignAdopter(ctx context.Context, callerID string, animalID, adopterID int64) error {
	return e.run(ctx, "unassign_adopter", func(ctx context.Context, r Repos) error {
		ad, err := loadAdopter(ctx, r, adopterID)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(ownership.ResourceAdopter, callerID, ad.OwnerUserID); err != nil {
			return err
		}
		a, err := loadAnimal(ctx, r, animalID)
		if err != nil {
			return err
		}
		if !a.At(animals.LocationAdopter, ad.ID) {
			return ErrNotWithAdopter
		}

		now := e.now()
		ad.RemovePet(a.ID)
		ad.UpdatedAt = now
		a.Location = nil
		a.UpdatedAt = now

		if err := r.Adopters.Update(ctx, ad); err != nil {
			return err
		}
		return r.Animals.Update(ctx, a)
	})
}

// DeleteAnimal saca al animal de la lista de su dueño antes de borrarlo.
func (e *Engine) DeleteAnimal(ctx context.Context, animalID int64) error {
	return e.run(ctx, "delete_animal", func(ctx context.Context, r Repos) error {
		a, err := loadAnimal(ctx, r, animalID)
		if err != nil {
			return err
		}

		now := e.now()
		if a.Location != nil {
			switch a.Location.Type {
			case animals.LocationShelter:
				if err := e.leaveShelter(ctx, r, a, now); err != nil {
					return err
				}
			case animals.LocationAdopter:
				if err := e.leaveAdopter(ctx, r, a, now); err != nil {
					return err
				}
			}
		}
		return r.Animals.Delete(ctx, a.ID)
	})
}

// DeleteShelter deja sin ubicación a cada animal del refugio y luego lo borra.
func (e *Engine) DeleteShelter(ctx context.Context, callerID string, shelterID int64) error {
	return e.run(ctx, "delete_shelter", func(ctx context.Context, r Repos) error {
		sh, err := loadShelter(ctx, r, shelterID)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(ownership.ResourceShelter, callerID, sh.OwnerUserID); err != nil {
			return err
		}

		now := e.now()
		for _, sum := range sh.Animals {
			if err := e.release(ctx, r, sum.ID, animals.LocationShelter, sh.ID, now); err != nil {
				return err
			}
		}
		e.log.Info("shelter deleted",
			zap.Int64("shelter_id", sh.ID),
			zap.Int("animals_released", len(sh.Animals)),
		)
		return r.Shelters.Delete(ctx, sh.ID)
	})
}

func (e *Engine) DeleteAdopter(ctx context.Context, callerID string, adopterID int64) error {
	return e.run(ctx, "delete_adopter", func(ctx context.Context, r Repos) error {
		ad, err := loadAdopter(ctx, r, adopterID)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(ownership.ResourceAdopter, callerID, ad.OwnerUserID); err != nil {
			return err
		}

		now := e.now()
		for _, sum := range ad.Pets {
			if err := e.release(ctx, r, sum.ID, animals.LocationAdopter, ad.ID, now); err != nil {
				return err
			}
		}
		e.log.Info("adopter deleted",
			zap.Int64("adopter_id", ad.ID),
			zap.Int("animals_released", len(ad.Pets)),
		)
		return r.Adopters.Delete(ctx, ad.ID)
	})
}

// EditAnimal actualiza atributos y refresca el resumen guardado por su dueño.
func (e *Engine) EditAnimal(ctx context.Context, animalID int64, in animals.UpdateInput, replace bool) (animals.Animal, error) {
	var out animals.Animal
	err := e.run(ctx, "edit_animal", func(ctx context.Context, r Repos) error {
		a, err := loadAnimal(ctx, r, animalID)
		if err != nil {
			return err
		}
		updated, err := animals.ApplyUpdate(a, in, replace, e.now())
		if err != nil {
			return err
		}
		if err := r.Animals.Update(ctx, updated); err != nil {
			return err
		}
		if err := e.refreshSummary(ctx, r, updated); err != nil {
			return err
		}
		out = updated
		return nil
	})
	return out, err
}

// EditShelter revalida unicidad del nombre (excluyéndose) y propaga el rename a los animales.
func (e *Engine) EditShelter(ctx context.Context, callerID string, shelterID int64, in shelters.UpdateInput, replace bool) (shelters.Shelter, error) {
	var out shelters.Shelter
	err := e.run(ctx, "edit_shelter", func(ctx context.Context, r Repos) error {
		sh, err := loadShelter(ctx, r, shelterID)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(ownership.ResourceShelter, callerID, sh.OwnerUserID); err != nil {
			return err
		}
		updated, err := shelters.ApplyUpdate(sh, in, replace, e.now())
		if err != nil {
			return err
		}
		renamed := updated.Name != sh.Name
		if renamed {
			if err := shelters.EnsureNameAvailable(ctx, r.Shelters, updated.Name, sh.ID); err != nil {
				return err
			}
		}
		if err := r.Shelters.Update(ctx, updated); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				return shelters.ErrNameTaken
			}
			return err
		}
		if renamed {
			for _, sum := range updated.Animals {
				if err := e.renameLocation(ctx, r, sum.ID, animals.LocationShelter, updated.ID, updated.Name); err != nil {
					return err
				}
			}
		}
		out = updated
		return nil
	})
	return out, err
}

func (e *Engine) EditAdopter(ctx context.Context, callerID string, adopterID int64, in adopters.UpdateInput, replace bool) (adopters.Adopter, error) {
	var out adopters.Adopter
	err := e.run(ctx, "edit_adopter", func(ctx context.Context, r Repos) error {
		ad, err := loadAdopter(ctx, r, adopterID)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(ownership.ResourceAdopter, callerID, ad.OwnerUserID); err != nil {
			return err
		}
		updated, err := adopters.ApplyUpdate(ad, in, replace, e.now())
		if err != nil {
			return err
		}
		if err := r.Adopters.Update(ctx, updated); err != nil {
			return err
		}
		if updated.Name != ad.Name {
			for _, sum := range updated.Pets {
				if err := e.renameLocation(ctx, r, sum.ID, animals.LocationAdopter, updated.ID, updated.Name); err != nil {
					return err
				}
			}
		}
		out = updated
		return nil
	})
	return out, err
}

// leaveShelter quita al animal de la lista del refugio actual.
// Un refugio inexistente se tolera (referencia colgante, la limpia reconcile).
func (e *Engine) leaveShelter(ctx context.Context, r Repos, a animals.Animal, now time.Time) error {
	sh, err := r.Shelters.GetByID(ctx, a.Location.ID)
	if errs.IsNotFound(err) {
		e.log.Warn("dangling shelter reference",
			zap.Int64("animal_id", a.ID),
			zap.Int64("shelter_id", a.Location.ID),
		)
		return nil
	}
	if err != nil {
		return err
	}
	sh.RemoveAnimal(a.ID)
	sh.UpdatedAt = now
	return r.Shelters.Update(ctx, sh)
}

func (e *Engine) leaveAdopter(ctx context.Context, r Repos, a animals.Animal, now time.Time) error {
	ad, err := r.Adopters.GetByID(ctx, a.Location.ID)
	if errs.IsNotFound(err) {
		e.log.Warn("dangling adopter reference",
			zap.Int64("animal_id", a.ID),
			zap.Int64("adopter_id", a.Location.ID),
		)
		return nil
	}
	if err != nil {
		return err
	}
	ad.RemovePet(a.ID)
	ad.UpdatedAt = now
	return r.Adopters.Update(ctx, ad)
}

// release deja sin ubicación al animal si todavía apunta a (typ, ownerID).
func (e *Engine) release(ctx context.Context, r Repos, animalID int64, typ animals.LocationType, ownerID int64, now time.Time) error {
	a, err := r.Animals.GetByID(ctx, animalID)
	if errs.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !a.At(typ, ownerID) {
		return nil
	}
	a.Location = nil
	a.UpdatedAt = now
	return r.Animals.Update(ctx, a)
}

func (e *Engine) renameLocation(ctx context.Context, r Repos, animalID int64, typ animals.LocationType, ownerID int64, name string) error {
	a, err := r.Animals.GetByID(ctx, animalID)
	if errs.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !a.At(typ, ownerID) || a.Location.Name == name {
		return nil
	}
	a.Location.Name = name
	return r.Animals.Update(ctx, a)
}

func (e *Engine) refreshSummary(ctx context.Context, r Repos, a animals.Animal) error {
	if a.Location == nil {
		return nil
	}
	switch a.Location.Type {
	case animals.LocationShelter:
		sh, err := r.Shelters.GetByID(ctx, a.Location.ID)
		if errs.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		sh.UpsertAnimal(shelterSummary(a))
		return r.Shelters.Update(ctx, sh)
	case animals.LocationAdopter:
		ad, err := r.Adopters.GetByID(ctx, a.Location.ID)
		if errs.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		ad.UpsertPet(adopterSummary(a))
		return r.Adopters.Update(ctx, ad)
	}
	return nil
}

func shelterSummary(a animals.Animal) shelters.AnimalSummary {
	return shelters.AnimalSummary{ID: a.ID, Name: a.Name, Species: a.Species, Adoptable: a.Adoptable}
}

func adopterSummary(a animals.Animal) adopters.PetSummary {
	return adopters.PetSummary{ID: a.ID, Name: a.Name, Species: a.Species}
}

func loadAnimal(ctx context.Context, r Repos, id int64) (animals.Animal, error) {
	a, err := r.Animals.GetByID(ctx, id)
	if errs.IsNotFound(err) {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, err
}

func loadShelter(ctx context.Context, r Repos, id int64) (shelters.Shelter, error) {
	sh, err := r.Shelters.GetByID(ctx, id)
	if errs.IsNotFound(err) {
		return shelters.Shelter{}, shelters.ErrNotFound
	}
	return sh, err
}

func loadAdopter(ctx context.Context, r Repos, id int64) (adopters.Adopter, error) {
	ad, err := r.Adopters.GetByID(ctx, id)
	if errs.IsNotFound(err) {
		return adopters.Adopter{}, adopters.ErrNotFound
	}
	return ad, err
}
