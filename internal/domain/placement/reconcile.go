package placement

import (
	"context"
	"errors"
	"slices"

	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/shelters"
	"animal-shelter-api/internal/platform/paging"

	"go.uber.org/zap"
)

const scanBatch = 100

// Report resume lo que Reconcile encontró (y arregló, salvo en dry-run).
type Report struct {
	AnimalsScanned    int  `json:"animals_scanned"`
	SheltersScanned   int  `json:"shelters_scanned"`
	AdoptersScanned   int  `json:"adopters_scanned"`
	DanglingLocations int  `json:"dangling_locations"`
	MissingEntries    int  `json:"missing_entries"`
	StaleSummaries    int  `json:"stale_summaries"`
	OrphanEntries     int  `json:"orphan_entries"`
	StaleNames        int  `json:"stale_names"`
	DryRun            bool `json:"dry_run"`
}

func (r Report) Repairs() int {
	return r.DanglingLocations + r.MissingEntries + r.StaleSummaries + r.OrphanEntries + r.StaleNames
}

var errDryRun = errors.New("dry run")

// Reconcile recorre todo el store y deja las dos direcciones de la relación de acuerdo:
//   - ubicación que apunta a un dueño inexistente => se limpia
//   - ubicación sin entrada en la lista del dueño => se agrega la entrada
//   - entrada en una lista sin animal que apunte ahí => se quita
//   - nombre de ubicación desactualizado => se reescribe
//
// La ubicación del animal manda. Con dryRun nada se persiste.
func (e *Engine) Reconcile(ctx context.Context, dryRun bool) (Report, error) {
	rep := Report{DryRun: dryRun}

	err := e.uow.Within(ctx, func(ctx context.Context, r Repos) error {
		all, err := scanAnimals(ctx, r.Animals)
		if err != nil {
			return err
		}
		shs, err := scanShelters(ctx, r.Shelters)
		if err != nil {
			return err
		}
		ads, err := scanAdopters(ctx, r.Adopters)
		if err != nil {
			return err
		}
		rep.AnimalsScanned = len(all)
		rep.SheltersScanned = len(shs)
		rep.AdoptersScanned = len(ads)

		now := e.now()
		dirtyShelters := map[int64]bool{}
		dirtyAdopters := map[int64]bool{}
		byID := make(map[int64]animals.Animal, len(all))

		for _, a := range all {
			if a.Location != nil {
				dirty := false
				switch a.Location.Type {
				case animals.LocationShelter:
					sh, ok := shs[a.Location.ID]
					if !ok {
						a.Location = nil
						rep.DanglingLocations++
						dirty = true
						break
					}
					want := shelterSummary(a)
					if !sh.HasAnimal(a.ID) {
						rep.MissingEntries++
						dirtyShelters[sh.ID] = true
					} else if !slices.Contains(sh.Animals, want) {
						rep.StaleSummaries++
						dirtyShelters[sh.ID] = true
					}
					sh.UpsertAnimal(want)
					shs[sh.ID] = sh
					if a.Location.Name != sh.Name {
						a.Location.Name = sh.Name
						rep.StaleNames++
						dirty = true
					}
				case animals.LocationAdopter:
					ad, ok := ads[a.Location.ID]
					if !ok {
						a.Location = nil
						rep.DanglingLocations++
						dirty = true
						break
					}
					want := adopterSummary(a)
					if !ad.HasPet(a.ID) {
						rep.MissingEntries++
						dirtyAdopters[ad.ID] = true
					} else if !slices.Contains(ad.Pets, want) {
						rep.StaleSummaries++
						dirtyAdopters[ad.ID] = true
					}
					ad.UpsertPet(want)
					ads[ad.ID] = ad
					if a.Location.Name != ad.Name {
						a.Location.Name = ad.Name
						rep.StaleNames++
						dirty = true
					}
				default:
					a.Location = nil
					rep.DanglingLocations++
					dirty = true
				}
				if dirty {
					a.UpdatedAt = now
					if err := r.Animals.Update(ctx, a); err != nil {
						return err
					}
				}
			}
			byID[a.ID] = a
		}

		for id, sh := range shs {
			for _, sum := range sh.Animals {
				if a, ok := byID[sum.ID]; !ok || !a.At(animals.LocationShelter, id) {
					sh.RemoveAnimal(sum.ID)
					rep.OrphanEntries++
					dirtyShelters[id] = true
				}
			}
			if dirtyShelters[id] {
				sh.UpdatedAt = now
				if err := r.Shelters.Update(ctx, sh); err != nil {
					return err
				}
			}
		}
		for id, ad := range ads {
			for _, sum := range ad.Pets {
				if a, ok := byID[sum.ID]; !ok || !a.At(animals.LocationAdopter, id) {
					ad.RemovePet(sum.ID)
					rep.OrphanEntries++
					dirtyAdopters[id] = true
				}
			}
			if dirtyAdopters[id] {
				ad.UpdatedAt = now
				if err := r.Adopters.Update(ctx, ad); err != nil {
					return err
				}
			}
		}

		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return Report{}, err
	}

	if !dryRun {
		e.metrics.repaired("dangling_location", rep.DanglingLocations)
		e.metrics.repaired("missing_entry", rep.MissingEntries)
		e.metrics.repaired("stale_summary", rep.StaleSummaries)
		e.metrics.repaired("orphan_entry", rep.OrphanEntries)
		e.metrics.repaired("stale_name", rep.StaleNames)
	}
	e.log.Info("reconcile finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("animals", rep.AnimalsScanned),
		zap.Int("repairs", rep.Repairs()),
	)
	return rep, nil
}

func scanAnimals(ctx context.Context, repo animals.Repository) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0)
	p := paging.Page{Limit: scanBatch}
	for {
		items, err := repo.List(ctx, p)
		if err != nil {
			return nil, err
		}
		more := len(items) > p.Limit
		if more {
			items = items[:p.Limit]
		}
		out = append(out, items...)
		if !more {
			return out, nil
		}
		p.After = items[len(items)-1].ID
	}
}

func scanShelters(ctx context.Context, repo shelters.Repository) (map[int64]shelters.Shelter, error) {
	out := map[int64]shelters.Shelter{}
	p := paging.Page{Limit: scanBatch}
	for {
		items, err := repo.List(ctx, p)
		if err != nil {
			return nil, err
		}
		more := len(items) > p.Limit
		if more {
			items = items[:p.Limit]
		}
		for _, sh := range items {
			out[sh.ID] = sh
		}
		if !more {
			return out, nil
		}
		p.After = items[len(items)-1].ID
	}
}

func scanAdopters(ctx context.Context, repo adopters.Repository) (map[int64]adopters.Adopter, error) {
	out := map[int64]adopters.Adopter{}
	p := paging.Page{Limit: scanBatch}
	for {
		items, err := repo.List(ctx, p)
		if err != nil {
			return nil, err
		}
		more := len(items) > p.Limit
		if more {
			items = items[:p.Limit]
		}
		for _, ad := range items {
			out[ad.ID] = ad
		}
		if !more {
			return out, nil
		}
		p.After = items[len(items)-1].ID
	}
}
