package placement_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"animal-shelter-api/internal/adapters/storage/memory"
	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/placement"
	"animal-shelter-api/internal/domain/shelters"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner = "auth0|owner"
	other = "auth0|other"
)

type fixture struct {
	store  *memory.Store
	engine *placement.Engine
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	return &fixture{
		store:  store,
		engine: placement.NewEngine(store, placement.WithMetrics(placement.NewMetrics(reg))),
		reg:    reg,
	}
}

func (f *fixture) animal(t *testing.T, name string) animals.Animal {
	t.Helper()
	a, err := f.store.Animals().Create(context.Background(), animals.Animal{
		Name: name, Species: "dog", Breed: "mixed", Age: 3, Gender: "male",
		Colors: []string{"brown"}, Adoptable: true,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) shelter(t *testing.T, name, ownerID string) shelters.Shelter {
	t.Helper()
	sh, err := f.store.Shelters().Create(context.Background(), shelters.Shelter{
		Name: name, Address: "1 Main St", Contact: shelters.Contact{Email: "h@x.org"},
		Animals: []shelters.AnimalSummary{}, OwnerUserID: ownerID,
	})
	require.NoError(t, err)
	return sh
}

func (f *fixture) adopter(t *testing.T, name, ownerID string) adopters.Adopter {
	t.Helper()
	ad, err := f.store.Adopters().Create(context.Background(), adopters.Adopter{
		Name: name, Email: "a@x.org", PhoneNumber: "555", Pets: []adopters.PetSummary{}, OwnerUserID: ownerID,
	})
	require.NoError(t, err)
	return ad
}

func (f *fixture) getAnimal(t *testing.T, id int64) animals.Animal {
	t.Helper()
	a, err := f.store.Animals().GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) getShelter(t *testing.T, id int64) shelters.Shelter {
	t.Helper()
	sh, err := f.store.Shelters().GetByID(context.Background(), id)
	require.NoError(t, err)
	return sh
}

func (f *fixture) getAdopter(t *testing.T, id int64) adopters.Adopter {
	t.Helper()
	ad, err := f.store.Adopters().GetByID(context.Background(), id)
	require.NoError(t, err)
	return ad
}

func TestEngine_RexHavenScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	haven := f.shelter(t, "Haven", owner)

	require.NoError(t, f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID))

	got := f.getAnimal(t, rex.ID)
	require.NotNil(t, got.Location)
	assert.Equal(t, animals.Location{ID: haven.ID, Name: "Haven", Type: animals.LocationShelter}, *got.Location)
	assert.Equal(t, []shelters.AnimalSummary{{ID: rex.ID, Name: "Rex", Species: "dog", Adoptable: true}}, f.getShelter(t, haven.ID).Animals)

	// segundo assign => conflicto, sin cambios
	err := f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID)
	assert.True(t, errors.Is(err, errs.ErrConflict))
	assert.Len(t, f.getShelter(t, haven.ID).Animals, 1)

	require.NoError(t, f.engine.DeleteShelter(ctx, owner, haven.ID))
	assert.Nil(t, f.getAnimal(t, rex.ID).Location)
	_, err = f.store.Shelters().GetByID(ctx, haven.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestEngine_AssignShelter_CheckOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	haven := f.shelter(t, "Haven", owner)

	// refugio inexistente gana sobre animal inexistente
	err := f.engine.AssignShelter(ctx, owner, 99, 98)
	assert.Same(t, shelters.ErrNotFound, err)

	// 403 antes que 404 del animal
	err = f.engine.AssignShelter(ctx, other, 99, haven.ID)
	assert.True(t, errors.Is(err, errs.ErrForbidden))

	err = f.engine.AssignShelter(ctx, owner, 99, haven.ID)
	assert.Same(t, animals.ErrNotFound, err)
}

func TestEngine_AssignShelter_RejectsAdoptedAnimal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	haven := f.shelter(t, "Haven", owner)
	ana := f.adopter(t, "Ana", owner)

	require.NoError(t, f.engine.AssignAdopter(ctx, owner, rex.ID, ana.ID))

	err := f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID)
	assert.Same(t, placement.ErrAlreadyPlaced, err)
	assert.Empty(t, f.getShelter(t, haven.ID).Animals)
}

func TestEngine_AssignAdopter_FromShelterMovesAnimal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	haven := f.shelter(t, "Haven", owner)
	ana := f.adopter(t, "Ana", owner)

	require.NoError(t, f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID))
	require.NoError(t, f.engine.AssignAdopter(ctx, owner, rex.ID, ana.ID))

	got := f.getAnimal(t, rex.ID)
	require.NotNil(t, got.Location)
	assert.Equal(t, animals.LocationAdopter, got.Location.Type)
	assert.Equal(t, ana.ID, got.Location.ID)
	assert.Equal(t, "Ana", got.Location.Name)

	sh := f.getShelter(t, haven.ID)
	assert.NotNil(t, sh.Animals)
	assert.Empty(t, sh.Animals)
	assert.Equal(t, []adopters.PetSummary{{ID: rex.ID, Name: "Rex", Species: "dog"}}, f.getAdopter(t, ana.ID).Pets)
}

func TestEngine_AssignAdopter_RejectsAnimalWithAnotherAdopter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	ana := f.adopter(t, "Ana", owner)
	bob := f.adopter(t, "Bob", owner)

	require.NoError(t, f.engine.AssignAdopter(ctx, owner, rex.ID, ana.ID))

	err := f.engine.AssignAdopter(ctx, owner, rex.ID, bob.ID)
	assert.Same(t, placement.ErrWithAnotherAdopter, err)
	assert.Empty(t, f.getAdopter(t, bob.ID).Pets)
	assert.Len(t, f.getAdopter(t, ana.ID).Pets, 1)
}

func TestEngine_AssignAdopter_Forbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	ana := f.adopter(t, "Ana", owner)

	err := f.engine.AssignAdopter(ctx, other, rex.ID, ana.ID)
	assert.True(t, errors.Is(err, errs.ErrForbidden))
	assert.Nil(t, f.getAnimal(t, rex.ID).Location)
}

func TestEngine_UnassignShelter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	milo := f.animal(t, "Milo")
	haven := f.shelter(t, "Haven", owner)
	elsewhere := f.shelter(t, "Elsewhere", owner)

	require.NoError(t, f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID))

	// animal en otro lado (o en ninguno) => 404 y sin escrituras
	err := f.engine.UnassignShelter(ctx, owner, rex.ID, elsewhere.ID)
	assert.Same(t, placement.ErrNotInShelter, err)
	err = f.engine.UnassignShelter(ctx, owner, milo.ID, haven.ID)
	assert.Same(t, placement.ErrNotInShelter, err)
	assert.Len(t, f.getShelter(t, haven.ID).Animals, 1)

	require.NoError(t, f.engine.UnassignShelter(ctx, owner, rex.ID, haven.ID))
	assert.Nil(t, f.getAnimal(t, rex.ID).Location)
	sh := f.getShelter(t, haven.ID)
	assert.NotNil(t, sh.Animals)
	assert.Empty(t, sh.Animals)

	// segunda vez ya no está
	err = f.engine.UnassignShelter(ctx, owner, rex.ID, haven.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestEngine_UnassignAdopter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	ana := f.adopter(t, "Ana", owner)

	err := f.engine.UnassignAdopter(ctx, owner, rex.ID, ana.ID)
	assert.Same(t, placement.ErrNotWithAdopter, err)

	require.NoError(t, f.engine.AssignAdopter(ctx, owner, rex.ID, ana.ID))

	err = f.engine.UnassignAdopter(ctx, other, rex.ID, ana.ID)
	assert.True(t, errors.Is(err, errs.ErrForbidden))

	require.NoError(t, f.engine.UnassignAdopter(ctx, owner, rex.ID, ana.ID))
	assert.Nil(t, f.getAnimal(t, rex.ID).Location)
	assert.Empty(t, f.getAdopter(t, ana.ID).Pets)
}

func TestEngine_DeleteAnimal_RemovesMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	milo := f.animal(t, "Milo")
	haven := f.shelter(t, "Haven", owner)

	require.NoError(t, f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID))
	require.NoError(t, f.engine.AssignShelter(ctx, owner, milo.ID, haven.ID))

	require.NoError(t, f.engine.DeleteAnimal(ctx, rex.ID))

	_, err := f.store.Animals().GetByID(ctx, rex.ID)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, []shelters.AnimalSummary{{ID: milo.ID, Name: "Milo", Species: "dog", Adoptable: true}}, f.getShelter(t, haven.ID).Animals)

	assert.Same(t, animals.ErrNotFound, f.engine.DeleteAnimal(ctx, rex.ID))
}

func TestEngine_DeleteAdopter_Cascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	ana := f.adopter(t, "Ana", owner)
	require.NoError(t, f.engine.AssignAdopter(ctx, owner, rex.ID, ana.ID))

	err := f.engine.DeleteAdopter(ctx, other, ana.ID)
	assert.True(t, errors.Is(err, errs.ErrForbidden))

	require.NoError(t, f.engine.DeleteAdopter(ctx, owner, ana.ID))
	assert.Nil(t, f.getAnimal(t, rex.ID).Location)
}

func TestEngine_EditShelter_RenameSyncsLocations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	haven := f.shelter(t, "Haven", owner)
	f.shelter(t, "Taken", owner)
	require.NoError(t, f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID))

	taken := "Taken"
	_, err := f.engine.EditShelter(ctx, owner, haven.ID, shelters.UpdateInput{Name: &taken}, false)
	assert.Same(t, shelters.ErrNameTaken, err)

	// rename a su propio nombre no es conflicto
	same := "Haven"
	_, err = f.engine.EditShelter(ctx, owner, haven.ID, shelters.UpdateInput{Name: &same}, false)
	require.NoError(t, err)

	newName := "Safe Haven"
	updated, err := f.engine.EditShelter(ctx, owner, haven.ID, shelters.UpdateInput{Name: &newName}, false)
	require.NoError(t, err)
	assert.Equal(t, "Safe Haven", updated.Name)
	assert.Equal(t, "1 Main St", updated.Address)
	assert.Len(t, updated.Animals, 1)
	assert.Equal(t, owner, updated.OwnerUserID)

	assert.Equal(t, "Safe Haven", f.getAnimal(t, rex.ID).Location.Name)
}

func TestEngine_EditShelter_PutRequiresAllFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	haven := f.shelter(t, "Haven", owner)

	name := "Haven II"
	_, err := f.engine.EditShelter(ctx, owner, haven.ID, shelters.UpdateInput{Name: &name}, true)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
	assert.Equal(t, "Haven", f.getShelter(t, haven.ID).Name)
}

func TestEngine_EditAnimal_RefreshesSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	ana := f.adopter(t, "Ana", owner)
	require.NoError(t, f.engine.AssignAdopter(ctx, owner, rex.ID, ana.ID))

	name := "Rexy"
	updated, err := f.engine.EditAnimal(ctx, rex.ID, animals.UpdateInput{Name: &name}, false)
	require.NoError(t, err)
	assert.Equal(t, "Rexy", updated.Name)
	assert.NotNil(t, updated.Location)
	assert.Equal(t, "Rexy", f.getAdopter(t, ana.ID).Pets[0].Name)
}

func TestEngine_EditAdopter_RenameSyncsLocations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	ana := f.adopter(t, "Ana", owner)
	require.NoError(t, f.engine.AssignAdopter(ctx, owner, rex.ID, ana.ID))

	name := "Ana María"
	updated, err := f.engine.EditAdopter(ctx, owner, ana.ID, adopters.UpdateInput{Name: &name}, false)
	require.NoError(t, err)
	assert.Len(t, updated.Pets, 1)
	assert.Equal(t, "Ana María", f.getAnimal(t, rex.ID).Location.Name)
}

func TestEngine_CountsOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	haven := f.shelter(t, "Haven", owner)

	require.NoError(t, f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID))
	_ = f.engine.AssignShelter(ctx, owner, rex.ID, haven.ID)

	n, err := testutil.GatherAndCount(f.reg, "shelter_placement_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n) // ok + error
}

func TestEngine_DeleteShelter_CascadesAllMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	haven := f.shelter(t, "Haven", owner)

	var ids []int64
	for _, name := range []string{"Rex", "Luna", "Toby"} {
		a := f.animal(t, name)
		require.NoError(t, f.engine.AssignShelter(ctx, owner, a.ID, haven.ID))
		ids = append(ids, a.ID)
	}
	require.Len(t, f.getShelter(t, haven.ID).Animals, 3)

	require.NoError(t, f.engine.DeleteShelter(ctx, owner, haven.ID))
	for _, id := range ids {
		assert.Nil(t, f.getAnimal(t, id).Location, "animal %d", id)
	}
}

func TestEngine_ConcurrentAssignLeavesOneMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.animal(t, "Rex")
	havens := []shelters.Shelter{
		f.shelter(t, "Haven", owner),
		f.shelter(t, "Refuge", owner),
		f.shelter(t, "Sanctuary", owner),
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, sh := range havens {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			err := f.engine.AssignShelter(ctx, owner, rex.ID, id)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, errs.ErrConflict), "got %v", err)
		}(sh.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	members := 0
	for _, sh := range havens {
		members += len(f.getShelter(t, sh.ID).Animals)
	}
	assert.Equal(t, 1, members)
	got := f.getAnimal(t, rex.ID)
	require.NotNil(t, got.Location)
	assert.Len(t, f.getShelter(t, got.Location.ID).Animals, 1)
}
