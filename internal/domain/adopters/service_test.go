package adopters_test

import (
	"context"
	"testing"
	"time"

	"animal-shelter-api/internal/adapters/storage/memory"
	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/domain/ownership"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ana() adopters.CreateInput {
	return adopters.CreateInput{Name: "Ana", Email: "ana@example.org", PhoneNumber: "555-0101"}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := adopters.NewService(memory.NewStore().Adopters())

	_, err := svc.Create(ctx, "", ana())
	assert.ErrorIs(t, err, ownership.ErrUnauthenticated)

	noPhone := ana()
	noPhone.PhoneNumber = " "
	_, err = svc.Create(ctx, "u1", noPhone)
	assert.ErrorIs(t, err, adopters.ErrInvalidInput)

	a, err := svc.Create(ctx, "u1", ana())
	require.NoError(t, err)
	assert.NotNil(t, a.Pets)
	assert.Equal(t, "u1", a.OwnerUserID)

	// dos adoptantes con el mismo nombre son válidos
	_, err = svc.Create(ctx, "u2", ana())
	require.NoError(t, err)
}

func TestGetOwned(t *testing.T) {
	ctx := context.Background()
	svc := adopters.NewService(memory.NewStore().Adopters())
	a, err := svc.Create(ctx, "u1", ana())
	require.NoError(t, err)

	_, err = svc.GetOwned(ctx, "u2", a.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = svc.GetOwned(ctx, "u1", 999)
	assert.ErrorIs(t, err, adopters.ErrNotFound)
	assert.Equal(t, "No adopter with this adopter_id exists", errs.Message(err))
}

func TestApplyUpdate_KeepsPets(t *testing.T) {
	base := adopters.Adopter{
		ID: 1, Name: "Ana", Email: "ana@example.org", PhoneNumber: "555",
		Pets: []adopters.PetSummary{{ID: 3, Name: "Rex"}}, OwnerUserID: "u1",
	}
	email := "ana@new.org"
	out, err := adopters.ApplyUpdate(base, adopters.UpdateInput{Email: &email}, false, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ana@new.org", out.Email)
	assert.Equal(t, base.Pets, out.Pets)
	assert.Equal(t, "u1", out.OwnerUserID)

	_, err = adopters.ApplyUpdate(base, adopters.UpdateInput{Email: &email}, true, time.Now())
	assert.ErrorIs(t, err, adopters.ErrInvalidInput)
}
