package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"animal-shelter-api/internal/domain/errs"
	"animal-shelter-api/internal/platform/paging"
)

var (
	ErrNotFound = errs.NotFound("No user with this user_id exists")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Ensure crea el usuario si todavía no existe. Idempotente.
func (s *Service) Ensure(ctx context.Context, externalID, email string) (User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return User{}, errs.Invalid("user id required")
	}

	u, err := s.repo.GetByExternalID(ctx, externalID)
	if err == nil {
		return u, nil
	}
	if !errs.IsNotFound(err) {
		return User{}, err
	}

	u, err = s.repo.Create(ctx, User{
		ExternalID: externalID,
		Email:      strings.TrimSpace(email),
		CreatedAt:  s.now(),
	})
	if errors.Is(err, errs.ErrConflict) {
		// otro request lo creó en paralelo
		return s.repo.GetByExternalID(ctx, externalID)
	}
	return u, err
}

// EnsureUser es la forma que consume el middleware.
func (s *Service) EnsureUser(ctx context.Context, externalID, email string) error {
	_, err := s.Ensure(ctx, externalID, email)
	return err
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errs.IsNotFound(err) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Service) List(ctx context.Context, p paging.Page) (paging.Result[User], error) {
	items, err := s.repo.List(ctx, p)
	if err != nil {
		return paging.Result[User]{}, err
	}
	return paging.Build(items, p, func(u User) int64 { return u.ID }), nil
}
