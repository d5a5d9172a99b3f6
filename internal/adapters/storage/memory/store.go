package memory

import (
	"context"
	"maps"
	"sync"

	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/placement"
	"animal-shelter-api/internal/domain/shelters"
	"animal-shelter-api/internal/domain/users"
)

// Store guarda todo en mapas protegidos por un único lock.
// Within toma el lock por toda la unidad de trabajo y restaura un snapshot si falla.
type Store struct {
	mu sync.RWMutex

	animals  map[int64]animals.Animal
	shelters map[int64]shelters.Shelter
	adopters map[int64]adopters.Adopter
	users    map[int64]users.User

	seq struct {
		animals, shelters, adopters, users int64
	}
}

func NewStore() *Store {
	return &Store{
		animals:  make(map[int64]animals.Animal),
		shelters: make(map[int64]shelters.Shelter),
		adopters: make(map[int64]adopters.Adopter),
		users:    make(map[int64]users.User),
	}
}

func (s *Store) Animals() animals.Repository   { return &animalRepo{guard{s: s}} }
func (s *Store) Shelters() shelters.Repository { return &shelterRepo{guard{s: s}} }
func (s *Store) Adopters() adopters.Repository { return &adopterRepo{guard{s: s}} }
func (s *Store) Users() users.Repository       { return &userRepo{guard{s: s}} }

type snapshot struct {
	animals  map[int64]animals.Animal
	shelters map[int64]shelters.Shelter
	adopters map[int64]adopters.Adopter
	seq      struct{ animals, shelters, adopters, users int64 }
}

// Los valores guardados nunca se mutan in-place (se clonan al entrar y salir),
// así que alcanza con copiar los mapas.
func (s *Store) snapshot() snapshot {
	return snapshot{
		animals:  maps.Clone(s.animals),
		shelters: maps.Clone(s.shelters),
		adopters: maps.Clone(s.adopters),
		seq:      s.seq,
	}
}

func (s *Store) restore(snap snapshot) {
	s.animals = snap.animals
	s.shelters = snap.shelters
	s.adopters = snap.adopters
	s.seq = snap.seq
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, r placement.Repos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(ctx, placement.Repos{
		Animals:  &animalRepo{guard{s: s, tx: true}},
		Shelters: &shelterRepo{guard{s: s, tx: true}},
		Adopters: &adopterRepo{guard{s: s, tx: true}},
	})
}

// lock/rlock son no-op dentro de Within (el lock ya está tomado).
type guard struct {
	s  *Store
	tx bool
}

func (g guard) lock() func() {
	if g.tx {
		return func() {}
	}
	g.s.mu.Lock()
	return g.s.mu.Unlock
}

func (g guard) rlock() func() {
	if g.tx {
		return func() {}
	}
	g.s.mu.RLock()
	return g.s.mu.RUnlock
}

var _ placement.UnitOfWork = (*Store)(nil)
