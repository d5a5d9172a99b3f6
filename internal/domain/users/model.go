package users

import "time"

// User se crea la primera vez que llega un token válido con ese subject.
type User struct {
	ID         int64
	ExternalID string // sub del JWT
	Email      string
	CreatedAt  time.Time
}

// Owned es un refugio o adoptante del usuario, calculado al leer.
type Owned struct {
	ID   int64
	Name string
}
