package auth

// Claims es la identidad del caller extraída del token.
type Claims struct {
	UserID string // sub
	Email  string
}
