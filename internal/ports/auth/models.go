package auth

// Claims representa la información extraída del token.
// UserID es el id numérico del usuario (claim "sub").
type Claims struct {
	UserID int64
	Email  string
}
