package auth

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SanitizedUser is the user shape returned to clients, never carrying the
// password hash.
type SanitizedUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  SanitizedUser `json:"user"`
}
