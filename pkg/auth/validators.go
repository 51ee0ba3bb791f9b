package auth

// MeResponse represents the current user response.
type MeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsAdmin   bool   `json:"is_admin"`
}
