package users

// CreateUserPayload represents the request body for creating a user.
type CreateUserPayload struct {
	Email     string `json:"email" mod:"trim" validate:"required,email,max=255"`
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=255"`
	LastName  string `json:"last_name" mod:"trim" validate:"required,max=255"`
	Role      string `json:"role" default:"reader" validate:"oneof=admin reader"`
}

// UpdateUserPayload represents the request body for updating a user.
type UpdateUserPayload struct {
	Email     *string `json:"email,omitempty" mod:"trim" validate:"omitempty,email,max=255"`
	FirstName *string `json:"first_name,omitempty" mod:"trim" validate:"omitempty,min=1,max=255"`
	LastName  *string `json:"last_name,omitempty" mod:"trim" validate:"omitempty,min=1,max=255"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=admin reader"`
}

// ListUsersQuery represents the query parameters for listing users.
type ListUsersQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Role   *string `query:"role" json:"role,omitempty" validate:"omitempty,oneof=admin reader"`
}
