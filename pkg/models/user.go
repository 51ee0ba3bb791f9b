package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `bun:",notnull" json:"email"`
	FirstName string    `bun:",notnull" json:"first_name"`
	LastName  string    `bun:",notnull" json:"last_name"`
	Role      string    `bun:",notnull" json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
