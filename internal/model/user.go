package model

import "time"

type Role string

const (
	RoleStudent    Role = "student"
	RoleRestaurant Role = "restaurant"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleRestaurant
}

type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Cedula       string    `json:"cedula,omitempty"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
