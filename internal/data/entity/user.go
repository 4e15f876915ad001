package entity

import "github.com/google/uuid"

type UserRole string

const (
	RolePatient UserRole = "patient"
	RoleStaff   UserRole = "staff"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RolePatient, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Phone        *string  `db:"phone"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}

type Patient struct {
	BaseNoDelete
	UserID      *uuid.UUID `db:"user_id"`
	FullName    string     `db:"full_name"`
	Mobile      string     `db:"mobile"`
	Email       string     `db:"email"`
	Address     string     `db:"address"`
	DateOfBirth *string    `db:"date_of_birth"`
	Gender      *string    `db:"gender"`
}

type Staff struct {
	BaseNoDelete
	UserID     uuid.UUID `db:"user_id"`
	FullName   string    `db:"full_name"`
	Email      string    `db:"email"`
	Department string    `db:"department"`
	Role       UserRole  `db:"role"`
	IsActive   bool      `db:"is_active"`
}
