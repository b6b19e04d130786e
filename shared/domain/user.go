package domain

import "strings"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// User is a snapshot of the backend user record. It is replaced wholesale,
// never patched field by field.
type User struct {
	Id          UserId    `json:"id"`
	Username    Username  `json:"username"`
	Email       Email     `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   Timestamp `json:"created_at,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// UserDetail is the admin view of a single user together with their loans.
type UserDetail struct {
	User
	Loans []Loan `json:"loans"`
}
