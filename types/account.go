package types

import (
	"fmt"
	"strings"
	"time"
)

// Role indicates the authorization level of an account.
type Role string

const (
	// RoleNormal is assigned to every self-service signup.
	RoleNormal Role = "NORMAL"

	// RoleAdmin grants privileged read and delete access.
	RoleAdmin Role = "ADMIN"
)

// ParseRole converts a stored or user supplied value into a Role.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleNormal:
		return RoleNormal, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// CreatedAtLayout is the ISO-8601 layout used for Account.CreatedAt:
// UTC with millisecond precision. Every value has the same width, so
// string order matches time order.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatCreatedAt renders t in CreatedAtLayout.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// Account represents a user identity held by the store.
// It is never mutated after creation.
type Account struct {
	// ID is the opaque unique identifier of the account.
	ID string

	// Name is the display name given at signup.
	Name string

	// Email is the unique address used to log in.
	Email string

	// PasswordHash stores the hashed representation of the password.
	// It never leaves the service in a client-facing shape.
	PasswordHash string

	// Role is the authorization level of the account.
	Role Role

	// CreatedAt is the ISO-8601 timestamp of account creation.
	CreatedAt string
}

// NewAccount builds a NORMAL account stamped with the given creation time.
func NewAccount(id, name, email, passwordHash string, createdAt time.Time) Account {
	return Account{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleNormal,
		CreatedAt:    FormatCreatedAt(createdAt),
	}
}

// AccountRecord is the persisted shape of an account row.
type AccountRecord struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"password" db:"password"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AccountView is the client-facing shape of an account.
// The password hash is intentionally absent.
type AccountView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// TokenPayload is the identity bound into an authorization token.
type TokenPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// AccountFromRecord rebuilds an Account from its stored row.
func AccountFromRecord(record AccountRecord) Account {
	return Account{
		ID:           record.ID,
		Name:         record.Name,
		Email:        record.Email,
		PasswordHash: record.Password,
		Role:         record.Role,
		CreatedAt:    FormatCreatedAt(record.CreatedAt),
	}
}

// Record returns the persisted shape of the account. CreatedAt must be
// an ISO-8601 timestamp.
func (a Account) Record() (AccountRecord, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, a.CreatedAt)
	if err != nil {
		return AccountRecord{}, fmt.Errorf("invalid createdAt %q: %w", a.CreatedAt, err)
	}
	return AccountRecord{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Password:  a.PasswordHash,
		Role:      a.Role,
		CreatedAt: createdAt.UTC(),
	}, nil
}

// View returns the client-facing shape of the account.
func (a Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

// TokenPayload returns the identity claims issued for the account.
func (a Account) TokenPayload() TokenPayload {
	return TokenPayload{
		ID:   a.ID,
		Name: a.Name,
		Role: a.Role,
	}
}

// IsAdmin reports whether the payload carries the ADMIN role.
func (p TokenPayload) IsAdmin() bool {
	return p.Role == RoleAdmin
}
