package domain

import "github.com/google/uuid"

// NewID gera o identificador de entidades (UUID v4 em texto).
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether s parses as a UUID.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
