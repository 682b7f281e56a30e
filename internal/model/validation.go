package model

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxGameIDLength bounds the session identifier accepted on join,
	// in characters
	MaxGameIDLength = 50
	// MaxPlayerNameLength bounds the trimmed display name, in characters
	MaxPlayerNameLength = 30
)

// ValidateGameID checks a session identifier supplied by a client
func ValidateGameID(id string) error {
	if id == "" || utf8.RuneCountInString(id) > MaxGameIDLength {
		return ErrInvalidGameID
	}
	return nil
}

// ValidatePlayerName checks a display name and returns its trimmed form
func ValidatePlayerName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxPlayerNameLength {
		return "", ErrInvalidPlayerName
	}
	return trimmed, nil
}

// ValidatePlayerRole checks a role token against the fixed enumeration
func ValidatePlayerRole(role string) (PlayerRole, error) {
	switch PlayerRole(role) {
	case RoleHost, RolePlayer1, RolePlayer2:
		return PlayerRole(role), nil
	default:
		return "", ErrInvalidPlayerRole
	}
}
