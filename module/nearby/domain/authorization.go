package domain

import "fmt"

type AuthorizationStatus string

const (
	AuthorizationAuthorized   AuthorizationStatus = "authorized"
	AuthorizationDenied       AuthorizationStatus = "denied"
	AuthorizationRestricted   AuthorizationStatus = "restricted"
	AuthorizationUndetermined AuthorizationStatus = "undetermined"
)

func ParseAuthorizationStatus(s string) (AuthorizationStatus, error) {
	switch st := AuthorizationStatus(s); st {
	case AuthorizationAuthorized, AuthorizationDenied, AuthorizationRestricted, AuthorizationUndetermined:
		return st, nil
	}
	return "", fmt.Errorf("unknown authorization status %q", s)
}

// Blocks reports whether position data must not be used under this status.
func (s AuthorizationStatus) Blocks() bool {
	return s == AuthorizationDenied || s == AuthorizationRestricted
}
