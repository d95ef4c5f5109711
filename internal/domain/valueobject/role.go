package valueobject

import (
	"strings"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

// Role роль пользователя, зашивается в access токен.
type Role string

const (
	RoleLandlord   Role = "landlord"
	RoleContractor Role = "contractor"
	RoleAdmin      Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleLandlord, RoleContractor, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable сообщает, можно ли выбрать роль при самостоятельной регистрации.
func (r Role) SelfAssignable() bool {
	return r == RoleLandlord || r == RoleContractor
}

func ParseRole(role string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.IsValid() {
		return "", apperror.Newf(apperror.ErrCodeValidation, "invalid role %q", role)
	}
	return r, nil
}
