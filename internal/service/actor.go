package service

import (
	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

// Actor автор запроса: идентификатор и роль из access токена.
type Actor struct {
	ID   uuid.UUID
	Role valueobject.Role
}

// IsAdmin сообщает, что запрос выполняет администратор.
func (a Actor) IsAdmin() bool {
	return a.Role == valueobject.RoleAdmin
}

// CanManage true для владельца записи и администратора.
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.ID == ownerID
}

// require проверяет роль автора запроса.
func (a Actor) require(roles ...valueobject.Role) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return apperror.ErrForbidden
}
