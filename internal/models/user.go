package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
)

// User описывает учётную запись и профиль пользователя (таблица profiles).
type User struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	Email          string           `db:"email" json:"email"`
	PasswordHash   string           `db:"password_hash" json:"-"`
	Role           valueobject.Role `db:"role" json:"role"`
	FullName       string           `db:"full_name" json:"full_name"`
	Phone          *string          `db:"phone" json:"phone,omitempty"`
	BusinessName   *string          `db:"business_name" json:"business_name,omitempty"`
	MailingAddress *string          `db:"mailing_address" json:"mailing_address,omitempty"`
	IsActive       bool             `db:"is_active" json:"is_active"`
	LastLoginAt    *time.Time       `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// DisplayName имя для писем: полное имя, а если его нет, email.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
