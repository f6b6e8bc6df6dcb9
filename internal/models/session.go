package models

import (
	"time"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/jwt"
)

// Role: роль владельца сессии.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Session: клиентское доказательство аутентификации вместе с кэшированными
// данными пользователя и ролью.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
	Role  Role   `json:"role"`
}

// Expired сообщает, истёк ли токен сессии к моменту now.
//
// Подпись не проверяется: её проверяет backend. Токен без claim exp
// или не являющийся JWT считается неистёкшим, решение остаётся за backend.
func (s Session) Expired(now time.Time) bool {
	claims, err := jwt.Parse(s.Token)
	if err != nil {
		return false
	}
	return claims.Expired(now)
}
