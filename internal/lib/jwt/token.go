// Package jwt разбирает access-токены backend.
//
// Подпись проверяет backend: портал секрета не знает и смотрит только
// на срок действия, чтобы не отправлять заведомо истекший токен.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims поля токена, которые нужны порталу
type Claims struct {
	ExpiresAt time.Time // нулевое значение, если exp нет
}

// Parse разбирает токен без проверки подписи.
// Остальные claims не типизируются: backend кладет в sub число, а не строку.
func Parse(tokenStr string) (Claims, error) {
	const op = "jwt.Parse"
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, mc); err != nil {
		return Claims{}, fmt.Errorf("%s: %w", op, err)
	}

	var c Claims
	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w", op, err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// Expired истек ли токен к моменту now. Токен без exp не истекает.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
