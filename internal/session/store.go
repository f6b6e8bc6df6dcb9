// Package session хранит сессии браузера на стороне портала.
// Браузер получает только непрозрачный идентификатор в cookie,
// токен, пользователь и роль лежат в Store и всегда сохраняются и удаляются вместе.
package session

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

var (
	// ErrNotFound сессия отсутствует или истекла
	ErrNotFound = errors.New("session not found")
	// ErrInvalidSession попытка сохранить сессию без токена или с неизвестной ролью
	ErrInvalidSession = errors.New("invalid session")
)

// Store хранилище сессий
type Store interface {
	Save(ctx context.Context, id string, s models.Session) error
	Load(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

func validate(s models.Session) error {
	if s.Token == "" || !s.Role.Valid() {
		return ErrInvalidSession
	}
	return nil
}
