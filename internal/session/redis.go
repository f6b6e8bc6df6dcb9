package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/medlink-portal/internal/cache"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

const keyPrefix = "medlink:session:"

// RedisStore хранит сессию в трех ключах: token, user и role
type RedisStore struct {
	db  *redis.Client
	ttl time.Duration
}

// NewRedisStore создает хранилище поверх общего подключения к redis
func NewRedisStore(c *cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{db: c.Db, ttl: ttl}
}

func keys(id string) (token, user, role string) {
	base := keyPrefix + id
	return base + ":token", base + ":user", base + ":role"
}

// Save записывает все три ключа в одной транзакции MULTI/EXEC
func (r *RedisStore) Save(ctx context.Context, id string, s models.Session) error {
	const op = "session.RedisStore.Save"
	if err := validate(s); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tokenKey, userKey, roleKey := keys(id)
	_, err = r.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey, s.Token, r.ttl)
		pipe.Set(ctx, userKey, userJSON, r.ttl)
		pipe.Set(ctx, roleKey, string(s.Role), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load читает ключи одним MGET, отсутствие любого из них означает отсутствие сессии
func (r *RedisStore) Load(ctx context.Context, id string) (*models.Session, error) {
	const op = "session.RedisStore.Load"
	tokenKey, userKey, roleKey := keys(id)
	vals, err := r.db.MGet(ctx, tokenKey, userKey, roleKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	raw := make([]string, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, ErrNotFound
		}
		raw[i] = s
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw[1]), &user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s := &models.Session{Token: raw[0], User: user, Role: models.Role(raw[2])}
	if err := validate(*s); err != nil {
		return nil, errors.Join(ErrNotFound, err)
	}
	return s, nil
}

// Delete удаляет все три ключа одной командой DEL
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	const op = "session.RedisStore.Delete"
	tokenKey, userKey, roleKey := keys(id)
	if err := r.db.Del(ctx, tokenKey, userKey, roleKey).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
