package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medlink-portal/internal/cache"
	"github.com/magabrotheeeer/medlink-portal/internal/config"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

var testSession = models.Session{
	Token: "tok-1",
	User:  models.User{ID: 7, Name: "Ann", Email: "ann@example.com"},
	Role:  models.RolePatient,
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewRedisStore(c, ttl), mr
}

func stores(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t, time.Hour)
	return map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  rs,
	}
}

func TestStore_SaveLoadDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, "sid", testSession))

			got, err := store.Load(ctx, "sid")
			require.NoError(t, err)
			assert.Equal(t, testSession, *got)

			require.NoError(t, store.Delete(ctx, "sid"))
			_, err = store.Load(ctx, "sid")
			assert.ErrorIs(t, err, ErrNotFound)

			// повторное удаление не ошибка
			assert.NoError(t, store.Delete(ctx, "sid"))
		})
	}
}

func TestStore_LoadMissing(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(context.Background(), "unknown")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		session models.Session
	}{
		{name: "no token", session: models.Session{Role: models.RolePatient}},
		{name: "unknown role", session: models.Session{Token: "t", Role: "admin"}},
	}
	for name, store := range stores(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				err := store.Save(context.Background(), "sid", tt.session)
				assert.ErrorIs(t, err, ErrInvalidSession)
			})
		}
	}
}

func TestRedisStore_WritesThreeKeys(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)

	require.NoError(t, store.Save(context.Background(), "abc", testSession))

	token, err := mr.Get("medlink:session:abc:token")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	role, err := mr.Get("medlink:session:abc:role")
	require.NoError(t, err)
	assert.Equal(t, "patient", role)
	assert.True(t, mr.Exists("medlink:session:abc:user"))
	assert.Equal(t, time.Hour, mr.TTL("medlink:session:abc:user"))
}

func TestRedisStore_PartialSessionIsAbsent(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", testSession))
	mr.Del("medlink:session:abc:role")

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expires(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", testSession))
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expires(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", testSession))

	now = now.Add(59 * time.Second)
	_, err := store.Load(ctx, "abc")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}
