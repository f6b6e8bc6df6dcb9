package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// Handle сессия одного браузера в рамках запроса.
// Пустой id означает, что сессии нет.
type Handle struct {
	store Store

	mu       sync.Mutex
	id       string
	onChange func(id string)
}

// NewHandle создает handle поверх store. onChange вызывается с новым id
// после входа и с пустой строкой после очистки.
func NewHandle(store Store, id string, onChange func(id string)) *Handle {
	if onChange == nil {
		onChange = func(string) {}
	}
	return &Handle{store: store, id: id, onChange: onChange}
}

// ID текущий идентификатор сессии. Методы чтения и Clear допускают nil-handle.
func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.id
}

// Set сохраняет токен, пользователя и роль под новым идентификатором,
// старая сессия удаляется
func (h *Handle) Set(ctx context.Context, token string, user models.User, role models.Role) error {
	const op = "session.Handle.Set"
	h.mu.Lock()
	defer h.mu.Unlock()

	newID := uuid.NewString()
	if err := h.store.Save(ctx, newID, models.Session{Token: token, User: user, Role: role}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if h.id != "" {
		if err := h.store.Delete(ctx, h.id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	h.id = newID
	h.onChange(newID)
	return nil
}

// DetachCookie отключает перезапись cookie. Вызывается, когда заголовки ответа
// уже отправлены: дальнейшие Set и Clear меняют только store.
func (h *Handle) DetachCookie() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = func(string) {}
}

// Refresh заменяет снимок пользователя в текущей сессии, токен, роль и id не меняются
func (h *Handle) Refresh(ctx context.Context, user models.User) error {
	const op = "session.Handle.Refresh"
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id == "" {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	s, err := h.store.Load(ctx, h.id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.User = user
	if err := h.store.Save(ctx, h.id, *s); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get возвращает сессию, false если ее нет
func (h *Handle) Get(ctx context.Context) (models.Session, bool, error) {
	const op = "session.Handle.Get"
	if h == nil {
		return models.Session{}, false, nil
	}
	h.mu.Lock()
	id := h.id
	h.mu.Unlock()
	if id == "" {
		return models.Session{}, false, nil
	}

	s, err := h.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return *s, true, nil
}

// Clear удаляет все три поля сессии. Повторный вызов ничего не делает.
func (h *Handle) Clear(ctx context.Context) error {
	const op = "session.Handle.Clear"
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id == "" {
		return nil
	}
	if err := h.store.Delete(ctx, h.id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	h.id = ""
	h.onChange("")
	return nil
}

type ctxKey struct{}

// WithHandle кладет handle в контекст запроса
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// FromContext достает handle из контекста, nil если middleware не подключен
func FromContext(ctx context.Context) *Handle {
	h, _ := ctx.Value(ctxKey{}).(*Handle)
	return h
}
