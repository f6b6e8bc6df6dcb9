package session

import (
	"net/http"
	"time"
)

// CookieOptions параметры cookie с идентификатором сессии
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Middleware создает Handle для каждого запроса по cookie и кладет его в контекст.
// При входе и выходе cookie переписывается через Handle.
func Middleware(store Store, opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(opts.Name); err == nil {
				id = c.Value
			}
			h := NewHandle(store, id, func(newID string) {
				http.SetCookie(w, cookie(opts, newID))
			})
			next.ServeHTTP(w, r.WithContext(WithHandle(r.Context(), h)))
		})
	}
}

func cookie(opts CookieOptions, id string) *http.Cookie {
	c := &http.Cookie{
		Name:     opts.Name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if id == "" {
		c.MaxAge = -1
		return c
	}
	if opts.TTL > 0 {
		c.MaxAge = int(opts.TTL.Seconds())
	}
	return c
}
