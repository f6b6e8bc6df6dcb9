// Package medlinkapi единственная точка обращения портала к REST API MedLink.
//
// Каждый запрос идет от имени конкретной сессии браузера (Caller), несет ее токен
// и централизованно обрабатывает 401: сессия очищается, а вызывающий получает
// *AuthError с адресом редиректа. На страницах входа и регистрации 401 означает
// неверные учетные данные и сессию не трогает.
package medlinkapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

const maxResponseBody = 4 << 20

// DirectoryCache кэш публичного каталога врачей
type DirectoryCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Options параметры клиента
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *Metrics
	Cache      DirectoryCache
	DoctorsTTL time.Duration
	Now        func() time.Time
}

// Client HTTP-клиент backend, общий для всех сессий
type Client struct {
	baseURL    string
	http       *http.Client
	log        *slog.Logger
	metrics    *Metrics
	cache      DirectoryCache
	doctorsTTL time.Duration
	validate   *validator.Validate
	now        func() time.Time
}

// New создает клиента backend
func New(log *slog.Logger, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		http:       httpClient,
		log:        log.With(slog.String("component", "medlinkapi")),
		metrics:    opts.Metrics,
		cache:      opts.Cache,
		doctorsTTL: opts.DoctorsTTL,
		validate:   newValidator(),
		now:        now,
	}
}

// Caller клиент, привязанный к сессии браузера и странице, которая сейчас отрисовывается
type Caller struct {
	c      *Client
	handle *session.Handle
	route  string
}

// For привязывает клиента к сессии h. currentRoute определяет реакцию на 401.
func (c *Client) For(h *session.Handle, currentRoute string) *Caller {
	return &Caller{c: c, handle: h, route: currentRoute}
}

// Session текущая сессия вызывающего
func (cl *Caller) Session(ctx context.Context) (models.Session, bool, error) {
	if cl.handle == nil {
		return models.Session{}, false, nil
	}
	return cl.handle.Get(ctx)
}

type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	header   http.Header
	body     any
	out      any
	public   bool
}

func (cl *Caller) do(ctx context.Context, rq call) error {
	const op = "medlinkapi.do"
	c := cl.c
	started := time.Now()
	log := c.log.With(slog.String("endpoint", rq.endpoint))

	sess, hasSession, err := cl.Session(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if hasSession && sess.Expired(c.now()) {
		log.Info("session token expired")
		switch {
		case routes.IsAuthPage(cl.route):
			hasSession = false
		case rq.public:
			_ = cl.invalidate(ctx, log, "session expired")
			hasSession = false
		default:
			return cl.invalidate(ctx, log, "session expired")
		}
	}

	var body io.Reader
	if rq.body != nil {
		buf, err := json.Marshal(rq.body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	target := c.baseURL + rq.path
	if len(rq.query) > 0 {
		target += "?" + rq.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, rq.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if rq.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range rq.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if hasSession {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		c.metrics.observe(rq.endpoint, outcomeNetwork, started)
		log.Warn("backend unreachable", sl.Err(err))
		return &NetworkError{Endpoint: rq.endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		c.metrics.observe(rq.endpoint, outcomeNetwork, started)
		log.Warn("failed to read backend response", sl.Err(err))
		return &NetworkError{Endpoint: rq.endpoint, Err: err}
	}
	log.Debug("backend responded",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.metrics.observe(rq.endpoint, outcomeAuth, started)
		msg := errorMessage(raw)
		if routes.IsAuthPage(cl.route) {
			return &AuthError{Status: resp.StatusCode, Message: msg}
		}
		if !hasSession {
			return &AuthError{Status: resp.StatusCode, Message: msg, Redirect: routes.Login}
		}
		return cl.invalidate(ctx, log, msg)
	case resp.StatusCode >= http.StatusBadRequest:
		c.metrics.observe(rq.endpoint, outcomeAPI, started)
		msg := errorMessage(raw)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	c.metrics.observe(rq.endpoint, outcomeOK, started)
	if rq.out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, rq.out); err != nil {
		return fmt.Errorf("%s: decode %s response: %w", op, rq.endpoint, err)
	}
	return nil
}

// invalidate очищает сессию и возвращает ошибку с редиректом на вход
func (cl *Caller) invalidate(ctx context.Context, log *slog.Logger, msg string) error {
	if cl.handle != nil {
		if err := cl.handle.Clear(ctx); err != nil {
			log.Error("failed to clear session", sl.Err(err))
		}
	}
	cl.c.metrics.sessionInvalidated()
	log.Info("session invalidated", slog.String("route", cl.route))
	return &AuthError{Status: http.StatusUnauthorized, Message: msg, Redirect: routes.Login}
}

// errorMessage достает текст ошибки из тела ответа backend
func errorMessage(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	switch {
	case payload.Error != "":
		return payload.Error
	case payload.Message != "":
		return payload.Message
	default:
		return payload.Msg
	}
}

// decodeList принимает как голый массив, так и обертку {"<key>": [...]}
func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	const op = "medlinkapi.decodeList"
	trimmed := bytes.TrimSpace(raw)
	list := []T{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return list, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return list, nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil, fmt.Errorf("%s: no %q in response", op, key)
	}
	if bytes.Equal(bytes.TrimSpace(inner), []byte("null")) {
		return list, nil
	}
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
