// Package stream держит дашборд открытым и отправляет его через server-sent events
// после каждого обновления, пока клиент не отключится.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

// heartbeat период комментария-пинга в потоке
const heartbeat = 15 * time.Second

const (
	EventDashboard = "dashboard"
	EventRedirect  = "redirect"
	EventClosed    = "closed"
)

// Boards реестр дашбордов с фоновым опросом
type Boards interface {
	Open(sessionID string, role models.Role) *dashboard.Board
	Release(b *dashboard.Board)
	Refresh(ctx context.Context, b *dashboard.Board, backend dashboard.Backend) error
	Poll(ctx context.Context, b *dashboard.Board, backend dashboard.Backend)
	View(b *dashboard.Board) any
}

// Handler обрабатывает GET /patient-dashboard/stream и GET /doctor-dashboard/stream
type Handler struct {
	log    *slog.Logger
	role   models.Role
	boards Boards
	bind   func(*http.Request) dashboard.Backend
}

func New(log *slog.Logger, role models.Role, boards Boards, bind func(*http.Request) dashboard.Backend) *Handler {
	return &Handler{log: log, role: role, boards: boards, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.stream"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("role", string(h.role)),
	)

	ctx := r.Context()
	handle := session.FromContext(ctx)
	backend := h.bind(r)

	b := h.boards.Open(handle.ID(), h.role)
	defer h.boards.Release(b)

	if err := h.boards.Refresh(ctx, b, backend); err != nil {
		log.Error("failed to load dashboard", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	// поток живет дольше WriteTimeout сервера
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Warn("write deadline not supported, stream ends at server write timeout", sl.Err(err))
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	// 401 при опросе очищает сессию уже после отправки заголовков, клиент узнает об этом из события redirect
	handle.DetachCookie()

	select {
	case <-b.Changed():
	default:
	}
	if err := send(rc, w, EventDashboard, h.boards.View(b)); err != nil {
		log.Error("failed to send dashboard", sl.Err(err))
		return
	}

	go h.boards.Poll(ctx, b, backend)
	log.Info("dashboard stream opened")

	ping := time.NewTicker(heartbeat)
	defer ping.Stop()

	for {
		select {
		case <-ping.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				log.Info("dashboard stream write failed", sl.Err(err))
				return
			}
			_ = rc.Flush()
		case <-ctx.Done():
			log.Info("dashboard stream closed by client")
			return
		case <-b.Done():
			h.finish(ctx, rc, w, handle, log)
			return
		case <-b.Changed():
			if err := send(rc, w, EventDashboard, h.boards.View(b)); err != nil {
				log.Error("failed to send dashboard", sl.Err(err))
				return
			}
		}
	}
}

// finish сообщает клиенту, почему поток закрыт: сессии больше нет
// или дашборд сессии открыт в другом месте
func (h *Handler) finish(ctx context.Context, rc *http.ResponseController, w http.ResponseWriter, handle *session.Handle, log *slog.Logger) {
	_, ok, err := handle.Get(ctx)
	if err != nil {
		log.Error("failed to load session", sl.Err(err))
	}
	if err == nil && !ok {
		log.Info("session ended, redirecting stream")
		_ = send(rc, w, EventRedirect, response.Response{Status: response.StatusError, Redirect: routes.LoginFor(h.role)})
		return
	}
	log.Info("dashboard replaced, stream closed")
	_ = send(rc, w, EventClosed, response.OK())
}

func send(rc *http.ResponseController, w http.ResponseWriter, event string, data any) error {
	const op = "handlers.dashboard.stream.send"
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := rc.Flush(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
