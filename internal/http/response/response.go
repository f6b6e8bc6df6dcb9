// Package response содержит единый формат JSON-ответов портала
// и перевод ошибок фасада backend в HTTP-статусы.
package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
)

// Response стандартная структура JSON-ответа.
// Status: "OK" или "Error", Data: данные успешного ответа.
type Response struct {
	Status     string                 `json:"status"`
	Error      string                 `json:"error,omitempty"`
	Violations []medlinkapi.Violation `json:"violations,omitempty"`
	Retryable  bool                   `json:"retryable,omitempty"`
	Redirect   string                 `json:"redirect,omitempty"`
	Data       any                    `json:"data,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OK успешный ответ без данных
func OK() Response {
	return Response{Status: StatusOK}
}

// OKWithData успешный ответ с данными
func OKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error ответ с ошибкой
func Error(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}

// Redirect отправляет 303 на target, тело дублирует адрес для JSON-клиентов
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	w.Header().Set("Location", target)
	render.Status(r, http.StatusSeeOther)
	render.JSON(w, r, Response{Status: StatusOK, Redirect: target})
}

// Fail переводит ошибку фасада в ответ:
// валидация 422, 401 с редиректом 303, недоступность backend 502,
// ошибка backend со своим статусом и исходным текстом.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr   *medlinkapi.ValidationError
		aErr   *medlinkapi.AuthError
		netErr *medlinkapi.NetworkError
		apiErr *medlinkapi.APIError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.As(err, &vErr):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, Response{Status: StatusError, Error: vErr.Error(), Violations: vErr.Violations})
	case errors.As(err, &aErr):
		if aErr.Redirect != "" {
			w.Header().Set("Location", aErr.Redirect)
			render.Status(r, http.StatusSeeOther)
			render.JSON(w, r, Response{Status: StatusError, Error: aErr.Error(), Redirect: aErr.Redirect})
			return
		}
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, Error(aErr.Error()))
	case errors.As(err, &netErr):
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, Response{Status: StatusError, Error: "backend unavailable", Retryable: netErr.Retryable()})
	case errors.As(err, &apiErr):
		render.Status(r, apiErr.Status)
		render.JSON(w, r, Error(apiErr.Message))
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Error("internal error"))
	}
}
