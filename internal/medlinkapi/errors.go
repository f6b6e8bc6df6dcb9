package medlinkapi

import (
	"fmt"
	"strings"
)

// Violation нарушение правила валидации для одного поля
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError ввод отклонен до обращения к backend
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, ", ")
}

// AuthError backend ответил 401. Redirect пуст, если запрос пришел со страницы входа
// или регистрации и сессию трогать не нужно.
type AuthError struct {
	Status   int
	Message  string
	Redirect string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// NetworkError ответ от backend не получен
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Retryable сетевую ошибку можно повторить
func (e *NetworkError) Retryable() bool { return true }

// APIError ошибка приложения от backend, сообщение показывается пользователю как есть
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}
