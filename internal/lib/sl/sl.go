// Package sl содержит вспомогательные атрибуты для логгера slog
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки, для nil пишет пустую строку
//
//	log.Error("failed to load appointments", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
