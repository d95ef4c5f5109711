package logger

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

type ctxKey string

// RequestIDKey ключ request id в context.Context.
const RequestIDKey ctxKey = "request_id"

var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// Init инициализирует структурированный логгер.
func Init(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// SetOutput перенаправляет вывод логгера, в тестах обычно в io.Discard.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// FromContext возвращает запись логгера с request_id, если он есть в контексте.
func FromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(Log)
	if ctx == nil {
		return entry
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}

// Errorf нужен для goroutine.RecoveryHandler.
func Errorf(format string, args ...interface{}) {
	Log.Errorf(format, args...)
}
