package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type ctxKey struct{}

var (
	mu    sync.RWMutex
	level = LevelInfo
	base  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// Init настраивает консольный вывод с именем приложения в каждой записи.
func Init(app string) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	mu.Lock()
	base = zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	mu.Unlock()
}

// SetOutput переключает логгер на JSON-вывод в w (используется в тестах).
func SetOutput(w io.Writer) {
	mu.Lock()
	base = zerolog.New(w)
	mu.Unlock()
}

func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

// WithRequestID кладёт идентификатор запроса в контекст; он попадает во все записи.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Debug(ctx context.Context, msg string, fields ...any) {
	write(ctx, LevelDebug, nil, msg, fields)
}

func Info(ctx context.Context, msg string, fields ...any) {
	write(ctx, LevelInfo, nil, msg, fields)
}

func Warn(ctx context.Context, msg string, fields ...any) {
	write(ctx, LevelWarn, nil, msg, fields)
}

// Error пишет запись уровня error; err может быть nil.
func Error(ctx context.Context, err error, msg string, fields ...any) {
	write(ctx, LevelError, err, msg, fields)
}

func write(ctx context.Context, l Level, err error, msg string, fields []any) {
	mu.RLock()
	enabled := l >= level
	lg := base
	mu.RUnlock()
	if !enabled {
		return
	}

	var event *zerolog.Event
	switch l {
	case LevelDebug:
		event = lg.Debug()
	case LevelWarn:
		event = lg.Warn()
	case LevelError:
		event = lg.Error()
	default:
		event = lg.Info()
	}

	if err != nil {
		event = event.Err(err)
	}
	if id := RequestID(ctx); id != "" {
		event = event.Str("request_id", id)
	}
	if len(fields) > 0 {
		if len(fields)%2 != 0 {
			fields = append(fields, "!MISSING")
		}
		event = event.Fields(fields)
	}
	event.Msg(msg)
}
