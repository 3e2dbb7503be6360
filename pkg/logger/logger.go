package logger

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string // development -> consola legible; production -> JSON
	Level   string // trace, debug, info, warn, error
	Service string
	Version string
	// Output destino de las líneas; por defecto stdout.
	Output io.Writer
}

// Logger wrapper sobre zerolog para inyección y consistencia.
type Logger struct {
	zl zerolog.Logger
}

// New crea un logger estructurado con service/version fijos y el hook que copia
// request_id, user_id y sale_id del contexto de cada evento (ver ContextHook).
func New(cfg Config) *Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stdout
	}
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	zctx := zerolog.New(w).Level(parseLevel(cfg.Level)).Hook(ContextHook{}).With().Timestamp().Str("service", cfg.Service)
	if cfg.Version != "" {
		zctx = zctx.Str("version", cfg.Version)
	}
	zl := zctx.Logger()

	// librerías que usan el logger global de zerolog
	log.Logger = zl
	return &Logger{zl: zl}
}

// parseLevel acepta los nombres de zerolog; vacío o desconocido → info.
func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Component devuelve un sublogger etiquetado con el componente (ledger, http, etc.).
// Hereda el hook de contexto.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zl.With().Str("component", name).Logger()
}

// Zerolog devuelve el logger interno por si se necesita la API directa.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// ──────────────────────────────────────────────────────────────────────────────
// Campos por petición
// ──────────────────────────────────────────────────────────────────────────────

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	saleIDKey
)

// WithRequestID guarda el ID de la petición HTTP en ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

// WithUserID guarda el usuario autenticado en ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return withValue(ctx, userIDKey, id)
}

// WithSaleID guarda la venta en curso: los ajustes de stock que dispara quedan enlazados.
func WithSaleID(ctx context.Context, id string) context.Context {
	return withValue(ctx, saleIDKey, id)
}

// RequestID devuelve el ID de la petición guardado en ctx ("" si no hay).
func RequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextHook añade a cada evento los campos por petición de su contexto.
// Solo actúa sobre eventos con .Ctx(ctx).
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if id := stringValue(ctx, requestIDKey); id != "" {
		e.Str("request_id", id)
	}
	if id := stringValue(ctx, userIDKey); id != "" {
		e.Str("user_id", id)
	}
	if id := stringValue(ctx, saleIDKey); id != "" {
		e.Str("sale_id", id)
	}
}
