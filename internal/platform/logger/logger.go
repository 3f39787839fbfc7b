package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Logger es el logger estructurado del módulo. kv son pares clave/valor:
// log.Info("pet created", "pet_id", p.ID, "owner", userID)
type Logger interface {
	With(kv ...any) Logger

	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type Options struct {
	Level  Level
	Format Format
	App    string
	Out    io.Writer // default os.Stdout
}

type stdLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	format Format
	base   []any
}

func New(opts Options) Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	var base []any
	if app := strings.TrimSpace(opts.App); app != "" {
		base = append(base, "app", app)
	}

	return &stdLogger{
		mu:     &sync.Mutex{},
		out:    out,
		level:  opts.Level,
		format: format,
		base:   base,
	}
}

// NewFromEnv crea el logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME (opcional)
func NewFromEnv() Logger {
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    os.Getenv("APP_NAME"),
	})
}

// Nop devuelve un logger que descarta todo (tests).
func Nop() Logger {
	return New(Options{Level: Error + 1, Out: io.Discard})
}

func (l *stdLogger) With(kv ...any) Logger {
	if len(kv) == 0 {
		return l
	}

	base := make([]any, 0, len(l.base)+len(kv))
	base = append(base, l.base...)
	base = append(base, kv...)

	// copia superficial: comparte mu/out/level/format
	return &stdLogger{
		mu:     l.mu,
		out:    l.out,
		level:  l.level,
		format: l.format,
		base:   base,
	}
}

func (l *stdLogger) Debug(msg string, kv ...any) { l.log(Debug, msg, kv) }
func (l *stdLogger) Info(msg string, kv ...any)  { l.log(Info, msg, kv) }
func (l *stdLogger) Warn(msg string, kv ...any)  { l.log(Warn, msg, kv) }
func (l *stdLogger) Error(msg string, kv ...any) { l.log(Error, msg, kv) }

func (l *stdLogger) log(lvl Level, msg string, kv []any) {
	if lvl < l.level {
		return
	}

	entry := map[string]any{
		"ts":    time.Now().Format(time.RFC3339Nano),
		"level": lvl.String(),
		"msg":   msg,
	}
	addPairs(entry, l.base)
	addPairs(entry, kv)

	var line string
	switch l.format {
	case FormatJSON:
		b, _ := json.Marshal(entry)
		line = string(b)
	default:
		line = formatText(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}

func addPairs(entry map[string]any, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		entry[k] = kv[i+1]
	}
}

func formatText(m map[string]any) string {
	// Keys ordenadas para salida estable (útil en tests/logs).
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}
