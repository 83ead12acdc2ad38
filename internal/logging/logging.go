// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to
// stderr. If file is set, every record is also written there.
type levelRouter struct {
	level  slog.Leveler
	stdout slog.Handler
	stderr slog.Handler
	file   slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if r.Level >= slog.LevelError {
		err = lr.stderr.Handle(ctx, r)
	} else {
		err = lr.stdout.Handle(ctx, r)
	}
	if lr.file != nil {
		err = errors.Join(err, lr.file.Handle(ctx, r.Clone()))
	}
	return err
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
	if lr.file != nil {
		out.file = lr.file.WithAttrs(attrs)
	}
	return out
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	out := &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
	if lr.file != nil {
		out.file = lr.file.WithGroup(name)
	}
	return out
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newHandler builds a handler for w in the given format. Text output is
// colored only when w is a terminal.
func newHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return tint.NewHandler(w, &tint.Options{Level: level, NoColor: noColor})
}

// Setup configures structured logging: INFO/WARN go to stdout, ERROR goes to
// stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func Setup(level, format, logPath string) (func(), error) {
	lvl := ParseLevel(level)
	handler, cleanup, err := newRouter(os.Stdout, os.Stderr, lvl, format, logPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func newRouter(stdout, stderr io.Writer, level slog.Level, format, logPath string) (*levelRouter, func(), error) {
	lr := &levelRouter{
		level:  level,
		stdout: newHandler(stdout, format, level),
		stderr: newHandler(stderr, format, level),
	}

	cleanup := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		lr.file = newHandler(f, format, level)
	}
	return lr, cleanup, nil
}
