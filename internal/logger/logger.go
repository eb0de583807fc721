// Package logger builds the slog loggers used by the benchmark tooling.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

type Format int

const (
	DevFormat Format = iota
	TextFormat
	JSONFormat
)

// ParseFormat maps "dev", "text"/"txt" and "json" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "dev":
		return DevFormat, nil
	case "txt", "text":
		return TextFormat, nil
	case "json":
		return JSONFormat, nil
	}
	return DevFormat, fmt.Errorf("unknown log format %q", s)
}

// ParseLevel accepts the slog level names, case insensitive.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return lvl, nil
}

type Opt func(o *opts)

type opts struct {
	writer io.Writer
	level  slog.Level
	format Format
}

func WithWriter(w io.Writer) Opt {
	return func(o *opts) {
		o.writer = w
	}
}

func WithLevel(lvl slog.Level) Opt {
	return func(o *opts) {
		o.level = lvl
	}
}

func WithFormat(f Format) Opt {
	return func(o *opts) {
		o.format = f
	}
}

// New returns a logger writing to stderr at info level with the dev
// handler unless overridden.
func New(options ...Opt) *slog.Logger {
	o := &opts{
		writer: os.Stderr,
		level:  slog.LevelInfo,
		format: DevFormat,
	}
	for _, apply := range options {
		apply(o)
	}

	switch o.format {
	case DevFormat:
		return slog.New(tint.NewHandler(o.writer, &tint.Options{
			Level:      o.level,
			TimeFormat: "[15:04:05.000]", // millisecond
		}))
	case TextFormat:
		return slog.New(slog.NewTextHandler(o.writer, &slog.HandlerOptions{Level: o.level}))
	default:
		return slog.New(slog.NewJSONHandler(o.writer, &slog.HandlerOptions{Level: o.level}))
	}
}

// Void discards everything.
func Void() *slog.Logger {
	return New(WithWriter(io.Discard))
}

type ctxKey struct{}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the logger stored in ctx, or a default one.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return New()
}
