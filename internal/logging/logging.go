// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidLevel  = errors.New("invalid log level")
	ErrInvalidFormat = errors.New("invalid log format")
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel accepts the slog level names in any case: debug, info, warn,
// error, optionally with an offset such as "debug-2".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "level %q", s), ErrInvalidLevel)
	}
	return level, nil
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		return nil
	}
	return errors.Wrapf(ErrInvalidFormat, "format %q", format)
}

// Validate reports whether New would accept level and format.
func Validate(level, format string) error {
	if _, err := ParseLevel(level); err != nil {
		return err
	}
	return checkFormat(format)
}

// New returns a logger writing to w in the given format ("text" or "json")
// at the given minimum level.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// ReportError logs err at Error level with its stack trace and the hints
// attached anywhere in its chain.
func ReportError(logger *slog.Logger, msg string, err error) {
	attrs := []any{"err", fmt.Sprintf("%+v", err)}
	if hint := errors.FlattenHints(err); hint != "" {
		attrs = append(attrs, "hint", hint)
	}
	logger.Error(msg, attrs...)
}
