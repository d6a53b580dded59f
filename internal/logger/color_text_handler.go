package logger

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// ColorTextHandler wraps slog.TextHandler and prefixes each line with the
// level in an ANSI color.
type ColorTextHandler struct {
	*slog.TextHandler
	w  io.Writer
	mu *sync.Mutex
}

// NewColorTextHandler creates a new ColorTextHandler.
// When showTime is false the time attribute is left out of each line.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, showTime bool) *ColorTextHandler {
	o := slog.HandlerOptions{}
	if opts != nil {
		o = *opts
	}
	replace := o.ReplaceAttr
	o.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 {
			// the level is rendered as the colored prefix instead
			if a.Key == slog.LevelKey || (!showTime && a.Key == slog.TimeKey) {
				return slog.Attr{}
			}
		}
		if replace != nil {
			return replace(groups, a)
		}
		return a
	}
	return &ColorTextHandler{
		TextHandler: slog.NewTextHandler(w, &o),
		w:           w,
		mu:          &sync.Mutex{},
	}
}

// Handle implements slog.Handler
func (h *ColorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	var colorCode string
	switch r.Level {
	case slog.LevelDebug:
		colorCode = "\033[36m" // Cyan
	case slog.LevelInfo:
		colorCode = "\033[32m" // Green
	case slog.LevelWarn:
		colorCode = "\033[33m" // Yellow
	case slog.LevelError:
		colorCode = "\033[31m" // Red
	default:
		colorCode = "\033[0m" // Reset/default
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.WriteString(h.w, colorCode+r.Level.String()+"\033[0m "); err != nil {
		return err
	}
	return h.TextHandler.Handle(ctx, r)
}

func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorTextHandler{TextHandler: h.TextHandler.WithAttrs(attrs).(*slog.TextHandler), w: h.w, mu: h.mu}
}

func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	return &ColorTextHandler{TextHandler: h.TextHandler.WithGroup(name).(*slog.TextHandler), w: h.w, mu: h.mu}
}
