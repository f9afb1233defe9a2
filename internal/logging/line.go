package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// LineTimeFormat is the timestamp layout used in log file lines.
const LineTimeFormat = "2006-01-02 15:04:05"

// LineHandler writes one "<timestamp> <LEVEL>: <message>" line per
// record. Attributes are not rendered; messages carry everything the
// log file reader needs.
type LineHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
}

// NewLineHandler creates a LineHandler writing records at or above level.
func NewLineHandler(w io.Writer, level slog.Leveler) *LineHandler {
	return &LineHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	buf := make([]byte, 0, len(LineTimeFormat)+len(r.Message)+16)
	buf = ts.AppendFormat(buf, LineTimeFormat)
	buf = append(buf, ' ')
	buf = append(buf, levelName(r.Level)...)
	buf = append(buf, ": "...)
	buf = append(buf, r.Message...)
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf)

	return err
}

func (h *LineHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *LineHandler) WithGroup(string) slog.Handler { return h }

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
