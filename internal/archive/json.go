package archive

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/risk"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05"

// lineHandler is a slog handler that writes each record as one flat JSON
// object: a "time" field plus every attribute at the top level. Level and
// message are omitted.
type lineHandler struct {
	out   io.Writer
	attrs []slog.Attr
	mu    *sync.Mutex
}

func newLineHandler(out io.Writer) *lineHandler {
	return &lineHandler{out: out, mu: &sync.Mutex{}}
}

func (h *lineHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs)+1)
	fields["time"] = r.Time.UTC().Format(timeLayout)

	add := func(a slog.Attr) bool {
		if a.Key != "" && a.Value.Any() != nil {
			fields[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(append(data, '\n'))
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lineHandler{out: h.out, attrs: merged, mu: h.mu}
}

// WithGroup is a no-op: archive lines are flat.
func (h *lineHandler) WithGroup(string) slog.Handler {
	return h
}

// JsonArchive appends one JSON line per profile to a rotating, compressed file.
type JsonArchive struct {
	lumberjack *lumberjack.Logger
	logger     *slog.Logger
}

// NewJsonArchive creates an archive writing to file, rotating after maxSize
// megabytes and keeping maxBackups old files.
func NewJsonArchive(file string, maxSize, maxBackups int) *JsonArchive {
	writer := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	return newJsonArchive(writer, writer)
}

func newJsonArchive(out io.Writer, rotator *lumberjack.Logger) *JsonArchive {
	return &JsonArchive{
		lumberjack: rotator,
		logger:     slog.New(newLineHandler(out)),
	}
}

// Append records p under the request that computed it.
func (a *JsonArchive) Append(requestID string, p risk.Profile) {
	a.logger.Info("", "request_id", requestID, "archived_at", time.Now().UTC(), "profile", p)
}

// Close flushes and closes the underlying file.
func (a *JsonArchive) Close() {
	if a.lumberjack != nil {
		a.lumberjack.Close()
	}
}
