// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify is the single channel through which the offer controllers
// report outcomes to the user. Every flow (create, list, edit) receives a
// Sink, so success and failure are surfaced the same way everywhere.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Level classifies a notice for display.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notice is one user-facing message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Sink receives notices. Implementations must not block for long; a notice
// that cannot be delivered is logged and dropped.
type Sink interface {
	Notify(ctx context.Context, n Notice)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notice)

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Error reports a failure.
func Error(ctx context.Context, s Sink, msg string) {
	s.Notify(ctx, Notice{Level: LevelError, Message: msg})
}

// Success reports a completed action.
func Success(ctx context.Context, s Sink, msg string) {
	s.Notify(ctx, Notice{Level: LevelSuccess, Message: msg})
}

// Log is a Sink that only writes to the structured log.
type Log struct{}

// Notify logs the notice at a level matching its severity.
func (Log) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	switch n.Level {
	case LevelError:
		level = slog.LevelError
	case LevelWarning:
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "notice", "level", string(n.Level), "message", n.Message)
}

// Tee delivers each notice to every sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, n Notice) {
		for _, s := range sinks {
			s.Notify(ctx, n)
		}
	})
}

// Recorder collects notices in memory. It is used where notices are
// rendered in the same response, and in tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify appends the notice.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the collected notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Drain returns the collected notices and clears the recorder.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}
