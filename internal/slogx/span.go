// SPDX-License-Identifier: GPL-3.0-or-later

// Package slogx adds span-scoped correlation on top of the root package's
// [netvisor.SLogger]/[netvisor.NewSpanID] primitives. It does not
// reimplement logging: every bucket period rotation, HTTP scrape, and
// OrgID lookup that wants its log lines correlated wraps its logger once
// with [Span] and threads the returned [netvisor.SLogger] through instead
// of the bare one.
package slogx

import netvisor "github.com/netvisor/agent"

// Span wraps logger so every Debug/Info call carries a "span_id" field
// identifying this call chain, and returns the span id itself for
// embedding in error responses or further correlation.
func Span(logger netvisor.SLogger) (netvisor.SLogger, string) {
	id := netvisor.NewSpanID()
	return &spanLogger{logger: logger, id: id}, id
}

type spanLogger struct {
	logger netvisor.SLogger
	id     string
}

var _ netvisor.SLogger = (*spanLogger)(nil)

func (s *spanLogger) Debug(msg string, args ...any) {
	s.logger.Debug(msg, append([]any{"span_id", s.id}, args...)...)
}

func (s *spanLogger) Info(msg string, args ...any) {
	s.logger.Info(msg, append([]any{"span_id", s.id}, args...)...)
}
