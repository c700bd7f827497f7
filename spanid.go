// SPDX-License-Identifier: GPL-3.0-or-later

package netvisor

import "github.com/google/uuid"

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way: a bucket period rotation, an HTTP scrape, an OrgID lookup. We
// recommend using a span ID for uniquely identifying spans and attaching
// it to the logger with [*slog.Logger.With] so related log entries can be
// correlated.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewSpanID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id.String()
}
