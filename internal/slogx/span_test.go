// SPDX-License-Identifier: GPL-3.0-or-later

package slogx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos [][]any
}

func (r *recordingLogger) Debug(msg string, args ...any) {}
func (r *recordingLogger) Info(msg string, args ...any) {
	r.infos = append(r.infos, append([]any{msg}, args...))
}

func TestSpanTagsEveryLogCall(t *testing.T) {
	rec := &recordingLogger{}
	logger, id := Span(rec)
	require.NotEmpty(t, id)

	logger.Info("bucket rotated", "window", 5)

	require.Len(t, rec.infos, 1)
	entry := rec.infos[0]
	assert.Equal(t, "bucket rotated", entry[0])
	assert.Contains(t, entry, "span_id")
	assert.Contains(t, entry, id)
}

func TestSpanIDsAreUnique(t *testing.T) {
	_, id1 := Span(&recordingLogger{})
	_, id2 := Span(&recordingLogger{})
	assert.NotEqual(t, id1, id2)
}
