// SPDX-License-Identifier: GPL-3.0-or-later

package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyAttachAndStopDetachesSubscriptions(t *testing.T) {
	tap := NewTap[int]("test")
	p := NewPolicy("p1")

	var sum int
	Attach(p, tap, "counter", func(_ context.Context, v int) error { sum += v; return nil })

	tap.Dispatch(context.Background(), 1)
	assert.Equal(t, 1, sum)

	p.Stop()
	assert.True(t, p.Stopped())

	tap.Dispatch(context.Background(), 100)
	assert.Equal(t, 1, sum, "no further events should reach a stopped policy's handler")
}

func TestPolicyHandlerRegistryRoundTrip(t *testing.T) {
	p := NewPolicy("p1")
	h := namedHandler("dns")
	p.RegisterHandler(h)

	got, ok := p.Handler("dns")
	require.True(t, ok)
	assert.Equal(t, "dns", got.Name())

	_, ok = p.Handler("missing")
	assert.False(t, ok)

	assert.Len(t, p.Handlers(), 1)
}

type namedHandler string

func (n namedHandler) Name() string { return string(n) }
