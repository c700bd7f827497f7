// SPDX-License-Identifier: GPL-3.0-or-later

package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTapDispatchFansOutToSubscribers(t *testing.T) {
	tap := NewTap[int]("test")

	var a, b int
	tap.Subscribe("a", func(_ context.Context, v int) error { a += v; return nil })
	tap.Subscribe("b", func(_ context.Context, v int) error { b += v; return nil })

	tap.Dispatch(context.Background(), 5)
	tap.Dispatch(context.Background(), 3)

	assert.Equal(t, 8, a)
	assert.Equal(t, 8, b)
}

func TestTapSubscriptionCloseStopsFutureDispatch(t *testing.T) {
	tap := NewTap[int]("test")

	var sum int
	sub := tap.Subscribe("a", func(_ context.Context, v int) error { sum += v; return nil })

	tap.Dispatch(context.Background(), 1)
	require.NoError(t, sub.Close())
	tap.Dispatch(context.Background(), 100)

	assert.Equal(t, 1, sum)
}

func TestTapSubscribeReplacesSameName(t *testing.T) {
	tap := NewTap[int]("test")

	var first, second bool
	tap.Subscribe("a", func(_ context.Context, _ int) error { first = true; return nil })
	tap.Subscribe("a", func(_ context.Context, _ int) error { second = true; return nil })

	tap.Dispatch(context.Background(), 1)

	assert.False(t, first)
	assert.True(t, second)
}

func TestTapSubscriptionCloseIsIdempotent(t *testing.T) {
	tap := NewTap[int]("test")
	sub := tap.Subscribe("a", func(_ context.Context, _ int) error { return nil })
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
}
