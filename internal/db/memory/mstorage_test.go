package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

func TestMStorage_SetGet(t *testing.T) {
	m := NewMemStorage()
	ctx := context.Background()

	in := note{Title: "first", Done: true}
	require.NoError(t, Set(ctx, "k1", &in, m))

	out, err := Get[note](ctx, "k1", m)
	require.NoError(t, err)
	assert.Equal(t, in, *out)
	assert.Equal(t, 1, m.Len())
}

func TestMStorage_SetDuplicate(t *testing.T) {
	m := NewMemStorage()
	ctx := context.Background()

	first := note{Title: "first"}
	second := note{Title: "second"}
	require.NoError(t, Set(ctx, "k1", &first, m))

	err := Set(ctx, "k1", &second, m)
	require.ErrorIs(t, err, ErrDuplicateKey)

	// Без WithOverwrite значение не тронуто.
	out, getErr := Get[note](ctx, "k1", m)
	require.NoError(t, getErr)
	assert.Equal(t, "first", out.Title)

	require.NoError(t, Set(ctx, "k1", &second, m, WithOverwrite()))
	out, getErr = Get[note](ctx, "k1", m)
	require.NoError(t, getErr)
	assert.Equal(t, "second", out.Title)
}

func TestMStorage_GetMissing(t *testing.T) {
	m := NewMemStorage()
	_, err := Get[note](context.Background(), "missing", m)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMStorage_Delete(t *testing.T) {
	m := NewMemStorage()
	ctx := context.Background()

	in := note{Title: "first"}
	require.NoError(t, Set(ctx, "k1", &in, m))
	require.NoError(t, Delete(ctx, "k1", m))
	assert.Equal(t, 0, m.Len())

	require.ErrorIs(t, Delete(ctx, "k1", m), ErrNotFound)
}

func TestMStorage_FilterAll(t *testing.T) {
	m := NewMemStorage()
	ctx := context.Background()

	notes := []note{
		{Title: "a", Done: true},
		{Title: "b", Done: false},
		{Title: "c", Done: true},
	}
	for i := range notes {
		require.NoError(t, Set(ctx, notes[i].Title, &notes[i], m))
	}

	done, err := FilterAll[note](ctx, m, func(val note) bool { return val.Done })
	require.NoError(t, err)
	assert.Len(t, done, 2)

	all, err := FilterAll[note](ctx, m, func(note) bool { return true })
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMStorage_canceledContext(t *testing.T) {
	m := NewMemStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := note{Title: "first"}
	require.Error(t, Set(ctx, "k1", &in, m))
	_, err := Get[note](ctx, "k1", m)
	require.Error(t, err)
}
