package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetMissing(t *testing.T) {
	s := New()

	blob, found, err := s.Get(context.Background(), "clickData")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, blob)
}

func TestStore_PutGetCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := []byte(`{"go":1}`)
	require.NoError(t, s.Put(ctx, "clickData", in))
	in[2] = 'X'

	out, found, err := s.Get(ctx, "clickData")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"go":1}`, string(out))

	out[2] = 'Y'
	again, _, _ := s.Get(ctx, "clickData")
	assert.Equal(t, `{"go":1}`, string(again))
	assert.Equal(t, 1, s.Puts())
}

func TestStore_FailPut(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Put(ctx, "k", []byte("1")))

	boom := errors.New("disk full")
	s.FailPut(boom)
	assert.ErrorIs(t, s.Put(ctx, "k", []byte("2")), boom)

	blob, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "1", string(blob))

	s.FailPut(nil)
	assert.NoError(t, s.Put(ctx, "k", []byte("2")))
}

func TestStore_PutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, New().Put(ctx, "k", []byte("1")), context.Canceled)
}
