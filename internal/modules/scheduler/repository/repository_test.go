package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore(t *testing.T) {
	s := NewMemoryStateStore()
	ctx := context.Background()

	_, ok, err := s.LastRun(ctx, "weekly-digest")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkRun(ctx, "weekly-digest", at))

	got, ok, err := s.LastRun(ctx, "weekly-digest")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, at, got)
}

func TestNewStateStore(t *testing.T) {
	s, err := NewStateStore("memory", nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStateStore{}, s)

	_, err = NewStateStore("etcd", nil, nil)
	assert.Error(t, err)
}
