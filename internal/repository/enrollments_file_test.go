package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEnrollments_PersistsJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrolled.json")
	repo := NewFileEnrollmentsRepository(path)

	_, err := repo.InsertIfAbsent(context.Background(), enrollment("sub_1", "Ana", "ana@x.com", time.Now()))
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"email": "ana@x.com"`)
	assert.Equal(t, byte('['), b[0])

	// a second repository over the same file sees the record
	n, err := NewFileEnrollmentsRepository(path).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileEnrollments_EmptyFileIsEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrolled.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	list, err := NewFileEnrollmentsRepository(path).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileEnrollments_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrolled.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewFileEnrollmentsRepository(path)

	_, err := repo.List(context.Background())
	assert.ErrorContains(t, err, "decode enrollments file")

	_, err = repo.InsertIfAbsent(context.Background(), enrollment("x", "X", "x@x.com", time.Now()))
	assert.Error(t, err)

	// the corrupt file is left untouched
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(b))
}

func TestFileEnrollments_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileEnrollmentsRepository(filepath.Join(t.TempDir(), "e.json")).Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
