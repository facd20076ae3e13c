package session

import (
	"testing"
	"time"

	"notesync-core/internal/entity"
	"notesync-core/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInsertIsIdempotent(t *testing.T) {
	db := newTestDB()
	r := NewRegistry(db, logger.NewNopLogger(), 25*time.Millisecond)

	first := r.Insert(entity.Session{Id: "s1", Title: "Original"})
	require.NotNil(t, first)

	// Mutate between the two inserts; the second insert must neither
	// reset the store nor resurrect the stale payload.
	first.UpdateTitle("Edited")

	second := r.Insert(entity.Session{Id: "s1", Title: "Stale read"})
	assert.Same(t, first, second)
	assert.Equal(t, "Edited", second.Snapshot().Session.Title)
}

func TestRegistryRemoveDeletesMapping(t *testing.T) {
	db := newTestDB()
	r := NewRegistry(db, logger.NewNopLogger(), 25*time.Millisecond)

	first := r.Insert(entity.Session{Id: "s1"})
	r.Remove("s1")
	assert.Nil(t, r.Get("s1"))

	// A later insert builds a fresh store.
	second := r.Insert(entity.Session{Id: "s1"})
	assert.NotSame(t, first, second)
}
