package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepform/pkg/domain"
)

// RunSessionStoreContract verifies that a SessionStore implementation adheres
// to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		data := domain.NewSessionData(sessionID)
		data.Values["user"] = "ada"
		data.Values["count"] = 42
		data.Values["signup"] = domain.WizardData{1: {"email": "ada@example.com"}}

		require.NoError(t, store.Save(ctx, data), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		assert.Equal(t, "ada", loaded.Values["user"])
		// Serializing stores turn numbers into float64; only presence is guaranteed.
		assert.NotNil(t, loaded.Values["count"])
		assert.NotNil(t, loaded.Values["signup"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		data := domain.NewSessionData(sessionID)
		data.Values["user"] = "grace"
		require.NoError(t, store.Save(ctx, data))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "grace", loaded.Values["user"])
		assert.NotContains(t, loaded.Values, "count")
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Values["user"] = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "grace", again.Values["user"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSessionData(sessionID)))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewSessionData(id1)))
		require.NoError(t, store.Save(ctx, domain.NewSessionData(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
