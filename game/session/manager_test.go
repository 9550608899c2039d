package session

import (
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wricardo/ringlight/game/engine"
)

func createTestConfig() *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        "Test Level",
		Description: "Test level",
		Elements: [][]engine.Element{
			{},
			{{Type: engine.Wall, Position: 0}},
			{{Type: engine.Line, Position: 0}},
		},
		Goals: []int{6},
	}
}

func newTestManager() *Manager {
	return NewManager(zap.NewNop())
}

func TestManager_Create(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("custom-id", config)
		require.NoError(t, err)
		assert.Equal(t, "custom-id", session.ID)
		assert.NotNil(t, session.Engine)
		assert.Same(t, config, session.Config)
		assert.False(t, session.CreatedAt.IsZero())
		assert.Equal(t, session.CreatedAt, session.LastAccessedAt)
	})

	t.Run("create with generated ID", func(t *testing.T) {
		session, err := manager.Create("", config)
		require.NoError(t, err)
		assert.Len(t, session.ID, sessionIDLength)
	})

	t.Run("duplicate ID", func(t *testing.T) {
		_, err := manager.Create("custom-id", config)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("duplicate ID in different case", func(t *testing.T) {
		_, err := manager.Create("CUSTOM-ID", config)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("has space", config)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := manager.Create("bad-level", &engine.LevelConfig{Name: "bad"})
		assert.Error(t, err)
		_, err = manager.Get("bad-level")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestManager_Get(t *testing.T) {
	manager := newTestManager()
	created, err := manager.Create("Get-Test", createTestConfig())
	require.NoError(t, err)

	for _, id := range []string{"Get-Test", "get-test", "GET-TEST"} {
		got, err := manager.Get(id)
		require.NoError(t, err, id)
		assert.Same(t, created, got)
	}

	_, err = manager.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("goc", config)
	require.NoError(t, err)
	second, err := manager.GetOrCreate("goc", config)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, manager.Count())
}

func TestManager_Delete(t *testing.T) {
	manager := newTestManager()
	_, err := manager.Create("del", createTestConfig())
	require.NoError(t, err)

	require.NoError(t, manager.Delete("DEL"))
	assert.Equal(t, 0, manager.Count())
	assert.ErrorIs(t, manager.Delete("del"), ErrSessionNotFound)
}

func TestManager_List(t *testing.T) {
	manager := newTestManager()
	assert.Empty(t, manager.List())

	for i := 0; i < 3; i++ {
		_, err := manager.Create(fmt.Sprintf("list-%d", i), createTestConfig())
		require.NoError(t, err)
	}

	ids := make([]string, 0, 3)
	for _, s := range manager.List() {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"list-0", "list-1", "list-2"}, ids)
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	stale, err := manager.Create("stale", config)
	require.NoError(t, err)
	_, err = manager.Create("fresh", config)
	require.NoError(t, err)

	stale.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	assert.Equal(t, 1, removed)

	_, err = manager.Get("stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get("fresh")
	assert.NoError(t, err)
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := newTestManager()
	session, err := manager.Create("touch", createTestConfig())
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	session.LastAccessedAt = past

	require.NoError(t, manager.UpdateLastAccessed("TOUCH"))
	assert.True(t, session.LastAccessedAt.After(past))

	assert.ErrorIs(t, manager.UpdateLastAccessed("missing"), ErrSessionNotFound)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := manager.Create("", config)
			if err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(s.ID); err != nil {
				errs <- err
			}
			manager.List()
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	assert.Equal(t, 100, manager.Count())
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	session1, err := manager.Create("iso-1", config)
	require.NoError(t, err)
	session2, err := manager.Create("iso-2", config)
	require.NoError(t, err)

	session1.Engine.Move("down")
	session1.Engine.Move("right")

	assert.True(t, session1.Engine.IsVictory())
	assert.False(t, session2.Engine.IsVictory())
	assert.Equal(t, []int{0, 0, 0}, session2.Engine.GetState().Offsets)
	assert.Equal(t, engine.OuterRing, session2.Engine.GetActiveRing())
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()
	hexID := regexp.MustCompile(`^[0-9a-f]{8}$`)

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config)
		require.NoError(t, err)

		assert.False(t, generatedIDs[session.ID], "duplicate session ID %s", session.ID)
		generatedIDs[session.ID] = true
		assert.Regexp(t, hexID, session.ID)
	}
}
