package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/ringlight/game/engine"
)

func createValidConfig(name string) *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        name,
		Description: "Test level",
		Elements: [][]engine.Element{
			{{Type: engine.Wall, Position: 4}},
			{{Type: engine.Line, Position: 1}},
			{{Type: engine.Line, Position: 9}, {Type: engine.Wall, Position: 0}},
		},
		Goals: []int{3, 7},
		Messages: engine.LevelMessages{
			Welcome: "Welcome!",
			Victory: "All %d lit!",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.LevelConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	require.NoError(t, err)

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0o644))
}

func writeRaw(t *testing.T, dir, filename, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(body), 0o644))
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "classic", createValidConfig("Classic"))

		manager, err := NewManager(dir, "classic")
		require.NoError(t, err)
		assert.Equal(t, "Classic", manager.GetDefault().Name)
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path", "classic")
		assert.Error(t, err)
	})

	t.Run("empty directory falls back to built-in level", func(t *testing.T) {
		manager, err := NewManager(t.TempDir(), "classic")
		require.NoError(t, err)
		require.NotNil(t, manager.GetDefault())
		assert.Equal(t, engine.DefaultLevelConfig().Name, manager.GetDefault().Name)
	})

	t.Run("missing default uses first valid level", func(t *testing.T) {
		dir := t.TempDir()
		writeRaw(t, dir, "aaa.json", "{broken")
		writeConfigFile(t, dir, "beta", createValidConfig("Beta"))
		writeConfigFile(t, dir, "gamma", createValidConfig("Gamma"))

		manager, err := NewManager(dir, "classic")
		require.NoError(t, err)
		assert.Equal(t, "Beta", manager.GetDefault().Name)
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "test", createValidConfig("Test"))
	writeConfigFile(t, dir, "nogoals", &engine.LevelConfig{
		Name:        "No goals",
		Description: "missing goals",
		Elements:    [][]engine.Element{{}, {}, {{Type: engine.Line, Position: 0}}},
	})
	writeRaw(t, dir, "malformed.json", `{"name": "x",`)

	manager, err := NewManager(dir, "test")
	require.NoError(t, err)

	t.Run("load existing level", func(t *testing.T) {
		config, err := manager.LoadConfig("test")
		require.NoError(t, err)
		assert.Equal(t, "Test", config.Name)
		assert.Equal(t, []int{3, 7}, config.Goals)
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("test.json")
		require.NoError(t, err)
		assert.Equal(t, "Test", config.Name)
	})

	t.Run("load from cache", func(t *testing.T) {
		first, err := manager.LoadConfig("test")
		require.NoError(t, err)
		second, err := manager.LoadConfig("test")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("load non-existent level", func(t *testing.T) {
		_, err := manager.LoadConfig("nonexistent")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("reject path traversal", func(t *testing.T) {
		_, err := manager.LoadConfig("../test")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("load invalid level", func(t *testing.T) {
		_, err := manager.LoadConfig("nogoals")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		_, err := manager.LoadConfig("malformed")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "zeta", createValidConfig("Zeta"))
	writeConfigFile(t, dir, "alpha", createValidConfig("Alpha"))
	writeRaw(t, dir, "broken.json", "not json")
	writeRaw(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	manager, err := NewManager(dir, "alpha")
	require.NoError(t, err)

	configs, err := manager.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, "alpha.json", configs[0].Filename)
	assert.Equal(t, "alpha", configs[0].ConfigID)
	assert.Equal(t, "Alpha", configs[0].Name)
	assert.Equal(t, 2, configs[0].Lines)
	assert.Equal(t, 2, configs[0].Walls)
	assert.Equal(t, 2, configs[0].Goals)
	assert.Equal(t, "zeta", configs[1].ConfigID)
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "one", createValidConfig("One"))
	writeConfigFile(t, dir, "two", createValidConfig("Two"))

	manager, err := NewManager(dir, "one")
	require.NoError(t, err)
	assert.Equal(t, "One", manager.GetDefault().Name)

	require.NoError(t, manager.SetDefault("two"))
	assert.Equal(t, "Two", manager.GetDefault().Name)

	assert.ErrorIs(t, manager.SetDefault("three"), ErrConfigNotFound)
	assert.Equal(t, "Two", manager.GetDefault().Name)
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "test", createValidConfig("Original"))

	manager, err := NewManager(dir, "test")
	require.NoError(t, err)

	config, err := manager.LoadConfig("test")
	require.NoError(t, err)
	assert.Equal(t, "Original", config.Name)

	writeConfigFile(t, dir, "test", createValidConfig("Updated"))

	// Cached until refreshed
	config, err = manager.LoadConfig("test")
	require.NoError(t, err)
	assert.Equal(t, "Original", config.Name)

	require.NoError(t, manager.RefreshCache())

	config, err = manager.LoadConfig("test")
	require.NoError(t, err)
	assert.Equal(t, "Updated", config.Name)
	assert.Equal(t, "Updated", manager.GetDefault().Name)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		writeConfigFile(t, dir, name, createValidConfig(name))
	}

	manager, err := NewManager(dir, "a")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 60)
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := manager.LoadConfig("b")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := manager.ListConfigs()
			errs <- err
		}()
		go func() {
			defer wg.Done()
			errs <- manager.RefreshCache()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestManager_RefreshCacheDuringSetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "one", createValidConfig("One"))
	writeConfigFile(t, dir, "two", createValidConfig("Two"))

	manager, err := NewManager(dir, "one")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.RefreshCache())
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.SetDefault("two"))
		}()
	}
	wg.Wait()

	assert.Equal(t, "Two", manager.GetDefault().Name)
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"HOST", "PORT", "LEVELS_DIR", "DEFAULT_LEVEL", "SESSION_TTL", "SESSION_CLEANUP_INTERVAL"} {
			t.Setenv(key, "")
		}
		t.Setenv("NGROK_ENABLED", "false")

		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, "localhost", s.Host)
		assert.Equal(t, 8080, s.Port)
		assert.Equal(t, "levels", s.LevelsDir)
		assert.Equal(t, "classic", s.DefaultLevel)
		assert.Equal(t, 24*time.Hour, s.SessionTTL)
		assert.Equal(t, time.Hour, s.SessionCleanupInterval)
		assert.False(t, s.NgrokEnabled)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("LEVELS_DIR", "/srv/levels")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("NGROK_ENABLED", "true")
		t.Setenv("NGROK_DOMAIN", "puzzle.example.com")

		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, 9090, s.Port)
		assert.Equal(t, "/srv/levels", s.LevelsDir)
		assert.Equal(t, 30*time.Minute, s.SessionTTL)
		assert.True(t, s.NgrokEnabled)
		assert.Equal(t, "puzzle.example.com", s.NgrokDomain)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")
		_, err := LoadSettings()
		assert.Error(t, err)
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		_, err := LoadSettings()
		assert.Error(t, err)
	})
}
