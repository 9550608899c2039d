package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wricardo/ringlight/api"
	"github.com/wricardo/ringlight/game/config"
	"github.com/wricardo/ringlight/transport/mcp"
)

func testSettings() config.Settings {
	return config.Settings{
		Host:                   "localhost",
		Port:                   8080,
		LevelsDir:              "levels",
		DefaultLevel:           "classic",
		SessionTTL:             time.Hour,
		SessionCleanupInterval: time.Minute,
	}
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Ringlight Server", AppName)
}

func TestInitializeServices(t *testing.T) {
	svc, sessions, err := initializeServices(testSettings(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, svc)
	require.NotNil(t, sessions)

	info, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "classic", info.ConfigName)
	assert.Equal(t, 1, sessions.Count())
}

func TestInitializeServices_InvalidLevelsDir(t *testing.T) {
	settings := testSettings()
	settings.LevelsDir = "/non/existent/path"

	_, _, err := initializeServices(settings, zap.NewNop())
	assert.Error(t, err)
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand(testSettings(), nil)

	assert.Equal(t, "ringlight", cmd.Name)
	assert.Equal(t, Version, cmd.Version)

	names := map[string][]string{}
	for _, sub := range cmd.Commands {
		names[sub.Name] = sub.Aliases
	}
	assert.Equal(t, []string{"http"}, names["server"])
	assert.ElementsMatch(t, []string{"mcp-stdio", "mcp"}, names["stdio-mcp"])
}

func TestRootCommand_UnknownMode(t *testing.T) {
	cmd := newRootCommand(testSettings(), nil)
	cmd.Writer = &bytes.Buffer{}
	cmd.ErrWriter = &bytes.Buffer{}

	err := cmd.Run(context.Background(), []string{"ringlight", "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestSessionCleanupRoutine(t *testing.T) {
	svc, sessions, err := initializeServices(testSettings(), zap.NewNop())
	require.NoError(t, err)

	info, err := svc.CreateSession(context.Background(), "easy")
	require.NoError(t, err)
	stale, err := sessions.Get(info.ID)
	require.NoError(t, err)
	stale.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, sessions, 10*time.Millisecond, time.Hour, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return sessions.Count() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestMainHandler_MCPEndpoint(t *testing.T) {
	svc, _, err := initializeServices(testSettings(), zap.NewNop())
	require.NoError(t, err)

	apiTS := httptest.NewServer(api.NewServer(svc, nil, zap.NewNop()))
	defer apiTS.Close()

	handler := newMainHandler(api.NewServer(svc, nil, zap.NewNop()), mcp.NewClient(apiTS.URL, zap.NewNop()))

	t.Run("rejects GET", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("lists tools", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body)))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Result struct {
				Tools []struct {
					Name string `json:"name"`
				} `json:"tools"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		var names []string
		for _, tool := range resp.Result.Tools {
			names = append(names, tool.Name)
		}
		for _, want := range []string{"create_session", "move", "bulk_move", "describe_slot", "game_instructions"} {
			assert.Contains(t, names, want)
		}
	})

	t.Run("api routes are mounted", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestExternalAPIAvailable(t *testing.T) {
	svc, _, err := initializeServices(testSettings(), zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(api.NewServer(svc, nil, zap.NewNop()))
	defer ts.Close()

	assert.True(t, externalAPIAvailable(ts.URL))
	assert.False(t, externalAPIAvailable("http://127.0.0.1:1"))
}

func TestStartInternalAPI(t *testing.T) {
	svc, _, err := initializeServices(testSettings(), zap.NewNop())
	require.NoError(t, err)

	baseURL, httpServer, err := startInternalAPI(svc, zap.NewNop())
	require.NoError(t, err)
	defer httpServer.Close()

	assert.Eventually(t, func() bool { return externalAPIAvailable(baseURL) }, time.Second, 20*time.Millisecond)
}
