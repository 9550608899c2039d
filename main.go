// Command ringlight starts the Ringlight puzzle server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (and an optional .env file); flags
// override them. ngrok tunneling is available for external access during
// development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/ringlight/api"
	"github.com/wricardo/ringlight/game/config"
	"github.com/wricardo/ringlight/game/service"
	"github.com/wricardo/ringlight/game/session"
	"github.com/wricardo/ringlight/transport/mcp"
	"github.com/wricardo/ringlight/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Ringlight Server"
)

func main() {
	// A missing .env file is fine
	envErr := godotenv.Load()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(settings, envErr).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newRootCommand builds the CLI. Flag defaults come from settings.
func newRootCommand(settings config.Settings, envErr error) *cli.Command {
	return &cli.Command{
		Name:    "ringlight",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: settings.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: settings.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "levels-dir", Aliases: []string{"config-dir"}, Value: settings.LevelsDir, Usage: "Directory containing level files"},
			&cli.StringFlag{Name: "default-level", Value: settings.DefaultLevel, Usage: "Level used when a session names none"},
			&cli.BoolFlag{Name: "debug", Value: settings.Debug, Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Value: settings.NgrokEnabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: settings.NgrokAuthToken, Usage: "Ngrok auth token"},
			&cli.StringFlag{Name: "ngrok-domain", Value: settings.NgrokDomain, Usage: "Custom ngrok domain"},
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, settings, envErr, runHTTPServer)
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, settings, envErr, runStdioMCP)
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 0 {
				return fmt.Errorf("unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", cmd.Args().First())
			}
			return run(ctx, cmd, settings, envErr, runHTTPServer)
		},
	}
}

type runFunc func(ctx context.Context, opts options, svc service.GameService, logger *zap.Logger) error

// options are the effective settings after flags are applied
type options struct {
	settings config.Settings
	addr     string
}

func run(ctx context.Context, cmd *cli.Command, settings config.Settings, envErr error, fn runFunc) error {
	settings.Host = cmd.String("host")
	settings.Port = int(cmd.Int("port"))
	settings.LevelsDir = cmd.String("levels-dir")
	settings.DefaultLevel = cmd.String("default-level")
	settings.Debug = cmd.Bool("debug")
	settings.NgrokEnabled = cmd.Bool("ngrok")
	settings.NgrokAuthToken = cmd.String("ngrok-auth")
	settings.NgrokDomain = cmd.String("ngrok-domain")

	logger, err := newLogger(settings.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if envErr == nil {
		logger.Info("loaded environment variables from .env file")
	} else if !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("error loading .env file", zap.Error(envErr))
	}

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("mode", cmd.Name),
	)

	svc, sessions, err := initializeServices(settings, logger)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}

	go sessionCleanupRoutine(ctx, sessions, settings.SessionCleanupInterval, settings.SessionTTL, logger)

	return fn(ctx, options{settings: settings, addr: fmt.Sprintf("%s:%d", settings.Host, settings.Port)}, svc, logger)
}

// newLogger returns a development logger in debug mode and a production logger
// otherwise. Both write to stderr, which keeps stdout free for MCP stdio.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// initializeServices wires the level and session managers into the game service
func initializeServices(settings config.Settings, logger *zap.Logger) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(settings.LevelsDir, settings.DefaultLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create level manager: %w", err)
	}

	sessionManager := session.NewManager(logger)
	gameService := service.NewGameService(sessionManager, configManager, logger)

	return gameService, sessionManager, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl. It returns when ctx is done.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// newMCPHandler serves JSON-RPC MCP messages posted to /mcp
func newMCPHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if response == nil {
			// Notifications get no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newMainHandler combines the API server and the /mcp endpoint
func newMainHandler(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcpClient))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// When ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, opts options, gameService service.GameService, logger *zap.Logger) error {
	hub := websocket.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	apiServer := api.NewServer(gameService, hub, logger)
	mcpClient := mcp.NewClient("http://"+opts.addr, logger)
	mainHandler := newMainHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         opts.addr,
		Handler:      mainHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", opts.addr),
			zap.String("api", fmt.Sprintf("http://%s/api", opts.addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", opts.addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", opts.addr)),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if opts.settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts.settings, mainHandler, logger)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(shutdownErr))
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, settings config.Settings, handler http.Handler, logger *zap.Logger) {
	authToken := settings.NgrokAuthToken
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if settings.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.NgrokDomain))
		logger.Info("using custom ngrok domain", zap.String("domain", settings.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("websocket", ngrokURL+"/ws?session=<session_id>"),
		zap.String("mcp", ngrokURL+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a Ringlight API answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port and returns its base URL
func startInternalAPI(gameService service.GameService, logger *zap.Logger) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{Handler: api.NewServer(gameService, nil, logger)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", zap.Error(err))
		}
	}()

	return "http://" + listener.Addr().String(), httpServer, nil
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// the configured address; otherwise it starts an internal API on a random
// loopback port.
func runStdioMCP(ctx context.Context, opts options, gameService service.GameService, logger *zap.Logger) error {
	baseURL := "http://" + opts.addr
	logger.Info("checking for external API server", zap.String("url", baseURL))

	if externalAPIAvailable(baseURL) {
		logger.Info("external API server found, using it for MCP", zap.String("url", baseURL))
	} else {
		internalURL, httpServer, err := startInternalAPI(gameService, logger)
		if err != nil {
			return err
		}
		defer httpServer.Close()
		baseURL = internalURL
		logger.Info("started internal HTTP server for MCP stdio", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL, logger)
	logger.Info("MCP stdio server ready")

	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
