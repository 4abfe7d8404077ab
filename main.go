package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	webview "github.com/webview/webview_go"
	"go.uber.org/zap"

	"github.com/kartoza/wine-quality/internal/config"
	"github.com/kartoza/wine-quality/internal/logging"
	"github.com/kartoza/wine-quality/internal/server"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "winequality",
		Usage:   "Predict red wine quality from alcohol and volatile acidity",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"WINEQUALITY_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				EnvVars: []string{"WINEQUALITY_PORT"},
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Prediction endpoint URL",
				EnvVars: []string{"WINEQUALITY_ENDPOINT"},
			},
			&cli.BoolFlag{
				Name:    "headless",
				Usage:   "Run in headless mode (no GUI window)",
				EnvVars: []string{"WINEQUALITY_HEADLESS"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"WINEQUALITY_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Write JSON logs to this file with rotation instead of stderr",
				EnvVars: []string{"WINEQUALITY_LOG_FILE"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration: defaults, then the YAML file, then any
// flag or environment variable that was set explicitly
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("endpoint") {
		cfg.Endpoint = c.String("endpoint")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	cfg.Version = version

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Find an available port (try up to 10 ports starting from the requested one)
	availablePort, err := findAvailablePort(cfg.Port, 10)
	if err != nil {
		return fmt.Errorf("failed to find available port: %w", err)
	}
	if availablePort != cfg.Port {
		logger.Info("port in use, using another", zap.Int("requested", cfg.Port), zap.Int("port", availablePort))
	}
	cfg.Port = availablePort

	logger.Info("wine quality predictor starting",
		zap.String("version", cfg.Version),
		zap.Int("port", cfg.Port),
		zap.String("endpoint", cfg.Endpoint))

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for server to be ready
	serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(logger, serverURL, 10*time.Second)

	if cfg.Headless {
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case sig := <-stop:
			logger.Info("shutting down", zap.Stringer("signal", sig))
		}
		return srv.Stop()
	}

	// GUI mode: open embedded WebView window
	logger.Info("opening application window")
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Wine Quality Prediction")
	w.SetSize(900, 1000, webview.HintNone)
	w.Navigate(serverURL)

	// Close the window on a server error or a signal
	done := make(chan struct{})
	watched := superviseWindow(logger, w, errCh, stop, done)

	// Run blocks until the window is closed
	w.Run()
	close(done)
	serverErr := <-watched

	logger.Info("window closed, shutting down server")
	if err := srv.Stop(); err != nil {
		return err
	}
	if serverErr != nil {
		return fmt.Errorf("server error: %w", serverErr)
	}
	return nil
}

// terminator is the part of the webview used to close it from another goroutine
type terminator interface {
	Terminate()
}

// superviseWindow terminates w when the server exits or a signal arrives,
// unless done is closed first. The returned channel yields the server error,
// if any, and is closed once the watcher has finished touching w.
func superviseWindow(logger *zap.Logger, w terminator, errCh <-chan error, stop <-chan os.Signal, done <-chan struct{}) <-chan error {
	result := make(chan error, 1)
	go func() {
		defer close(result)
		select {
		case <-done:
		case err := <-errCh:
			if err != nil {
				logger.Error("server error", zap.Error(err))
				result <- err
			}
			w.Terminate()
		case sig := <-stop:
			logger.Info("shutting down", zap.Stringer("signal", sig))
			w.Terminate()
		}
	}()
	return result
}

// waitForServer polls until the server is accepting connections
func waitForServer(logger *zap.Logger, url string, timeout time.Duration) {
	addr := url[len("http://"):]
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	logger.Warn("server may not be ready", zap.String("url", url))
}

// findAvailablePort finds an available port, starting from the given port.
// If the port is in use, it tries subsequent ports up to maxAttempts times.
func findAvailablePort(startPort int, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		addr := fmt.Sprintf(":%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found after %d attempts starting from %d", maxAttempts, startPort)
}
