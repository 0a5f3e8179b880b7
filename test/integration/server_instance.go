//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/blob"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/endpoints"
)

// portCounter is used to allocate unique ports for binary mode servers
var portCounter int32 = 19000

// ServerConfig holds the settings a scenario can change
type ServerConfig struct {
	ProgrammesEnabled          bool
	AllowUserProgrammeCreation bool
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ProgrammesEnabled: true,
	}
}

func (c ServerConfig) env() []string {
	return []string{
		config.EnvName("programmes_enabled") + "=" + strconv.FormatBool(c.ProgrammesEnabled),
		config.EnvName("allow_user_programme_creation") + "=" + strconv.FormatBool(c.AllowUserProgrammeCreation),
	}
}

// ServerInstance represents a running SEEK server for a single scenario
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Config        ServerConfig
	cancel        context.CancelFunc
	serverProcess *exec.Cmd // For binary mode
}

// StartServer starts a server against dbURL in the mode the suite was started in
func StartServer(tc *TestContext, dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(dbURL, tc.BlobDir, cfg)
	}
	return startBinaryServerInstance(tc.BinaryPath, dbURL, tc.BlobDir, cfg)
}

// startInlineServerInstance starts an in-process server
func startInlineServerInstance(dbURL, blobDir string, cfg ServerConfig) (*ServerInstance, error) {
	seekCfg := config.NewDefault()
	seekCfg.ProgrammesEnabled = cfg.ProgrammesEnabled
	seekCfg.AllowUserProgrammeCreation = cfg.AllowUserProgrammeCreation
	seekCfg.SearchEnabled = false

	s, err := endpoints.NewTestServer(dbURL, seekCfg)
	if err != nil {
		return nil, err
	}
	files, err := blob.NewFileStore(blobDir)
	if err != nil {
		return nil, err
	}
	s.Blobs = files

	// Port 0 picks a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	instance := &ServerInstance{
		Server:    s,
		ServerURL: "http://" + listener.Addr().String(),
		Config:    cfg,
	}

	go func() {
		if err := s.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "inline server stopped: %v\n", err)
		}
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// startBinaryServerInstance starts a server using the seekctl binary
func startBinaryServerInstance(binaryPath, dbURL, blobDir string, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))
	portStr := strconv.Itoa(port)

	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "--no-jobs", "-b", "127.0.0.1", "-p", portStr)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		config.EnvName("session_secret")+"="+endpoints.TestSessionSecret,
		config.EnvName("search_enabled")+"=false",
		config.EnvName("blob_driver")+"=file",
		config.EnvName("blob_path")+"="+blobDir,
	)
	cmd.Env = append(cmd.Env, cfg.env()...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Config:        cfg,
		cancel:        cancel,
		serverProcess: cmd,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
