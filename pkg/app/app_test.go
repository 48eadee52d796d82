package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"possim/pkg/catalog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "possim.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, "3.5", cfg.Terminal.Screen)
	assert.Equal(t, catalog.DatasetCoffee, cfg.Terminal.Dataset)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
grpc_port = 50210

[terminal]
screen = "8"
dataset = "restaurant"
business_name = "Harbour Cafe"

[log]
level = "debug"
development = true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, 50210, cfg.Server.GRPCPort)
	assert.Equal(t, "8", cfg.Terminal.Screen)
	assert.Equal(t, "dark", cfg.Terminal.Theme)
	assert.Equal(t, "restaurant", cfg.Terminal.Dataset)
	assert.Equal(t, "Harbour Cafe", cfg.Terminal.BusinessName)
	assert.Equal(t, "$", cfg.Terminal.Currency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "[server\nport = 1"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"port":         func(c *Config) { c.Server.Port = 70000 },
		"grpc port":    func(c *Config) { c.Server.GRPCPort = -1 },
		"screen":       func(c *Config) { c.Terminal.Screen = "5" },
		"theme":        func(c *Config) { c.Terminal.Theme = "neon" },
		"dataset":      func(c *Config) { c.Terminal.Dataset = "pharmacy" },
		"journal size": func(c *Config) { c.Terminal.JournalSize = -3 },
		"log level":    func(c *Config) { c.Log.Level = "loud" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// parse runs the CLI with args and returns the resolved configuration
// without starting any server.
func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	var (
		cfg Config
		err error
	)
	cmd := newCommand(io.Discard)
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		cfg, err = configFromCommand(c)
		return nil
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"possim"}, args...)))
	return cfg, err
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9000
[terminal]
theme = "light"
`)
	cfg, err := parse(t, "--config", path, "--port", "9100", "--screen", "8", "--dataset", "retail", "--dev")
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "8", cfg.Terminal.Screen)
	assert.Equal(t, "light", cfg.Terminal.Theme)
	assert.Equal(t, "retail", cfg.Terminal.Dataset)
	assert.True(t, cfg.Log.Development)
}

func TestPortFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9200")
	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestInvalidFlagIsRejected(t *testing.T) {
	_, err := parse(t, "--theme", "neon")
	assert.ErrorContains(t, err, "terminal.theme")
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = newLogger(LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(LogConfig{Level: "chatty"})
	assert.Error(t, err)
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return lis
}

func TestServeHTTPAndHealth(t *testing.T) {
	a, err := New(DefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	httpLis, grpcLis := listen(t), listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, httpLis, grpcLis) }()

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	health := grpc_health_v1.NewHealthClient(conn)

	require.Eventually(t, func() bool {
		resp, err := health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: HealthService})
		return err == nil && resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get("http://" + httpLis.Addr().String() + "/api/session")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	status, err := a.Health().Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status.GetStatus())
}

func TestNewRejectsUnknownDataset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Terminal.Dataset = "pharmacy"
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, catalog.ErrUnknownDataset)
}

func TestGenerateCertificate(t *testing.T) {
	cert, err := generateCertificate("pos.example.com")
	require.NoError(t, err)
	require.NotNil(t, cert.Leaf)
	assert.Equal(t, []string{"pos.example.com"}, cert.Leaf.DNSNames)
	assert.True(t, cert.Leaf.NotAfter.After(time.Now().Add(80*24*time.Hour)))
	assert.NoError(t, cert.Leaf.VerifyHostname("pos.example.com"))
}

func TestRedirectHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	redirectHandler("pos.example.com").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session?x=1", nil))
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "https://pos.example.com/api/session?x=1", rec.Header().Get("Location"))
}
