package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/auth"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/config"
)

// clearEnv blanks the variables the commands read.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvServerPort,
		config.EnvLogLevel,
		config.EnvLogOutput,
		config.EnvCatalogCapacity,
		config.EnvAuthMode,
		config.EnvBasicAuthUsers,
		config.EnvAPIKeys,
		config.EnvTLSEnabled,
		config.EnvTLSClientAuth,
	} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-output", filepath.Join(t.TempDir(), "catalog.log")))

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_RunsConsole(t *testing.T) {
	// Arrange
	clearEnv(t)

	// Act
	out, err := execute(t, "7\n")

	// Assert
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Enter your choice (1-7): ") {
		t.Errorf("output missing menu prompt: %q", out)
	}
	if !strings.Contains(out, "Exiting Library Management System...") {
		t.Errorf("output missing exit message: %q", out)
	}
}

func TestRootCommand_EndOfInput(t *testing.T) {
	clearEnv(t)

	if _, err := execute(t, ""); err != nil {
		t.Errorf("Execute() error = %v, want nil on end of input", err)
	}
}

func TestRootCommand_InvalidCapacityFlag(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "7\n", "--capacity", "101")

	if err == nil {
		t.Fatal("Execute() expected error for capacity 101")
	}
	if !strings.Contains(err.Error(), config.ErrInvalidCatalogCapacity.Error()) {
		t.Errorf("error = %v, want capacity error", err)
	}
}

func TestRootCommand_InvalidEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvCatalogCapacity, "lots")

	if _, err := execute(t, "7\n"); err == nil {
		t.Error("Execute() expected error for unparsable capacity")
	}
}

func TestVersionCommand(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "", "version")

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out, "catalog v") {
		t.Errorf("output = %q, want catalog v...", out)
	}
}

func TestServeCommand_InvalidPort(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "", "serve", "--port", "70000")

	if err == nil {
		t.Fatal("Execute() expected error for port 70000")
	}
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level defaults to info", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			logger, err := initLogger(tt.level, "stderr")

			// Assert
			if err != nil {
				t.Fatalf("initLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatal("initLogger() returned nil")
			}
		})
	}
}

func TestInitLogger_FileOutput(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "catalog.log")

	// Act
	logger, err := initLogger("info", path)
	if err != nil {
		t.Fatalf("initLogger() error = %v", err)
	}
	logger.Info("book added", zap.String("book_id", "B1"))
	_ = logger.Sync()

	// Assert
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"book_id":"B1"`) {
		t.Errorf("log file = %q, want book_id field", data)
	}
}

func TestCreateAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("shelves"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	users := "librarian:" + string(hash)

	tests := []struct {
		name       string
		cfg        config.Config
		wantNil    bool
		wantScheme auth.Scheme
		wantErr    bool
	}{
		{name: "none", cfg: config.Config{AuthMode: "none"}, wantNil: true},
		{name: "empty", cfg: config.Config{}, wantNil: true},
		{name: "mtls", cfg: config.Config{AuthMode: "mtls"}, wantScheme: auth.SchemeMTLS},
		{name: "basic", cfg: config.Config{AuthMode: "basic", BasicAuthUsers: users}, wantScheme: auth.SchemeBasic},
		{name: "apikey", cfg: config.Config{AuthMode: "apikey", APIKeys: "k1:desk"}, wantScheme: auth.SchemeAPIKey},
		{name: "multi", cfg: config.Config{AuthMode: "multi", APIKeys: "k1:desk", BasicAuthUsers: users}, wantScheme: auth.SchemeMulti},
		{name: "multi with tls", cfg: config.Config{AuthMode: "multi", TLSEnabled: true, TLSClientAuth: "require"}, wantScheme: auth.SchemeMulti},
		{name: "multi without schemes", cfg: config.Config{AuthMode: "multi"}, wantErr: true},
		{name: "multi with bad keys", cfg: config.Config{AuthMode: "multi", APIKeys: "nokey"}, wantErr: true},
		{name: "basic with bad users", cfg: config.Config{AuthMode: "basic", BasicAuthUsers: ":"}, wantErr: true},
		{name: "unknown", cfg: config.Config{AuthMode: "oidc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			a, err := createAuthenticator(&tt.cfg, zap.NewNop())

			// Assert
			if tt.wantErr {
				if err == nil {
					t.Error("createAuthenticator() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("createAuthenticator() error = %v", err)
			}
			if tt.wantNil {
				if a != nil {
					t.Errorf("createAuthenticator() = %v, want nil", a)
				}
				return
			}
			if a.Scheme() != tt.wantScheme {
				t.Errorf("Scheme() = %s, want %s", a.Scheme(), tt.wantScheme)
			}
		})
	}
}
