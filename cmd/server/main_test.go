package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/reversi-server/internal/auth"
)

func TestAdminTokenCommand(t *testing.T) {
	t.Setenv("REVERSI_ADMIN_SECRET", "cli-secret")
	t.Setenv("REVERSI_ADMIN_ISSUER", "cli-test")
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"admin-token", "--config", configPath, "--log-level", "error", "--ttl", "10m"})
	require.NoError(t, cmd.Execute())

	token := strings.TrimSpace(out.String())
	claims, err := auth.ValidateAdminToken(&auth.JWTConfig{Secret: []byte("cli-secret"), Issuer: "cli-test"}, token)
	require.NoError(t, err)
	assert.Equal(t, auth.AdminSubject, claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestAdminTokenCommandNeedsSecret(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"admin-token", "--config", configPath, "--log-level", "error"})
	assert.Error(t, cmd.Execute())
}
