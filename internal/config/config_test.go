package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentnotice-cloud/internal/notice/layout"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "PG_DSN", "AUTH_JWT_SECRET", "JWT_SECRET", "HTTP_ADDR", "NOTICE_CONFIG",
		"NOTICE_TITLE", "EMAIL_RELAY_URL", "EMAIL_DISPATCH_INTERVAL", "EMAIL_RELAY_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/rent")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, time.Minute, cfg.DispatchInterval)
	assert.Equal(t, layout.LetterConfig(), cfg.Notice.Layout)
	assert.Empty(t, cfg.EmailRelayURL)
}

func TestFromEnv_RequiresDatabaseAndSecret(t *testing.T) {
	clearEnv(t)
	_, err := FromEnv()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("PG_DSN", "postgres://localhost/rent")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")
}

func TestFromEnv_DurationsAcceptSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/rent")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("EMAIL_DISPATCH_INTERVAL", "15")
	t.Setenv("EMAIL_RELAY_TIMEOUT", "2s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.DispatchInterval)
	assert.Equal(t, 2*time.Second, cfg.EmailRelayTimeout)
}

func TestLoadNoticeConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: "  Past Due Notice "
layout:
  margin: 54
  font_size: 12
defaults:
  payment_instructions: "Pay via the tenant portal."
`), 0o600))

	cfg, err := LoadNoticeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Past Due Notice", cfg.Title)
	assert.Equal(t, 612.0, cfg.Layout.PageWidth)
	assert.Equal(t, 54.0, cfg.Layout.Margin)
	assert.Equal(t, 12.0, cfg.Layout.FontSize)
	assert.Equal(t, "Pay via the tenant portal.", cfg.Defaults.PaymentInstructions)

	opts := cfg.DocumentOptions()
	assert.Equal(t, "Past Due Notice", opts.Title)
	assert.Equal(t, cfg.Layout, opts.Layout)
}

func TestLoadNoticeConfig_RejectsBadGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  page_width: 100\n  margin: 60\n"), 0o600))
	_, err := LoadNoticeConfig(path)
	assert.ErrorIs(t, err, layout.ErrContentTooNarrow)

	_, err = LoadNoticeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromEnv_NoticeFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "notice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Final Notice\n"), 0o600))
	t.Setenv("DATABASE_URL", "postgres://localhost/rent")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("NOTICE_CONFIG", path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "Final Notice", cfg.Notice.Title)
}
