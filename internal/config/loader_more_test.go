package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vllmsup/internal/supervisor"
)

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "command: python3\n: broken\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected YAML unmarshal error")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.json", `{ "command": "python3", "host": }`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected JSON unmarshal error")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	env := map[string]string{
		"VLLMSUP_COMMAND":          "/venv/bin/python",
		"VLLMSUP_EXTRA_ARGS":       "--dtype, half ,",
		"VLLMSUP_HEALTH_TIMEOUT":   "45s",
		"VLLMSUP_RECLAIM_DISABLED": "yes",
		"VLLMSUP_LOG_LEVEL":        "debug",
	}
	cfg := FromEnv(Config{Command: "python3", Host: "localhost"}, func(k string) string { return env[k] })
	assert.Equal(t, "/venv/bin/python", cfg.Command)
	assert.Equal(t, []string{"--dtype", "half"}, cfg.ExtraArgs)
	assert.Equal(t, "45s", cfg.HealthTimeout)
	assert.Equal(t, "localhost", cfg.Host, "unset variables keep file values")
	assert.True(t, cfg.ReclaimDisabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvCORSLists(t *testing.T) {
	env := map[string]string{
		"VLLMSUP_CORS_ORIGINS": "http://localhost:5173",
		"VLLMSUP_CORS_METHODS": "GET,HEAD",
		"VLLMSUP_CORS_HEADERS": "Authorization, X-Trace",
	}
	cfg := FromEnv(Config{}, func(k string) string { return env[k] })
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"GET", "HEAD"}, cfg.CORSMethods)
	assert.Equal(t, []string{"Authorization", "X-Trace"}, cfg.CORSHeaders)
}

func TestApplyDefaultsAndValidate(t *testing.T) {
	cfg := Config{}.ApplyDefaults()
	assert.Equal(t, DefaultStatusAddr, cfg.StatusAddr)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	require.NoError(t, cfg.Validate())

	assert.Error(t, Config{LogFormat: "xml"}.Validate())
	assert.Error(t, Config{PollInterval: "fast"}.Validate())
}

func TestReclaimerSelection(t *testing.T) {
	assert.IsType(t, supervisor.NoopReclaimer{}, Config{ReclaimDisabled: true}.Reclaimer())

	custom, ok := Config{ReclaimCommand: "/opt/bin/free-vram", ReclaimArgs: []string{"-a"}}.Reclaimer().(*supervisor.ExecReclaimer)
	require.True(t, ok)
	assert.Equal(t, "/opt/bin/free-vram", custom.Command)
	assert.Equal(t, []string{"-a"}, custom.Args)

	torch, ok := Config{Command: "/venv/bin/python3.11"}.Reclaimer().(*supervisor.ExecReclaimer)
	require.True(t, ok)
	assert.Equal(t, "/venv/bin/python3.11", torch.Command)

	other, ok := Config{Command: "vllm"}.Reclaimer().(*supervisor.ExecReclaimer)
	require.True(t, ok)
	assert.Equal(t, supervisor.DefaultCommand, other.Command)
}
