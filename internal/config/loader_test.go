package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "command: /usr/bin/python3\nhost: 127.0.0.1\npoll_interval: 1s\nextra_args: [\"--dtype\", \"half\"]\nenv:\n  CUDA_VISIBLE_DEVICES: \"0\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Command != "/usr/bin/python3" || cfg.Host != "127.0.0.1" || cfg.PollInterval != "1s" || len(cfg.ExtraArgs) != 2 || cfg.Env["CUDA_VISIBLE_DEVICES"] != "0" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"command":"vllm","base_args":["serve"],"grace_period":"10s","status_addr":":7070"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Command != "vllm" || len(cfg.BaseArgs) != 1 || cfg.GracePeriod != "10s" || cfg.StatusAddr != ":7070" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "health_timeout=\"300s\"\nreclaim_disabled=true\ncors_origins=[\"http://localhost:5173\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HealthTimeout != "300s" || !cfg.ReclaimDisabled || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestSupervisorConfigDurations(t *testing.T) {
	sc, err := Config{PollInterval: "250ms", GracePeriod: "3s"}.SupervisorConfig()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if sc.PollInterval != 250*time.Millisecond || sc.GracePeriod != 3*time.Second || sc.HealthTimeout != 0 {
		t.Fatalf("unexpected supervisor cfg: %+v", sc)
	}
	if _, err := (Config{RequestTimeout: "soon"}).SupervisorConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := (Config{HealthTimeout: "-1s"}).SupervisorConfig(); err == nil {
		t.Fatalf("expected negative duration error")
	}
}
