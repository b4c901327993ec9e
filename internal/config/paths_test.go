package config

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	for in, want := range map[string]string{
		"":                   "",
		"/usr/bin/python3":   "/usr/bin/python3",
		"~":                  home,
		"~/venv/bin/python3": filepath.Join(home, "venv", "bin", "python3"),
		"~other/bin/python":  "~other/bin/python",
	} {
		got, err := expandHome(in)
		if err != nil {
			t.Fatalf("expandHome(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("expandHome(%q)=%q want %q", in, got, want)
		}
	}
}

func TestSupervisorConfigExpandsCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	sc, err := Config{Command: "~/venv/bin/python3"}.SupervisorConfig()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if sc.Command != filepath.Join(home, "venv", "bin", "python3") {
		t.Fatalf("command not expanded: %q", sc.Command)
	}
}
