package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// only "~/..." is ours; "~user" is left to the shell
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
