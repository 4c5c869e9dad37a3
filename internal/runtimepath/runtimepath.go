package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvRuntimeDir overrides every other runtime directory source.
const EnvRuntimeDir = "WINSTACK_RUNTIME_DIR"

const socketName = "winstack.sock"

// Dir returns the directory that holds the daemon socket. Priority:
// 1) WINSTACK_RUNTIME_DIR
// 2) XDG_RUNTIME_DIR
// 3) /run/user/<uid> (if present)
// 4) /tmp/winstack-runtime-<uid> (created)
func Dir() (string, error) {
	for _, key := range []string{EnvRuntimeDir, "XDG_RUNTIME_DIR"} {
		if dir := os.Getenv(key); dir != "" {
			return dir, nil
		}
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := filepath.Join(os.TempDir(), fmt.Sprintf("winstack-runtime-%d", uid))
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, socketName), nil
}
