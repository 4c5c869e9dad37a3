//go:build !linux

package platform

import (
	"fmt"
	"runtime"
)

// Open reports that no window system backend exists on this platform.
func Open() (Backend, error) {
	return nil, fmt.Errorf("window mirroring is not supported on %s", runtime.GOOS)
}
