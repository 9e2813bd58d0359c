//go:build !linux

package mmio

import "fmt"

// mapCSRWindow is only implemented for Linux device mappings; other
// platforms can still build against the package but cannot open a Port.
func mapCSRWindow(path string, offset int64, size int) ([]byte, func() error, error) {
	return nil, nil, fmt.Errorf("mmio: register mapping not supported on this platform")
}
