//go:build linux

package mmio

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapCSRWindow maps size bytes of the device's register space at the
// given offset. The mapping must be page-granular; the register window
// sits at the start of the returned slice.
func mapCSRWindow(path string, offset int64, size int) ([]byte, func() error, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	page := int64(unix.Getpagesize())
	base := offset &^ (page - 1)
	span := int(offset-base) + size
	span = (span + int(page) - 1) &^ (int(page) - 1)

	mem, err := unix.Mmap(int(f.Fd()), base, span,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	window := mem[offset-base:]
	unmap := func() error { return unix.Munmap(mem) }
	return window, unmap, nil
}
