// Package mmio is the hardware-backed engine.Port implementation. It
// maps the compute engine's CSR window from a device node (a UIO region
// or /dev/mem carve-out) and issues each instruction as a single 32-bit
// register access. Instruction order is preserved by construction: every
// method performs exactly one store before returning.
package mmio

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/edgekernel/dwtile/engine"
)

// Register offsets within the CSR window, one register per instruction.
const (
	regEnable           = 0x00
	regNumTiles         = 0x04
	regInputWidth       = 0x08
	regInputDepthWords  = 0x0C
	regOutputBatchSize  = 0x10
	regInputOffset      = 0x14
	regOutputOffset     = 0x18
	regActivationMin    = 0x1C
	regActivationMax    = 0x20
	regOutputMultiplier = 0x24
	regOutputShift      = 0x28
	regOutputBias       = 0x2C
	regFilterWord       = 0x30
	regInputWord        = 0x34
	regRun              = 0x38
	regStatus           = 0x3C // bit 0: output word available
	regOutput           = 0x40

	windowBytes = 0x44
)

// DefaultReadTimeout bounds blocking output reads when the caller does
// not configure one. The engine normally responds within microseconds;
// anything near this bound means the engine has wedged.
const DefaultReadTimeout = time.Second

// Config selects the device window and read policy.
type Config struct {
	// Path is the device node exposing the CSR window, e.g. /dev/uio0.
	Path string
	// Offset of the window within the device mapping.
	Offset int64
	// ReadTimeout bounds ReadOutput; zero selects DefaultReadTimeout.
	ReadTimeout time.Duration
}

// Port drives the engine through the mapped register window.
type Port struct {
	mem     []byte
	timeout time.Duration
	unmap   func() error
}

// Open maps the CSR window and returns a ready Port.
func Open(cfg Config) (*Port, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("mmio: device path is empty")
	}
	mem, unmap, err := mapCSRWindow(cfg.Path, cfg.Offset, windowBytes)
	if err != nil {
		return nil, fmt.Errorf("mmio: mapping %s: %w", cfg.Path, err)
	}
	timeout := cfg.ReadTimeout
	if timeout == 0 {
		timeout = DefaultReadTimeout
	}
	return &Port{mem: mem, timeout: timeout, unmap: unmap}, nil
}

// Close releases the register mapping.
func (p *Port) Close() error {
	if p.unmap == nil {
		return nil
	}
	err := p.unmap()
	p.unmap = nil
	p.mem = nil
	return err
}

// write32 issues one register store. Atomic access guarantees a single
// untorn 32-bit bus transaction.
func (p *Port) write32(off int, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&p.mem[off])), v)
}

func (p *Port) read32(off int) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&p.mem[off])))
}

func (p *Port) SetEnable(v int32) error          { p.write32(regEnable, uint32(v)); return nil }
func (p *Port) SetNumTiles(n int32) error        { p.write32(regNumTiles, uint32(n)); return nil }
func (p *Port) SetInputWidth(w int32) error      { p.write32(regInputWidth, uint32(w)); return nil }
func (p *Port) SetInputDepthWords(n int32) error { p.write32(regInputDepthWords, uint32(n)); return nil }
func (p *Port) SetOutputBatchSize(n int32) error { p.write32(regOutputBatchSize, uint32(n)); return nil }
func (p *Port) SetInputOffset(v int32) error     { p.write32(regInputOffset, uint32(v)); return nil }
func (p *Port) SetOutputOffset(v int32) error    { p.write32(regOutputOffset, uint32(v)); return nil }
func (p *Port) SetActivationMin(v int32) error   { p.write32(regActivationMin, uint32(v)); return nil }
func (p *Port) SetActivationMax(v int32) error   { p.write32(regActivationMax, uint32(v)); return nil }

func (p *Port) StoreOutputMultiplier(v int32) error {
	p.write32(regOutputMultiplier, uint32(v))
	return nil
}

func (p *Port) StoreOutputShift(v int32) error {
	p.write32(regOutputShift, uint32(v))
	return nil
}

func (p *Port) StoreOutputBias(v int32) error {
	p.write32(regOutputBias, uint32(v))
	return nil
}

func (p *Port) StoreFilterWord(w uint32) error {
	p.write32(regFilterWord, w)
	return nil
}

func (p *Port) StoreInputWord(w uint32) error {
	p.write32(regInputWord, w)
	return nil
}

func (p *Port) Run() error {
	p.write32(regRun, 1)
	return nil
}

// ReadOutput polls the status register until a result word is available
// or the timeout elapses.
func (p *Port) ReadOutput() (uint32, error) {
	deadline := time.Now().Add(p.timeout)
	for {
		if p.read32(regStatus)&1 != 0 {
			return p.read32(regOutput), nil
		}
		if time.Now().After(deadline) {
			return 0, engine.ErrReadTimeout
		}
	}
}
