package rcc

import (
	"fmt"
	mmap "github.com/edsrzf/mmap-go"
	"os"
	"reflect"
	"unsafe"

	"github.com/platinasystems/log"
)

// Register details here are from the STM32MP157 reference manual (RM0436),
// chapter 10 (RCC). Offsets below 0x800 are in the TZEN-protected half of
// the block, offsets from 0x800 up are always non-secure accessible.

const (
	MEM_FILE  = "/dev/mem"
	PAGE_SIZE = 4096

	RCC_BASE = 0x50000000
	RCC_SIZE = 0x1000
)

// Mem is a window onto the RCC register block. All accesses are 32-bit.
type Mem struct {
	buf  mmap.MMap
	regs []uint32
}

// NewMem opens /dev/mem and maps the RCC block.
func NewMem() (*Mem, error) {
	m := Mem{}
	var offs uintptr
	var err error
	m.buf, offs, err = mapMem(RCC_BASE, RCC_SIZE)
	if err != nil {
		return nil, fmt.Errorf("couldn't map RCC: %v", err)
	}
	m.regs = uint32Slice(m.buf, offs)
	return &m, nil
}

func (m *Mem) Close() error {
	m.regs = nil
	return m.buf.Unmap()
}

// Read returns the register at byte offset offs.
func (m *Mem) Read(offs uint32) uint32 {
	return m.regs[offs/4]
}

// Write sets the register at byte offset offs.
func (m *Mem) Write(offs, val uint32) {
	m.regs[offs/4] = val
}

// SetBits sets the bits in mask, leaving the rest of the register alone.
func (m *Mem) SetBits(offs, mask uint32) {
	m.regs[offs/4] |= mask
}

// ClrBits clears the bits in mask, leaving the rest of the register alone.
func (m *Mem) ClrBits(offs, mask uint32) {
	m.regs[offs/4] &^= mask
}

// ClrSetBits clears the bits in mask, then sets those in val.
func (m *Mem) ClrSetBits(offs, mask, val uint32) {
	m.regs[offs/4] = (m.regs[offs/4] &^ mask) | val
}

// uint32Slice does terrible things to an MMap (which is itself a []byte), to
// return the mapped registers as a []uint32. It takes care of the offset
// between the page boundary (where MMaps always start) and the actual
// desired mapped area.
func uint32Slice(buf mmap.MMap, offs uintptr) []uint32 {
	header := *(*reflect.SliceHeader)(unsafe.Pointer(&buf))
	header.Len -= int(offs)
	header.Len /= 4
	header.Cap -= int(offs)
	header.Cap /= 4
	header.Data += offs
	return *(*[]uint32)(unsafe.Pointer(&header))
}

// mapMem opens /dev/mem and uses mmap to map a given physical address into
// our address space. Since the mapping has to start at a page boundary, the
// physical address is rounded down to the nearest page boundary. mapMem
// returns the mapped memory and the offset that should be used to access it
// (=physAddr%PAGE_SIZE).
func mapMem(physAddr uintptr, size int) (mmap.MMap, uintptr, error) {
	f, err := os.OpenFile(MEM_FILE, os.O_RDWR|os.O_SYNC, os.ModePerm)
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't open %s: %v", MEM_FILE, err)
	}

	pagemask := ^uintptr(PAGE_SIZE - 1)
	mapAddr := physAddr & pagemask
	size += int(physAddr - mapAddr)
	log.Printf("MapRegion(f, %d, RDWR, 0, %08X), physAddr %08X, mask %08X\n", size, int64(mapAddr), physAddr, pagemask)
	mm, err := mmap.MapRegion(f, size, mmap.RDWR, 0, int64(mapAddr))
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't map region (%v, %v): %v", physAddr, size, err)
	}
	f.Close() // Ignore error

	return mm, physAddr & (PAGE_SIZE - 1), nil
}
