package clk

import (
	"fmt"

	"github.com/Jon-Bright/clkctl/rcc"
)

// RegOp selects how RawRegAccess applies the value.
type RegOp int

const (
	RegWrite RegOp = iota
	RegSet
	RegClear
)

// Registers the non-secure world may touch, with the bits it may touch in
// them.
var rawRegAllowed = []struct {
	offset uint32
	mask   uint32
}{
	{rcc.MP_CIER, rcc.MP_CIFR_WKUPF},
	{rcc.MP_CIFR, rcc.MP_CIFR_WKUPF},
	{rcc.MP_GCR, rcc.MP_GCR_BOOT_MCU},
}

// RawRegAccess applies a masked register update on behalf of the
// non-secure world. The offset may carry the RCC base address.
func (c *Clk) RawRegAccess(op RegOp, offset, value uint32) error {
	if offset&^0xFFF != 0 {
		if offset&^0xFFF != rcc.RCC_BASE {
			return fmt.Errorf("register 0x%X outside RCC", offset)
		}
		offset &= 0xFFF
	}

	var mask uint32
	found := false
	for _, a := range rawRegAllowed {
		if a.offset == offset {
			mask = a.mask
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("register 0x%X not allowed", offset)
	}
	value &= mask

	c.mu.Lock()
	defer c.mu.Unlock()
	switch op {
	case RegWrite:
		c.io.ClrSetBits(offset, mask, value)
	case RegSet:
		c.io.SetBits(offset, value)
	case RegClear:
		c.io.ClrBits(offset, value)
	default:
		return fmt.Errorf("bad register op %d", op)
	}
	return nil
}
