package clk

import (
	"testing"

	"github.com/Jon-Bright/clkctl/rcc"
)

func TestRawRegAccessMasksValue(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	if err := c.RawRegAccess(RegSet, rcc.MP_CIFR, 0xFFFFFFFF); err != nil {
		t.Fatalf("CIFR set refused: %v", err)
	}
	if f.regs[rcc.MP_CIFR] != rcc.MP_CIFR_WKUPF {
		t.Errorf("CIFR: got 0x%X, want only WKUPF", f.regs[rcc.MP_CIFR])
	}
}

func TestRawRegAccessWriteAndClear(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	if err := c.RawRegAccess(RegWrite, rcc.MP_GCR, rcc.MP_GCR_BOOT_MCU); err != nil {
		t.Fatalf("GCR write refused: %v", err)
	}
	if f.regs[rcc.MP_GCR]&rcc.MP_GCR_BOOT_MCU == 0 {
		t.Error("BOOT_MCU not set")
	}
	if err := c.RawRegAccess(RegClear, rcc.MP_GCR, rcc.MP_GCR_BOOT_MCU); err != nil {
		t.Fatalf("GCR clear refused: %v", err)
	}
	if f.regs[rcc.MP_GCR]&rcc.MP_GCR_BOOT_MCU != 0 {
		t.Error("BOOT_MCU not cleared")
	}
}

func TestRawRegAccessAcceptsBaseAddress(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	if err := c.RawRegAccess(RegSet, rcc.RCC_BASE+rcc.MP_CIER, rcc.MP_CIFR_WKUPF); err != nil {
		t.Fatalf("base-addressed CIER refused: %v", err)
	}
	if f.regs[rcc.MP_CIER]&rcc.MP_CIFR_WKUPF == 0 {
		t.Error("CIER wakeup bit not set")
	}
}

func TestRawRegAccessRejections(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	if err := c.RawRegAccess(RegWrite, rcc.PLL1CR, 1); err == nil {
		t.Error("PLL1CR write accepted")
	}
	if err := c.RawRegAccess(RegWrite, 0x40000000+rcc.MP_CIFR, 1); err == nil {
		t.Error("write outside RCC accepted")
	}
	if f.numWrites() != 0 {
		t.Errorf("rejected accesses wrote %d registers", f.numWrites())
	}
}
