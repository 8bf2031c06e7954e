package clk

import (
	"testing"

	"github.com/Jon-Bright/clkctl/rcc"
)

func TestPLLFreqFractional(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)
	setupPLL1(f)

	if got := c.pllFreq(PLL1, divP); got != pll1SetupHz {
		t.Errorf("PLL1 P: got %d, want %d", got, pll1SetupHz)
	}
}

func TestPLLFreqIntegerOnly(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)
	setupPLL1(f)

	// Without FRACLE the loaded FRACV is ignored
	f.regs[rcc.PLL1FRACR] = 2048 << rcc.PLLNFRACR_FRACV_SHIFT
	if got := c.pllFreq(PLL1, divP); got != 648000000 {
		t.Errorf("PLL1 P: got %d, want 648000000", got)
	}
}

func TestPLLFreqOutputDividers(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	// PLL4 on HSE: 24 MHz * 25 / 2 = 300 MHz VCO
	f.regs[rcc.RCK4SELR] = 1 | rcc.SELR_SRCRDY
	f.regs[rcc.PLL4CFGR1] = 1<<rcc.PLLNCFGR1_DIVM_SHIFT | 24
	f.regs[rcc.PLL4CFGR2] = 2 | 4<<rcc.PLLNCFGR2_DIVQ_SHIFT | 9<<rcc.PLLNCFGR2_DIVR_SHIFT

	if got := c.pllFreq(PLL4, divP); got != 100000000 {
		t.Errorf("PLL4 P: got %d, want 100000000", got)
	}
	if got := c.pllFreq(PLL4, divQ); got != 60000000 {
		t.Errorf("PLL4 Q: got %d, want 60000000", got)
	}
	if got := c.pllFreq(PLL4, divR); got != 30000000 {
		t.Errorf("PLL4 R: got %d, want 30000000", got)
	}
}

func TestPLLStartStop(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	c.pllStart(PLL3)
	if f.regs[rcc.PLL3CR]&rcc.PLLNCR_PLLON == 0 {
		t.Fatal("PLL3 not started")
	}
	if err := c.pllOutput(PLL3, 0x3); err != nil {
		t.Fatalf("couldn't enable PLL3 outputs: %v", err)
	}
	if f.regs[rcc.PLL3CR]&(rcc.PLLNCR_DIVPEN|rcc.PLLNCR_DIVQEN) !=
		rcc.PLLNCR_DIVPEN|rcc.PLLNCR_DIVQEN {
		t.Errorf("PLL3 outputs not enabled: 0x%X", f.regs[rcc.PLL3CR])
	}

	// A second start must not touch the register
	n := f.numWrites()
	c.pllStart(PLL3)
	if f.numWrites() != n {
		t.Error("redundant start wrote registers")
	}

	if err := c.pllStop(PLL3); err != nil {
		t.Fatalf("couldn't stop PLL3: %v", err)
	}
	want := uint32(rcc.PLLNCR_PLLON | rcc.PLLNCR_PLLRDY |
		rcc.PLLNCR_DIVPEN | rcc.PLLNCR_DIVQEN | rcc.PLLNCR_DIVREN)
	if f.regs[rcc.PLL3CR]&want != 0 {
		t.Errorf("PLL3 not stopped: 0x%X", f.regs[rcc.PLL3CR])
	}
}

func TestPLLConfigWriteOrder(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	// PLL3 on HSI, DIVM+1=8 lands at 8 MHz, upper input range
	cfg := pllCfg{M: 7, N: 49, P: 1, Q: 3, R: 7, O: 1}
	if err := c.pllConfig(PLL3, &cfg, 100); err != nil {
		t.Fatalf("couldn't configure PLL3: %v", err)
	}

	var offsets []uint32
	for _, w := range f.writes {
		offsets = append(offsets, w.offs)
	}
	want := []uint32{rcc.PLL3CFGR1, rcc.PLL3FRACR, rcc.PLL3FRACR, rcc.PLL3CFGR2}
	if len(offsets) != len(want) {
		t.Fatalf("got %d writes, want %d", len(offsets), len(want))
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("write %d went to 0x%X, want 0x%X", i, offsets[i], want[i])
		}
	}

	// FRACV must be loaded with FRACLE clear, then latched
	if f.writes[1].val&rcc.PLLNFRACR_FRACLE != 0 {
		t.Error("FRACLE set in same write as FRACV")
	}
	if f.writes[2].val != 100<<rcc.PLLNFRACR_FRACV_SHIFT|rcc.PLLNFRACR_FRACLE {
		t.Errorf("FRACR latch: got 0x%X", f.writes[2].val)
	}

	wantCfgr1 := uint32(49 | 7<<rcc.PLLNCFGR1_DIVM_SHIFT | 1<<rcc.PLLNCFGR1_IFRGE_SHIFT)
	if f.regs[rcc.PLL3CFGR1] != wantCfgr1 {
		t.Errorf("CFGR1: got 0x%X, want 0x%X", f.regs[rcc.PLL3CFGR1], wantCfgr1)
	}
	wantCfgr2 := uint32(1 | 3<<rcc.PLLNCFGR2_DIVQ_SHIFT | 7<<rcc.PLLNCFGR2_DIVR_SHIFT)
	if f.regs[rcc.PLL3CFGR2] != wantCfgr2 {
		t.Errorf("CFGR2: got 0x%X, want 0x%X", f.regs[rcc.PLL3CFGR2], wantCfgr2)
	}
}

func TestPLLConfigRefclkOutOfRange(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	// 64 MHz HSI undivided is far above the 16 MHz input limit
	cfg := pllCfg{M: 0, N: 49}
	if err := c.pllConfig(PLL3, &cfg, 0); err == nil {
		t.Error("out-of-range reference accepted")
	}
	if f.numWrites() != 0 {
		t.Errorf("failed config still wrote %d registers", f.numWrites())
	}
}

func TestSetClkSrcAndDiv(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	if err := c.setClkSrc(clkMPUHSI); err != nil {
		t.Fatalf("couldn't set MPU source: %v", err)
	}
	if f.regs[rcc.MPCKSELR]&rcc.SELR_SRC_MASK != rcc.MPCKSELR_HSI {
		t.Errorf("MPCKSELR: got 0x%X", f.regs[rcc.MPCKSELR])
	}

	if err := c.setClkDiv(3, rcc.MPCKDIVR); err != nil {
		t.Fatalf("couldn't set MPU divider: %v", err)
	}
	if f.regs[rcc.MPCKDIVR]&rcc.DIVR_DIV_MASK != 3 {
		t.Errorf("MPCKDIVR: got 0x%X", f.regs[rcc.MPCKDIVR])
	}
}
