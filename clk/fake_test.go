package clk

import (
	"github.com/Jon-Bright/clkctl/rcc"
)

type regWrite struct {
	offs uint32
	val  uint32
}

// fakeIO is a RAM-backed RegIO. It models the hardware behavior the code
// polls for: ready bits mirror their enable bits with no delay, and the
// SET/CLR register pairs act on the shared enable word.
type fakeIO struct {
	regs   map[uint32]uint32
	writes []regWrite
}

// Registers with SET/CLR semantics: a write ORs into the readable word, a
// write at +4 clears.
var fakeSetClr = func() map[uint32]bool {
	m := map[uint32]bool{
		rcc.OCENSETR: true,
	}
	for i := range gates {
		if gates[i].setClr {
			m[gates[i].offset] = true
		}
	}
	return m
}()

func newFakeIO() *fakeIO {
	return &fakeIO{regs: make(map[uint32]uint32)}
}

func (f *fakeIO) mirror(offs, val uint32) uint32 {
	switch offs {
	case rcc.PLL1CR, rcc.PLL2CR, rcc.PLL3CR, rcc.PLL4CR:
		if val&rcc.PLLNCR_PLLON != 0 {
			val |= rcc.PLLNCR_PLLRDY
		} else {
			val &^= rcc.PLLNCR_PLLRDY
		}
	case rcc.MPCKSELR, rcc.ASSCKSELR, rcc.MSSCKSELR, rcc.CPERCKSELR,
		rcc.RCK12SELR, rcc.RCK3SELR, rcc.RCK4SELR:
		val |= rcc.SELR_SRCRDY
	case rcc.MPCKDIVR, rcc.AXIDIVR, rcc.MCUDIVR,
		rcc.APB1DIVR, rcc.APB2DIVR, rcc.APB3DIVR,
		rcc.APB4DIVR, rcc.APB5DIVR:
		val |= rcc.DIVR_DIVRDY
	}
	return val
}

func (f *fakeIO) Read(offs uint32) uint32 {
	return f.regs[offs]
}

func (f *fakeIO) Write(offs, val uint32) {
	f.writes = append(f.writes, regWrite{offs, val})
	if fakeSetClr[offs] {
		f.regs[offs] |= val
		return
	}
	if offs >= rcc.ENCLRR_OFFSET && fakeSetClr[offs-rcc.ENCLRR_OFFSET] {
		f.regs[offs-rcc.ENCLRR_OFFSET] &^= val
		return
	}
	f.regs[offs] = f.mirror(offs, val)
}

func (f *fakeIO) SetBits(offs, mask uint32) {
	f.Write(offs, f.regs[offs]|mask)
}

func (f *fakeIO) ClrBits(offs, mask uint32) {
	f.Write(offs, f.regs[offs]&^mask)
}

func (f *fakeIO) ClrSetBits(offs, mask, val uint32) {
	f.Write(offs, f.regs[offs]&^mask|val)
}

func (f *fakeIO) numWrites() int {
	return len(f.writes)
}

func newTestClk(f *fakeIO, secure bool) *Clk {
	cfg := Config{Secure: secure}
	cfg.OscHz[OscHSI] = 64000000
	cfg.OscHz[OscHSE] = 24000000
	cfg.OscHz[OscCSI] = 4000000
	cfg.OscHz[OscLSI] = 32000
	cfg.OscHz[OscLSE] = 32768
	return New(f, &cfg)
}

// setupPLL1 programs PLL1 for a 650 MHz P output from the 24 MHz HSE:
// DIVM+1=3, DIVN+1=81, FRACV=2048, DIVP+1=1, and clocks the MPU from it.
func setupPLL1(f *fakeIO) {
	f.regs[rcc.RCK12SELR] = 1 | rcc.SELR_SRCRDY
	f.regs[rcc.PLL1CR] = rcc.PLLNCR_PLLON | rcc.PLLNCR_PLLRDY | rcc.PLLNCR_DIVPEN
	f.regs[rcc.PLL1CFGR1] = 2<<rcc.PLLNCFGR1_DIVM_SHIFT | 80
	f.regs[rcc.PLL1FRACR] = 2048<<rcc.PLLNFRACR_FRACV_SHIFT | rcc.PLLNFRACR_FRACLE
	f.regs[rcc.PLL1CFGR2] = 0
	f.regs[rcc.MPCKSELR] = rcc.MPCKSELR_PLL | rcc.SELR_SRCRDY
}

const pll1SetupHz = 650000000
