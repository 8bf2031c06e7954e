package clk

import (
	"testing"

	"github.com/Jon-Bright/clkctl/rcc"
)

func TestSuspendResumeRestoresState(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	c.Enable(SPI6_K)
	c.Enable(I2C4_K)
	c.Disable(I2C4_K)

	f.regs[rcc.TZCR] = rcc.TZCR_TZEN
	f.regs[rcc.SDMMC12CKSELR] = 2
	f.regs[rcc.USBCKSELR] = 1 | 1<<4
	f.regs[rcc.PLL4CR] = rcc.PLLNCR_PLLON | rcc.PLLNCR_PLLRDY | rcc.PLLNCR_DIVPEN
	f.regs[rcc.OCENSETR] = rcc.OCEN_HSION | rcc.OCEN_HSEON

	c.Suspend()

	// ck_hsi_ker and ck_hse_ker keep running through the suspend
	kern := uint32(rcc.OCEN_HSIKERON | rcc.OCEN_HSEKERON)
	if f.regs[rcc.OCENSETR]&kern != kern {
		t.Errorf("kernel clocks not enabled: 0x%X", f.regs[rcc.OCENSETR])
	}

	// Lose everything the RCC forgets in low power
	f.regs[rcc.TZCR] = 0
	f.regs[rcc.SDMMC12CKSELR] = 5
	f.regs[rcc.USBCKSELR] = 0
	f.regs[rcc.PLL4CR] = 0
	f.regs[rcc.MP_APB5ENSETR] = 0

	c.Resume()

	if f.regs[rcc.TZCR] != rcc.TZCR_TZEN {
		t.Errorf("TZCR not restored: 0x%X", f.regs[rcc.TZCR])
	}
	if f.regs[rcc.SDMMC12CKSELR]&0x7 != 2 {
		t.Errorf("SDMMC12 mux not restored: 0x%X", f.regs[rcc.SDMMC12CKSELR])
	}
	if f.regs[rcc.USBCKSELR]&(0x3|1<<4) != 1|1<<4 {
		t.Errorf("USB muxes not restored: 0x%X", f.regs[rcc.USBCKSELR])
	}
	if f.regs[rcc.PLL4CR]&(rcc.PLLNCR_PLLON|rcc.PLLNCR_DIVPEN) !=
		rcc.PLLNCR_PLLON|rcc.PLLNCR_DIVPEN {
		t.Errorf("PLL4 not restarted: 0x%X", f.regs[rcc.PLL4CR])
	}

	// SPI6 is held, I2C4 isn't: the refcounts decide the physical state
	if f.regs[rcc.MP_APB5ENSETR]&1 == 0 {
		t.Error("held SPI6 not re-enabled")
	}
	if f.regs[rcc.MP_APB5ENSETR]&(1<<2) != 0 {
		t.Error("released I2C4 re-enabled")
	}

	if f.regs[rcc.OCENSETR]&kern != 0 {
		t.Errorf("kernel clocks still on after resume: 0x%X", f.regs[rcc.OCENSETR])
	}
}

func TestSuspendClearsResetStatus(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	f.regs[rcc.MP_RSTSCLRR] = 0xFF
	c.Suspend()
	if f.regs[rcc.MP_RSTSCLRR] != 0 {
		t.Errorf("reset status not cleared: 0x%X", f.regs[rcc.MP_RSTSCLRR])
	}
}

func TestStopContext(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	f.regs[rcc.MSSCKSELR] = 3 | rcc.SELR_SRCRDY
	f.regs[rcc.MCUDIVR] = 2 | rcc.DIVR_DIVRDY
	f.regs[rcc.PLL3CR] = rcc.PLLNCR_PLLON | rcc.PLLNCR_PLLRDY | rcc.PLLNCR_DIVPEN

	c.SaveContextForStop()

	f.regs[rcc.MSSCKSELR] = rcc.SELR_SRCRDY
	f.regs[rcc.MCUDIVR] = rcc.DIVR_DIVRDY
	f.regs[rcc.PLL3CR] = 0

	c.RestoreContextForStop()

	if f.regs[rcc.MSSCKSELR]&rcc.SELR_SRC_MASK != 3 {
		t.Errorf("MSSCKSELR not restored: 0x%X", f.regs[rcc.MSSCKSELR])
	}
	if f.regs[rcc.MCUDIVR]&rcc.MCUDIV_MASK != 2 {
		t.Errorf("MCUDIVR not restored: 0x%X", f.regs[rcc.MCUDIVR])
	}
	if f.regs[rcc.PLL3CR]&(rcc.PLLNCR_PLLON|rcc.PLLNCR_DIVPEN) !=
		rcc.PLLNCR_PLLON|rcc.PLLNCR_DIVPEN {
		t.Errorf("PLL3 not restarted: 0x%X", f.regs[rcc.PLL3CR])
	}
	// PLL4 was off and must stay off
	if f.regs[rcc.PLL4CR]&rcc.PLLNCR_PLLON != 0 {
		t.Errorf("PLL4 started spuriously: 0x%X", f.regs[rcc.PLL4CR])
	}
}

func TestMCUSSProtect(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)

	c.MCUSSProtect(true)
	if f.regs[rcc.TZCR]&rcc.TZCR_MCKPROT == 0 {
		t.Error("MCKPROT not set")
	}
	c.MCUSSProtect(false)
	if f.regs[rcc.TZCR]&rcc.TZCR_MCKPROT != 0 {
		t.Error("MCKPROT not cleared")
	}
}

func TestPMCallback(t *testing.T) {
	f := newFakeIO()
	c := newTestClk(f, true)
	f.regs[rcc.MCO1CFGR] = 0x12

	c.PMCallback(PMSuspend)
	f.regs[rcc.MCO1CFGR] = 0
	c.PMCallback(PMResume)
	if f.regs[rcc.MCO1CFGR] != 0x12 {
		t.Errorf("MCO1CFGR not restored: 0x%X", f.regs[rcc.MCO1CFGR])
	}
}
