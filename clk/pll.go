package clk

import (
	"fmt"
	"time"

	"github.com/Jon-Bright/clkctl/rcc"
)

const (
	pllRdyTimeout = 200 * time.Millisecond
	clkSrcTimeout = 200 * time.Millisecond
	clkDivTimeout = 200 * time.Millisecond
)

// pllCfg is one full divider configuration. O holds the output enable bits
// in DIVPEN/DIVQEN/DIVREN order, before shifting.
type pllCfg struct {
	M uint32
	N uint32
	P uint32
	Q uint32
	R uint32
	O uint32
}

func (c *Clk) pllFref(pll pllID) uint64 {
	src := c.io.Read(plls[pll].rckselr) & rcc.SELR_SRC_MASK
	return c.oscHz(plls[pll].refclk[src])
}

// pllFvco returns the VCO frequency for PLL3/PLL4 and VCO/2 for PLL1/PLL2.
// Either way the output is this value divided by (DIVy + 1).
func (c *Clk) pllFvco(pll pllID) uint64 {
	cfgr1 := c.io.Read(plls[pll].cfgr1)
	fracr := c.io.Read(plls[pll].fracr)

	divm := uint64((cfgr1 & rcc.PLLNCFGR1_DIVM_MASK) >> rcc.PLLNCFGR1_DIVM_SHIFT)
	divn := uint64(cfgr1 & rcc.PLLNCFGR1_DIVN_MASK)

	refclk := c.pllFref(pll)

	// With FRACV:
	//   Fvco = Fck_ref * ((DIVN + 1) + FRACV / 2^13) / (DIVM + 1)
	// Without FRACV:
	//   Fvco = Fck_ref * (DIVN + 1) / (DIVM + 1)
	if fracr&rcc.PLLNFRACR_FRACLE != 0 {
		fracv := uint64((fracr & rcc.PLLNFRACR_FRACV_MASK) >> rcc.PLLNFRACR_FRACV_SHIFT)
		numerator := refclk * (((divn + 1) << 13) + fracv)
		denominator := (divm + 1) << 13
		return numerator / denominator
	}
	return refclk * (divn + 1) / (divm + 1)
}

func (c *Clk) pllFreq(pll pllID, div divID) uint64 {
	if div >= nbDiv {
		return 0
	}
	cfgr2 := c.io.Read(plls[pll].cfgr2)
	divy := uint64((cfgr2 >> pllCfgr2Shift[div]) & rcc.PLLNCFGR2_DIVX_MASK)
	return c.pllFvco(pll) / (divy + 1)
}

func (c *Clk) pllStart(pll pllID) {
	cr := plls[pll].cr
	if c.io.Read(cr)&rcc.PLLNCR_PLLON != 0 {
		return
	}
	c.io.ClrSetBits(cr, rcc.PLLNCR_DIVPEN|rcc.PLLNCR_DIVQEN|rcc.PLLNCR_DIVREN,
		rcc.PLLNCR_PLLON)
}

// pllOutput waits for the PLL to lock, then enables the requested outputs.
func (c *Clk) pllOutput(pll pllID, output uint32) error {
	cr := plls[pll].cr

	start := time.Now()
	for c.io.Read(cr)&rcc.PLLNCR_PLLRDY == 0 {
		if time.Since(start) > pllRdyTimeout {
			return fmt.Errorf("PLL%d start failed @ 0x%X: 0x%X",
				pll+1, cr, c.io.Read(cr))
		}
	}

	c.io.SetBits(cr, output<<rcc.PLLNCR_DIVEN_SHIFT)
	return nil
}

func (c *Clk) pllStop(pll pllID) error {
	cr := plls[pll].cr

	// Stop all outputs, then the PLL itself
	c.io.ClrBits(cr, rcc.PLLNCR_DIVPEN|rcc.PLLNCR_DIVQEN|rcc.PLLNCR_DIVREN)
	c.io.ClrBits(cr, rcc.PLLNCR_PLLON)

	start := time.Now()
	for c.io.Read(cr)&rcc.PLLNCR_PLLRDY != 0 {
		if time.Since(start) > pllRdyTimeout {
			return fmt.Errorf("PLL%d stop failed @ 0x%X: 0x%X",
				pll+1, cr, c.io.Read(cr))
		}
	}
	return nil
}

func computeCfgr2(cfg *pllCfg) uint32 {
	v := (cfg.P & rcc.PLLNCFGR2_DIVX_MASK) << rcc.PLLNCFGR2_DIVP_SHIFT
	v |= (cfg.Q & rcc.PLLNCFGR2_DIVX_MASK) << rcc.PLLNCFGR2_DIVQ_SHIFT
	v |= (cfg.R & rcc.PLLNCFGR2_DIVX_MASK) << rcc.PLLNCFGR2_DIVR_SHIFT
	return v
}

// computeCfgr1 validates the post-DIVM reference frequency against the PLL
// type's window and derives the input range bit.
func (c *Clk) computeCfgr1(pll pllID, cfg *pllCfg) (uint32, error) {
	typ := plls[pll].typ
	src := c.io.Read(plls[pll].rckselr) & rcc.SELR_SRC_MASK

	refclk := c.oscHz(plls[pll].refclk[src]) / uint64(cfg.M+1)
	if refclk < pllTypes[typ].refclkMin*1000000 ||
		refclk > pllTypes[typ].refclkMax*1000000 {
		return 0, fmt.Errorf("PLL%d ref %d Hz out of range", pll+1, refclk)
	}

	var ifrge uint32
	if typ == pll800 && refclk >= 8000000 {
		ifrge = 1
	}

	v := cfg.N & rcc.PLLNCFGR1_DIVN_MASK
	v |= (cfg.M << rcc.PLLNCFGR1_DIVM_SHIFT) & rcc.PLLNCFGR1_DIVM_MASK
	v |= (ifrge << rcc.PLLNCFGR1_IFRGE_SHIFT) & rcc.PLLNCFGR1_IFRGE_MASK
	return v, nil
}

// pllConfig writes the divider and fractional configuration. The fractional
// value must be loaded before FRACLE is set or the PLL would latch the old
// value.
func (c *Clk) pllConfig(pll pllID, cfg *pllCfg, fracv uint32) error {
	cfgr1, err := c.computeCfgr1(pll, cfg)
	if err != nil {
		return err
	}
	c.io.Write(plls[pll].cfgr1, cfgr1)

	c.io.Write(plls[pll].fracr, fracv<<rcc.PLLNFRACR_FRACV_SHIFT)
	v := c.io.Read(plls[pll].fracr)
	c.io.Write(plls[pll].fracr, v|rcc.PLLNFRACR_FRACLE)

	c.io.Write(plls[pll].cfgr2, computeCfgr2(cfg))
	return nil
}

// A clock source request encodes the selector register offset in the upper
// bits and the source value in the lower four.
const (
	clkMPUHSI      = rcc.MPCKSELR<<4 | rcc.MPCKSELR_HSI
	clkMPUPLL1P    = rcc.MPCKSELR<<4 | rcc.MPCKSELR_PLL
	clkMPUPLL1PDiv = rcc.MPCKSELR<<4 | rcc.MPCKSELR_PLL_MPUDIV
)

func (c *Clk) setClkSrc(clksrc uint32) error {
	offset := clksrc >> 4
	c.io.ClrSetBits(offset, rcc.SELR_SRC_MASK, clksrc&rcc.SELR_SRC_MASK)

	start := time.Now()
	for c.io.Read(offset)&rcc.SELR_SRCRDY == 0 {
		if time.Since(start) > clkSrcTimeout {
			return fmt.Errorf("clock source %X start failed: 0x%X",
				clksrc, c.io.Read(offset))
		}
	}
	return nil
}

func (c *Clk) setClkDiv(clkdiv, offset uint32) error {
	c.io.ClrSetBits(offset, rcc.DIVR_DIV_MASK, clkdiv&rcc.DIVR_DIV_MASK)

	start := time.Now()
	for c.io.Read(offset)&rcc.DIVR_DIVRDY == 0 {
		if time.Since(start) > clkDivTimeout {
			return fmt.Errorf("clock divider %X start failed @ 0x%X: 0x%X",
				clkdiv, offset, c.io.Read(offset))
		}
	}
	return nil
}
