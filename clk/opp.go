package clk

import (
	"fmt"
	"math/bits"

	"github.com/Jon-Bright/clkctl/rcc"
	"github.com/platinasystems/log"
)

const maxOppNB = 8

// "PLL1", tags a fully computed settings block
const pll1SettingsValidID = 0x504C4C31

// Precomputed PLL1 settings for each supported operating point. Compact
// 32bit cells so the block can be exported raw for low-power firmware.
type pll1Settings struct {
	validID uint32
	freq    [maxOppNB]uint32
	volt    [maxOppNB]uint32
	cfg     [maxOppNB]pllCfg
	frac    [maxOppNB]uint32
}

// PLL1 reference selector positions, encoded like setClkSrc requests.
const (
	clkPLL12HSI = rcc.RCK12SELR<<4 | 0
	clkPLL12HSE = rcc.RCK12SELR<<4 | 1
)

// SettingsValid reports whether the operating point table has been fully
// computed.
func (c *Clk) SettingsValid() bool {
	return c.settings.validID == pll1SettingsValidID
}

func divRoundNearest(n, d uint64) uint64 {
	return (n + d/2) / d
}

func (c *Clk) saveCurrentOPP() {
	freqKHz := divRoundNearest(c.Rate(CK_MPU), 1000)
	if freqKHz > uint64(^uint32(0)) {
		panic("MPU rate overflows kHz")
	}
	c.currentOppKHz = uint32(freqKHz)
}

// CurrentOppKHz returns the operating point currently in place.
func (c *Clk) CurrentOppKHz() uint32 {
	return c.currentOppKHz
}

// saveCurrentPLL1Settings snapshots the in-place PLL1 configuration into
// the settings slot matching the current MPU frequency. Returns the slot
// index, or -1 when the frequency or the supply voltage doesn't match any
// table entry.
func (c *Clk) saveCurrentPLL1Settings(buck1MV uint32) int {
	pll := &plls[PLL1]
	freq := uint32(divRoundNearest(c.Rate(CK_MPU), 1000))

	i := 0
	for ; i < maxOppNB; i++ {
		if c.settings.freq[i] == freq {
			break
		}
	}
	if i == maxOppNB || (buck1MV != 0 && c.settings.volt[i] != buck1MV) {
		return -1
	}

	cfgr1 := c.io.Read(pll.cfgr1)
	cfgr2 := c.io.Read(pll.cfgr2)

	c.settings.cfg[i] = pllCfg{
		M: (cfgr1 & rcc.PLLNCFGR1_DIVM_MASK) >> rcc.PLLNCFGR1_DIVM_SHIFT,
		N: cfgr1 & rcc.PLLNCFGR1_DIVN_MASK,
		P: (cfgr2 >> rcc.PLLNCFGR2_DIVP_SHIFT) & rcc.PLLNCFGR2_DIVX_MASK,
		Q: (cfgr2 >> rcc.PLLNCFGR2_DIVQ_SHIFT) & rcc.PLLNCFGR2_DIVX_MASK,
		R: (cfgr2 >> rcc.PLLNCFGR2_DIVR_SHIFT) & rcc.PLLNCFGR2_DIVX_MASK,
		O: c.io.Read(pll.cr) >> rcc.PLLNCR_DIVEN_SHIFT,
	}
	c.settings.frac[i] = (c.io.Read(pll.fracr) & rcc.PLLNFRACR_FRACV_MASK) >>
		rcc.PLLNFRACR_FRACV_SHIFT

	return i
}

func (c *Clk) pll1CurrentClkSrc() uint32 {
	switch c.io.Read(plls[PLL1].rckselr) & rcc.SELR_SRC_MASK {
	case 0:
		return clkPLL12HSI
	case 1:
		return clkPLL12HSE
	default:
		panic("PLL1 on unexpected reference")
	}
}

// getPLL1Settings fills settings slot index, either by computing it or by
// copying an already computed slot with the same frequency.
func (c *Clk) getPLL1Settings(clksrc uint32, index int) error {
	i := 0
	for ; i < maxOppNB; i++ {
		if c.settings.freq[i] == c.settings.freq[index] {
			break
		}
	}

	if (i == maxOppNB && !c.SettingsValid()) ||
		(i < maxOppNB && c.settings.cfg[i].O == 0) {
		// Either the settings table is completely empty, or this
		// slot is not yet computed: do it.
		var inputFreq uint64
		switch clksrc {
		case clkPLL12HSI:
			inputFreq = c.Rate(CK_HSI)
		case clkPLL12HSE:
			inputFreq = c.Rate(CK_HSE)
		default:
			panic("PLL1 on unexpected reference")
		}

		cfg, frac, err := computePLL1Settings(inputFreq, c.settings.freq[index])
		if err != nil {
			return err
		}
		c.settings.cfg[index] = cfg
		c.settings.frac[index] = frac
		return nil
	}

	if i < maxOppNB {
		// Another slot with the same frequency is already computed,
		// copy its settings so this slot exports correctly too.
		c.settings.cfg[index] = c.settings.cfg[i]
		c.settings.frac[index] = c.settings.frac[i]
		return nil
	}

	return fmt.Errorf("no settings for OPP slot %d", index)
}

// ComputeAllSettings loads the OPP table and computes PLL1 settings for
// every entry. A missing or oversized table is not an error: the system
// then runs on its boot operating point only.
func (c *Clk) ComputeAllSettings(opps []OPP, buck1MV uint32) error {
	if len(opps) == 0 {
		log.Print("no OPP info: use default settings")
		return nil
	}
	if len(opps) > maxOppNB {
		log.Printf("inconsistent OPP settings (%d entries), ignored", len(opps))
		return nil
	}

	c.settings = pll1Settings{}
	for i, opp := range opps {
		c.settings.freq[i] = opp.FreqKHz
		c.settings.volt[i] = opp.VoltMV
	}

	index := c.saveCurrentPLL1Settings(buck1MV)
	clksrc := c.pll1CurrentClkSrc()

	for i := 0; i < len(opps); i++ {
		if index >= 0 && i == index {
			continue
		}
		if err := c.getPLL1Settings(clksrc, i); err != nil {
			return err
		}
	}

	c.settings.validID = pll1SettingsValidID
	return nil
}

// getMPUDiv returns the power-of-two divider reaching freqKHz from the
// current PLL1 P output, or -1 when no such divider exists.
func (c *Clk) getMPUDiv(freqKHz uint32) int {
	freqPLL1P := c.parentRate(pPLL1P) / 1000
	if freqPLL1P%uint64(freqKHz) != 0 {
		return -1
	}

	div := freqPLL1P / uint64(freqKHz)
	switch div {
	case 1, 2, 4, 8, 16:
		return bits.TrailingZeros64(div)
	default:
		return -1
	}
}

// pll1ConfigFromOppKHz switches the MPU to freqKHz: via the MPU divider if
// PLL1's current output divides down to the target, on the fly when only
// DIVP/frac change, with a full stop/reconfigure/restart behind HSI
// otherwise.
func (c *Clk) pll1ConfigFromOppKHz(freqKHz uint32) error {
	idx := 0
	for ; idx < maxOppNB; idx++ {
		if c.settings.freq[idx] == freqKHz {
			break
		}
	}
	if idx == maxOppNB {
		return fmt.Errorf("no OPP for %d kHz", freqKHz)
	}

	switch div := c.getMPUDiv(freqKHz); div {
	case -1:
	case 0:
		return c.setClkSrc(clkMPUPLL1P)
	default:
		if err := c.setClkDiv(uint32(div), rcc.MPCKDIVR); err != nil {
			return err
		}
		return c.setClkSrc(clkMPUPLL1PDiv)
	}

	onTheFly, err := c.isPLLConfigOnTheFly(PLL1, &c.settings.cfg[idx],
		c.settings.frac[idx])
	if err != nil {
		return err
	}

	if onTheFly == 1 {
		// Same parameters as those in place
		return nil
	}

	if onTheFly == -1 {
		// Switch to HSI and stop PLL1 before reconfiguration
		if err := c.setClkSrc(clkMPUHSI); err != nil {
			return err
		}
		if err := c.pllStop(PLL1); err != nil {
			return err
		}
	}

	if err := c.pllConfig(PLL1, &c.settings.cfg[idx], c.settings.frac[idx]); err != nil {
		return err
	}

	if onTheFly == -1 {
		// Start PLL1 and switch back after reconfiguration
		c.pllStart(PLL1)
		if err := c.pllOutput(PLL1, c.settings.cfg[idx].O); err != nil {
			return err
		}
		if err := c.setClkSrc(clkMPUPLL1P); err != nil {
			return err
		}
	}

	return nil
}

// isPLLConfigOnTheFly checks whether the PLL can move to cfg without a
// stop: -1 means no (DIVM/DIVN differ), 0 means yes, 1 means the registers
// already hold exactly these parameters.
func (c *Clk) isPLLConfigOnTheFly(pll pllID, cfg *pllCfg, fracv uint32) (int, error) {
	cfgr1, err := c.computeCfgr1(pll, cfg)
	if err != nil {
		return 0, err
	}

	if c.io.Read(plls[pll].cfgr1) != cfgr1 {
		// Different DIVN/DIVM, can't config on the fly
		return -1, nil
	}

	fracr := fracv<<rcc.PLLNFRACR_FRACV_SHIFT | rcc.PLLNFRACR_FRACLE
	if c.io.Read(plls[pll].fracr) == fracr &&
		c.io.Read(plls[pll].cfgr2) == computeCfgr2(cfg) {
		return 1, nil
	}
	return 0, nil
}

// SetOppKHz moves the CPU to the requested operating point. It refuses to
// act, without touching any register, when the settings table is invalid or
// the MPU is not clocked from PLL1. A failed switch is rolled back to the
// previous point; if even that fails the clock tree is in an unknown state
// and we panic.
func (c *Clk) SetOppKHz(freqKHz uint32) error {
	if freqKHz == c.currentOppKHz {
		return nil
	}

	if !c.SettingsValid() {
		return fmt.Errorf("no OPP table, system stays on current operating point")
	}

	mpuSrc := c.io.Read(rcc.MPCKSELR) & rcc.SELR_SRC_MASK
	if mpuSrc != rcc.MPCKSELR_PLL && mpuSrc != rcc.MPCKSELR_PLL_MPUDIV {
		return fmt.Errorf("MPU not clocked from PLL1")
	}

	if err := c.pll1ConfigFromOppKHz(freqKHz); err != nil {
		// Restore original value
		if rerr := c.pll1ConfigFromOppKHz(c.currentOppKHz); rerr != nil {
			log.Printf("no CPU operating point can be set: %v", rerr)
			panic("CPU operating point lost")
		}
		return err
	}

	c.currentOppKHz = freqKHz
	return nil
}

// RoundOppKHz rounds freqKHz down to the nearest supported operating point.
// Without a valid table the current operating point is the only answer.
func (c *Clk) RoundOppKHz(freqKHz uint32) uint32 {
	if !c.SettingsValid() {
		return c.currentOppKHz
	}

	var round uint32
	for i := 0; i < maxOppNB; i++ {
		if c.settings.freq[i] <= freqKHz && c.settings.freq[i] > round {
			round = c.settings.freq[i]
		}
	}
	return round
}
