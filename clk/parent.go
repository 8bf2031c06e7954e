package clk

import (
	"fmt"

	"github.com/Jon-Bright/clkctl/rcc"
	"github.com/platinasystems/log"
)

func clockToParent(id ClockID) parentID {
	for p := parentID(0); p < nbParents; p++ {
		if parentClock[p] == id {
			return p
		}
	}
	return unknownParent
}

// clockParent resolves a clock to its parent: directly for clocks that are
// themselves tree points, via the gate table's fixed parent or selector
// otherwise. A clock with no tree point and no gate entry is a broken
// topology table, which is not recoverable.
func (c *Clk) clockParent(id ClockID) parentID {
	if p := clockToParent(id); p != unknownParent {
		return p
	}

	if id < 0 || id >= NbClocks {
		panic(fmt.Sprintf("invalid clock %d", id))
	}
	i := gateIndex(id)
	if i < 0 {
		panic(fmt.Sprintf("clock %d has no parent wiring", id))
	}
	g := &gates[i]

	if g.fixed != unknownParent {
		return g.fixed
	}
	if g.sel == selNone {
		return unknownParent
	}

	sel := &selectors[g.sel]
	v := (c.io.Read(sel.offset) >> sel.src) & sel.mask
	if int(v) < len(sel.parents) {
		return sel.parents[v]
	}

	log.Printf("no parent selected for clk %d", id)
	return unknownParent
}

// ParentName names the currently selected parent of id, or returns "" when
// none is known.
func (c *Clk) ParentName(id ClockID) string {
	p := c.clockParent(id)
	if p == unknownParent {
		return ""
	}
	return parentNames[p]
}

func (c *Clk) parentRate(p parentID) uint64 {
	var clock uint64

	switch p {
	case pCKMPU:
		// MPU sub system
		switch c.io.Read(rcc.MPCKSELR) & rcc.SELR_SRC_MASK {
		case rcc.MPCKSELR_HSI:
			clock = c.oscHz(OscHSI)
		case rcc.MPCKSELR_HSE:
			clock = c.oscHz(OscHSE)
		case rcc.MPCKSELR_PLL:
			clock = c.pllFreq(PLL1, divP)
		case rcc.MPCKSELR_PLL_MPUDIV:
			reg := c.io.Read(rcc.MPCKDIVR)
			if reg&rcc.MPUDIV_MASK != 0 {
				clock = c.pllFreq(PLL1, divP) >>
					mpuAPBXDiv[reg&rcc.MPUDIV_MASK]
			}
		}
	case pACLK, pHCLK2, pHCLK6, pPCLK4, pPCLK5:
		// AXI sub system
		switch c.io.Read(rcc.ASSCKSELR) & rcc.SELR_SRC_MASK {
		case 0:
			clock = c.oscHz(OscHSI)
		case 1:
			clock = c.oscHz(OscHSE)
		case 2:
			clock = c.pllFreq(PLL2, divP)
		}

		// System clock divider
		clock /= axiDiv[c.io.Read(rcc.AXIDIVR)&rcc.AXIDIV_MASK]

		switch p {
		case pPCLK4:
			clock >>= mpuAPBXDiv[c.io.Read(rcc.APB4DIVR)&rcc.APBXDIV_MASK]
		case pPCLK5:
			clock >>= mpuAPBXDiv[c.io.Read(rcc.APB5DIVR)&rcc.APBXDIV_MASK]
		}
	case pCKMCU, pPCLK1, pPCLK2, pPCLK3:
		// MCU sub system
		switch c.io.Read(rcc.MSSCKSELR) & rcc.SELR_SRC_MASK {
		case 0:
			clock = c.oscHz(OscHSI)
		case 1:
			clock = c.oscHz(OscHSE)
		case 2:
			clock = c.oscHz(OscCSI)
		case 3:
			clock = c.pllFreq(PLL3, divP)
		}

		// MCU clock divider
		clock >>= mcuDiv[c.io.Read(rcc.MCUDIVR)&rcc.MCUDIV_MASK]

		switch p {
		case pPCLK1:
			clock >>= mpuAPBXDiv[c.io.Read(rcc.APB1DIVR)&rcc.APBXDIV_MASK]
		case pPCLK2:
			clock >>= mpuAPBXDiv[c.io.Read(rcc.APB2DIVR)&rcc.APBXDIV_MASK]
		case pPCLK3:
			clock >>= mpuAPBXDiv[c.io.Read(rcc.APB3DIVR)&rcc.APBXDIV_MASK]
		}
	case pCKPer:
		switch c.io.Read(rcc.CPERCKSELR) & rcc.SELR_SRC_MASK {
		case 0:
			clock = c.oscHz(OscHSI)
		case 1:
			clock = c.oscHz(OscCSI)
		case 2:
			clock = c.oscHz(OscHSE)
		}
	case pHSI, pHSIKer:
		clock = c.oscHz(OscHSI)
	case pCSI, pCSIKer:
		clock = c.oscHz(OscCSI)
	case pHSE, pHSEKer:
		clock = c.oscHz(OscHSE)
	case pHSEKerDiv2:
		clock = c.oscHz(OscHSE) >> 1
	case pLSI:
		clock = c.oscHz(OscLSI)
	case pLSE:
		clock = c.oscHz(OscLSE)
	case pI2SCKIn:
		clock = c.oscHz(OscI2SCKIn)
	case pUSBPhy48:
		clock = c.oscHz(OscUSBPhy48)
	case pPLL1P, pPLL1Q, pPLL1R:
		clock = c.pllFreq(PLL1, divID(p-pPLL1P))
	case pPLL2P, pPLL2Q, pPLL2R:
		clock = c.pllFreq(PLL2, divID(p-pPLL2P))
	case pPLL3P, pPLL3Q, pPLL3R:
		clock = c.pllFreq(PLL3, divID(p-pPLL3P))
	case pPLL4P, pPLL4Q, pPLL4R:
		clock = c.pllFreq(PLL4, divID(p-pPLL4P))
	}

	return clock
}

// Timers run at their APB bus rate when the bus is undivided, and at twice
// the prescaled rate otherwise.
func (c *Clk) timerRate(parentRate uint64, apbBus int) uint64 {
	var apbxdiv, timgxpre uint32

	switch apbBus {
	case 1:
		apbxdiv = c.io.Read(rcc.APB1DIVR) & rcc.APBXDIV_MASK
		timgxpre = c.io.Read(rcc.TIMG1PRER) & rcc.TIMGXPRE
	case 2:
		apbxdiv = c.io.Read(rcc.APB2DIVR) & rcc.APBXDIV_MASK
		timgxpre = c.io.Read(rcc.TIMG2PRER) & rcc.TIMGXPRE
	default:
		panic(fmt.Sprintf("bad APB bus %d", apbBus))
	}

	if apbxdiv == 0 {
		return parentRate
	}
	return parentRate * uint64(timgxpre+1) * 2
}

// Rate returns the clock's frequency in Hz, 0 when its source is unknown
// or off.
func (c *Clk) Rate(id ClockID) uint64 {
	p := c.clockParent(id)
	if p == unknownParent {
		return 0
	}

	rate := c.parentRate(p)

	if id >= TIM2_K && id <= TIM14_K {
		rate = c.timerRate(rate, 1)
	}
	if id >= TIM1_K && id <= TIM17_K {
		rate = c.timerRate(rate, 2)
	}

	return rate
}

// parentOfParent is the upward step of the secure-registration walk. It
// panics on tree points the walk should never reach.
func (c *Clk) parentOfParent(p parentID) parentID {
	var pll pllID = -1
	var s selID = selNone

	switch p {
	case pACLK, pPCLK4, pPCLK5:
		s = selAXISS
	case pPLL1P, pPLL1Q, pPLL1R:
		pll = PLL1
	case pPLL2P, pPLL2Q, pPLL2R:
		pll = PLL2
	case pPLL3P, pPLL3Q, pPLL3R:
		pll = PLL3
	case pPLL4P, pPLL4Q, pPLL4R:
		pll = PLL4
	case pPCLK1, pPCLK2, pHCLK2, pHCLK6, pCKPer, pCKMPU, pCKMCU, pUSBPhy48:
		// We do not expect to access these
		panic(fmt.Sprintf("unexpected parent lookup for %s", parentNames[p]))
	default:
		// Other parents have no parent
		return unknownParent
	}

	if s != selNone {
		sel := &selectors[s]
		v := (c.io.Read(sel.offset) >> sel.src) & sel.mask
		if int(v) < len(sel.parents) {
			return sel.parents[v]
		}
	} else {
		v := c.io.Read(plls[pll].rckselr) & rcc.SELR_SRC_MASK
		if plls[pll].refclk[v] != unknownOsc {
			return parentID(plls[pll].refclk[v])
		}
	}

	log.Printf("no parent found for %s", parentNames[p])
	return unknownParent
}

// RegisterParentsSecure walks up from a secure clock and reports shared
// resources on the way. PLL3 outputs count as shared; oscillators and
// PLL1/PLL2 outputs are always secure so the walk stops there.
func (c *Clk) RegisterParentsSecure(id ClockID) {
	p := c.clockParent(id)
	if p == unknownParent {
		log.Printf("no parent for clock %d", id)
		return
	}

	visited := make(map[parentID]bool)
	for p != unknownParent && !visited[p] {
		visited[p] = true

		switch p {
		case pACLK, pHCLK2, pHCLK6, pPCLK4, pPCLK5:
			// Intermediate mux or bus clock, go deeper
		case pHSI, pHSIKer, pLSI, pCSI, pCSIKer,
			pHSE, pHSEKer, pHSEKerDiv2, pLSE,
			pPLL1P, pPLL1Q, pPLL1R, pPLL2P, pPLL2Q, pPLL2R:
			// Always secure, no need to go further
			return
		case pPLL3P, pPLL3Q, pPLL3R:
			// PLL3 is a shared resource, register and stop
			if c.securePeriph != nil {
				c.securePeriph("PLL3")
			}
			return
		default:
			panic(fmt.Sprintf("cannot lookup parent clock %s", parentNames[p]))
		}

		p = c.parentOfParent(p)
	}
}
