package clk

import (
	"fmt"

	"github.com/Jon-Bright/clkctl/rcc"
	"github.com/platinasystems/log"
)

// A gate is treated as non-secure either because its table entry says so or
// because the whole RCC runs without TrustZone protection.
func (c *Clk) gateNonSecure(g *gate) bool {
	return !g.secure || !c.secure
}

func (c *Clk) gateEnable(g *gate) {
	bit := uint32(1) << g.bit
	if g.setClr {
		c.io.Write(g.offset, bit)
	} else {
		c.io.SetBits(g.offset, bit)
	}
	log.Printf("clock %d enabled", g.id)
}

func (c *Clk) gateDisable(g *gate) {
	bit := uint32(1) << g.bit
	if g.setClr {
		c.io.Write(g.offset+rcc.ENCLRR_OFFSET, bit)
	} else {
		c.io.ClrBits(g.offset, bit)
	}
	log.Printf("clock %d disabled", g.id)
}

func (c *Clk) gateIsEnabled(g *gate) bool {
	return c.io.Read(g.offset)&(uint32(1)<<g.bit) != 0
}

// Enable turns a clock on. Secure gates are refcounted: the first Enable
// sets the bit, later ones only count. Enabling an unknown clock is a
// programming error and panics.
func (c *Clk) Enable(id ClockID) {
	if clockIsAlwaysOn(id) {
		return
	}
	i := gateIndex(id)
	if i < 0 {
		panic(fmt.Sprintf("invalid clock %d", id))
	}
	g := &gates[i]
	if c.gateNonSecure(g) {
		// Enable non-secure clock w/o any refcounting
		c.gateEnable(g)
		return
	}

	c.mu.Lock()
	if c.refcounts[i] == 0 {
		c.gateEnable(g)
	}
	c.refcounts[i]++
	c.mu.Unlock()
}

// Disable undoes one Enable. The bit is only cleared when the count drops
// to zero. Disabling a clock that was never enabled panics.
func (c *Clk) Disable(id ClockID) {
	if clockIsAlwaysOn(id) {
		return
	}
	i := gateIndex(id)
	if i < 0 {
		panic(fmt.Sprintf("invalid clock %d", id))
	}
	g := &gates[i]
	if c.gateNonSecure(g) {
		// Don't disable non-secure clocks
		return
	}

	c.mu.Lock()
	if c.refcounts[i] == 0 {
		c.mu.Unlock()
		panic(fmt.Sprintf("unbalanced disable of clock %d", id))
	}
	c.refcounts[i]--
	if c.refcounts[i] == 0 {
		c.gateDisable(g)
	}
	c.mu.Unlock()
}

// HasGate reports whether Enable and Disable accept this clock.
func HasGate(id ClockID) bool {
	return clockIsAlwaysOn(id) || gateIndex(id) >= 0
}

// IsEnabled reports the physical gate state. Always-on clocks report true,
// unknown clocks false.
func (c *Clk) IsEnabled(id ClockID) bool {
	if clockIsAlwaysOn(id) {
		return true
	}
	i := gateIndex(id)
	if i < 0 {
		return false
	}
	return c.gateIsEnabled(&gates[i])
}
