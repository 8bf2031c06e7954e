// Package clk manages the RCC clock tree of an STM32MP15: gated peripheral
// clocks with refcounting, the four PLLs, CPU operating point switching and
// suspend/resume state handling.
package clk

import (
	"sync"

	"github.com/Jon-Bright/clkctl/rcc"
	"github.com/platinasystems/log"
)

// RegIO is the register access needed from the RCC block. rcc.Mem satisfies
// it; tests use a RAM-backed fake.
type RegIO interface {
	Read(offs uint32) uint32
	Write(offs, val uint32)
	SetBits(offs, mask uint32)
	ClrBits(offs, mask uint32)
	ClrSetBits(offs, mask, val uint32)
}

// OPP is one CPU operating point from the device tree.
type OPP struct {
	FreqKHz uint32
	VoltMV  uint32
}

// Config carries the boot-time inputs, normally parsed from the device tree
// by the dtb package.
type Config struct {
	OscHz [NbOsc]uint64
	// Secure is whether the RCC is TrustZone-protected. When false all
	// gates behave as non-secure: no refcounting, disable is a no-op.
	Secure bool
	// SecurePeriph, if non-nil, is invoked when a secure clock turns out
	// to depend on a shared resource (PLL3).
	SecurePeriph func(name string)
	// SMP keeps the RTC APB clock running for secondary cores.
	SMP bool
	// IgnoredCfg names clock tree configuration directives from the
	// device tree that Probe reports and skips.
	IgnoredCfg []string
}

type Clk struct {
	io           RegIO
	osc          [NbOsc]uint64
	secure       bool
	securePeriph func(name string)
	smp          bool
	ignoredCfg   []string

	mu        sync.Mutex
	refcounts []uint32

	settings      pll1Settings
	currentOppKHz uint32

	stopCtx stopContext
	backup  backupState
}

// New wires up a clock controller. It performs no register access; call
// Probe to run the startup sequence.
func New(io RegIO, cfg *Config) *Clk {
	return &Clk{
		io:           io,
		osc:          cfg.OscHz,
		secure:       cfg.Secure,
		securePeriph: cfg.SecurePeriph,
		smp:          cfg.SMP,
		ignoredCfg:   cfg.IgnoredCfg,
		refcounts:    make([]uint32, len(gates)),
	}
}

// Probe runs the startup sequence: TrustZone state, static secure clock
// enabling, recording the boot operating point and scrubbing stale
// non-secure RCC state.
func (c *Clk) Probe() {
	c.earlyInit()
	c.enableStaticSecureClocks()
	c.saveCurrentOPP()
	c.initNonSecureRCC()
}

// earlyInit brings the RCC TrustZone bit in line with the device tree.
// Clock parenthood was set up by the earlier boot stages; reconfiguring it
// here could break already running clocks, so device tree directives asking
// for that are reported and skipped.
func (c *Clk) earlyInit() {
	if c.secure {
		c.io.SetBits(rcc.TZCR, rcc.TZCR_TZEN)
	} else {
		c.io.ClrBits(rcc.TZCR, rcc.TZCR_TZEN)
		log.Printf("RCC is non-secure")
	}
	for _, name := range c.ignoredCfg {
		log.Printf("ignoring %s clock configuration from DT", name)
	}
}

func (c *Clk) oscHz(o Osc) uint64 {
	if o < 0 || o >= NbOsc {
		log.Printf("osc %d not found", o)
		return 0
	}
	return c.osc[o]
}

// Clocks feeding the DDR and the TrustZone infrastructure stay on for the
// platform's lifetime.
var staticSecureClocks = []ClockID{
	DDRC1, DDRC1LP, DDRC2, DDRC2LP, DDRPHYC, DDRPHYCLP, DDRCAPB,
	AXIDCG, DDRPHYCAPB, DDRPHYCAPBLP, TZPC, TZC1, TZC2, STGEN_K,
	BSEC,
}

func (c *Clk) enableStaticSecureClocks() {
	for _, id := range staticSecureClocks {
		c.Enable(id)
		c.RegisterParentsSecure(id)
	}
	if c.smp {
		c.Enable(RTCAPB)
	}
}

const (
	cifrAllFlags  = 0x110F1F
	sreqAllClears = 0x3
)

// initNonSecureRCC clears interrupt flags and core stop requests left over
// from a previous boot stage.
func (c *Clk) initNonSecureRCC() {
	c.io.Write(rcc.MP_CIFR, cifrAllFlags)
	c.io.Write(rcc.MP_SREQCLRR, sreqAllClears)
}

func gateIndex(id ClockID) int {
	for i := range gates {
		if gates[i].id == id {
			return i
		}
	}
	log.Printf("clk id %d not found", id)
	return -1
}

func clockIsAlwaysOn(id ClockID) bool {
	if id <= CK_HSE_DIV2 || (id >= PLL1_P && id <= PLL3_R) {
		return true
	}
	switch id {
	case CK_AXI, CK_MPU, CK_MCU:
		return true
	}
	return false
}
