package clk

import (
	"encoding/binary"

	"github.com/Jon-Bright/clkctl/rcc"
	"github.com/platinasystems/log"
)

// Context for SoC stop mode: only the MCU subsystem and PLL3/PLL4 lose
// state there.
type stopContext struct {
	pll3cr    uint32
	pll4cr    uint32
	mssckselr uint32
	mcudivr   uint32
}

func (c *Clk) savePLL34State() {
	c.stopCtx.pll3cr = c.io.Read(rcc.PLL3CR)
	c.stopCtx.pll4cr = c.io.Read(rcc.PLL4CR)
}

func (c *Clk) saveMCUSubsysClocks() {
	c.stopCtx.mssckselr = c.io.Read(rcc.MSSCKSELR)
	c.stopCtx.mcudivr = c.io.Read(rcc.MCUDIVR) & rcc.MCUDIV_MASK
}

func (c *Clk) restorePLL34State() {
	// Let PLL4 start while we're starting and waiting for PLL3
	if c.stopCtx.pll4cr&rcc.PLLNCR_PLLON != 0 {
		c.pllStart(PLL4)
	}

	if c.stopCtx.pll3cr&rcc.PLLNCR_PLLON != 0 {
		c.pllStart(PLL3)
		if err := c.pllOutput(PLL3, c.stopCtx.pll3cr>>rcc.PLLNCR_DIVEN_SHIFT); err != nil {
			log.Printf("failed to restore PLL3: %v", err)
			panic("PLL3 restore")
		}
	}

	if c.stopCtx.pll4cr&rcc.PLLNCR_PLLON != 0 {
		if err := c.pllOutput(PLL4, c.stopCtx.pll4cr>>rcc.PLLNCR_DIVEN_SHIFT); err != nil {
			log.Printf("failed to restore PLL4: %v", err)
			panic("PLL4 restore")
		}
	}
}

func (c *Clk) restoreMCUSubsysClocks() {
	c.io.Write(rcc.MSSCKSELR, c.stopCtx.mssckselr)

	if err := c.setClkDiv(c.stopCtx.mcudivr, rcc.MCUDIVR); err != nil {
		log.Printf("failed to restore MCUDIVR: %v", err)
		panic("MCUDIVR restore")
	}
}

// SaveContextForStop prepares for SoC stop mode: the kernel oscillator
// clocks keep peripherals alive while the cores are down.
func (c *Clk) SaveContextForStop() {
	c.enableKernelClocks()
	c.saveMCUSubsysClocks()
	c.savePLL34State()
}

// RestoreContextForStop undoes SaveContextForStop. The MCU clock source is
// restored only after PLL3 is ready.
func (c *Clk) RestoreContextForStop() {
	c.restorePLL34State()
	c.restoreMCUSubsysClocks()
	c.disableKernelClocks()
}

// MCUSSProtect sets or clears TrustZone protection of the MCU subsystem
// clocks.
func (c *Clk) MCUSSProtect(enable bool) {
	if enable {
		c.io.SetBits(rcc.TZCR, rcc.TZCR_MCKPROT)
	} else {
		c.io.ClrBits(rcc.TZCR, rcc.TZCR_MCKPROT)
	}
}

// Full suspend needs the non-secure configuration back too. Restoring
// clocks and muxes needs the peripherals to run on kernel clocks, so the
// restore happens with secure access before the kernel clocks go off again.

type muxCfg struct {
	offset uint32
	bitLen uint
}

// Kernel clock muxes, saved from bit 0.
var backupMux0 = []muxCfg{
	{rcc.SDMMC12CKSELR, 3},
	{rcc.SPI2S23CKSELR, 3},
	{rcc.SPI45CKSELR, 3},
	{rcc.I2C12CKSELR, 3},
	{rcc.I2C35CKSELR, 3},
	{rcc.LPTIM23CKSELR, 3},
	{rcc.LPTIM45CKSELR, 3},
	{rcc.UART24CKSELR, 3},
	{rcc.UART35CKSELR, 3},
	{rcc.UART78CKSELR, 3},
	{rcc.SAI1CKSELR, 3},
	{rcc.ETHCKSELR, 2},
	{rcc.I2C46CKSELR, 3},
	{rcc.RNG2CKSELR, 2},
	{rcc.SDMMC3CKSELR, 3},
	{rcc.FMCCKSELR, 2},
	{rcc.QSPICKSELR, 2},
	{rcc.USBCKSELR, 2},
	{rcc.SPDIFCKSELR, 2},
	{rcc.SPI2S1CKSELR, 3},
	{rcc.CECCKSELR, 2},
	{rcc.LPTIM1CKSELR, 3},
	{rcc.UART6CKSELR, 3},
	{rcc.FDCANCKSELR, 2},
	{rcc.SAI2CKSELR, 3},
	{rcc.SAI3CKSELR, 3},
	{rcc.SAI4CKSELR, 3},
	{rcc.ADCCKSELR, 2},
	{rcc.DSICKSELR, 1},
	{rcc.CPERCKSELR, 2},
	{rcc.RNG1CKSELR, 2},
	{rcc.STGENCKSELR, 2},
	{rcc.UART1CKSELR, 3},
	{rcc.SPI6CKSELR, 3},
}

// Muxes whose field starts at bit 4.
var backupMux4 = []muxCfg{
	{rcc.USBCKSELR, 1},
}

// Set/clear gating registers: restored by writing the saved value to the
// SET register and its complement to the CLR register.
var backupSCOffsets = []uint32{
	rcc.MP_APB1ENSETR,
	rcc.MP_APB2ENSETR,
	rcc.MP_APB3ENSETR,
	rcc.MP_APB4ENSETR,
	rcc.MP_APB5ENSETR,
	rcc.MP_AHB2ENSETR,
	rcc.MP_AHB3ENSETR,
	rcc.MP_AHB4ENSETR,
	rcc.MP_AHB5ENSETR,
	rcc.MP_AHB6ENSETR,
	rcc.MP_MLAHBENSETR,
}

// Regular full-write registers.
var backupRegOffsets = []uint32{
	rcc.TZCR,
	rcc.MCO1CFGR,
	rcc.MCO2CFGR,
	rcc.PLL3CR,
	rcc.PLL4CR,
	rcc.PLL4CFGR2,
	rcc.MCUDIVR,
	rcc.MSSCKSELR,
}

type backupState struct {
	mux0 []uint32
	mux4 []uint32
	sc   []uint32
	reg  []uint32
}

func lowMask(bits uint) uint32 {
	return uint32(1)<<bits - 1
}

func (c *Clk) backupMuxCfg() {
	c.backup.mux0 = make([]uint32, len(backupMux0))
	for i, m := range backupMux0 {
		c.backup.mux0[i] = c.io.Read(m.offset) & lowMask(m.bitLen)
	}
	c.backup.mux4 = make([]uint32, len(backupMux4))
	for i, m := range backupMux4 {
		c.backup.mux4[i] = c.io.Read(m.offset) & (lowMask(m.bitLen) << 4)
	}
}

func (c *Clk) restoreMuxCfg() {
	for i, m := range backupMux0 {
		c.io.ClrSetBits(m.offset, lowMask(m.bitLen), c.backup.mux0[i])
	}
	for i, m := range backupMux4 {
		c.io.ClrSetBits(m.offset, lowMask(m.bitLen)<<4, c.backup.mux4[i])
	}
}

func (c *Clk) backupSCCfg() {
	c.backup.sc = make([]uint32, len(backupSCOffsets))
	for i, offset := range backupSCOffsets {
		c.backup.sc[i] = c.io.Read(offset)
	}
}

func (c *Clk) restoreSCCfg() {
	for i, offset := range backupSCOffsets {
		c.io.Write(offset, c.backup.sc[i])
		c.io.Write(offset+rcc.ENCLRR_OFFSET, ^c.backup.sc[i])
	}
}

func (c *Clk) backupRegularCfg() {
	c.backup.reg = make([]uint32, len(backupRegOffsets))
	for i, offset := range backupRegOffsets {
		c.backup.reg[i] = c.io.Read(offset)
	}
}

func (c *Clk) restoreRegularCfg() {
	for i, offset := range backupRegOffsets {
		c.io.Write(offset, c.backup.reg[i])
	}
}

const kerMask = rcc.OCEN_HSIKERON | rcc.OCEN_CSIKERON | rcc.OCEN_HSEKERON

func (c *Clk) disableKernelClocks() {
	// Disable all ck_xxx_ker clocks
	c.io.Write(rcc.OCENCLRR, kerMask)
}

func (c *Clk) enableKernelClocks() {
	// Enable ck_xxx_ker clocks if ck_xxx was on
	reg := c.io.Read(rcc.OCENSETR) << 1
	c.io.Write(rcc.OCENSETR, reg&kerMask)
}

func (c *Clk) clearResetStatus() {
	c.io.Write(rcc.MP_RSTSCLRR, 0)
}

// Suspend snapshots all RCC state that a full suspend loses.
func (c *Clk) Suspend() {
	c.backupRegularCfg()
	c.backupSCCfg()
	c.backupMuxCfg()
	c.savePLL34State()

	c.enableKernelClocks()
	c.clearResetStatus()
}

// Resume puts the snapshot back and re-syncs the physical gate state of
// secure clocks against their refcounts.
func (c *Clk) Resume() {
	c.restorePLL34State()
	c.restoreMuxCfg()
	c.restoreSCCfg()
	c.restoreRegularCfg()

	c.mu.Lock()
	for i := range gates {
		g := &gates[i]
		if c.gateNonSecure(g) {
			continue
		}
		if c.refcounts[i] != 0 {
			log.Printf("force clock %d enable", g.id)
			c.gateEnable(g)
		} else {
			log.Printf("force clock %d disable", g.id)
			c.gateDisable(g)
		}
	}
	c.mu.Unlock()

	c.disableKernelClocks()
}

// PMOp selects the power-management transition for PMCallback.
type PMOp int

const (
	PMSuspend PMOp = iota
	PMResume
)

func (c *Clk) PMCallback(op PMOp) {
	if op == PMSuspend {
		c.Suspend()
	} else {
		c.Resume()
	}
}

// SaveOppSettings exports the computed operating point table as raw 32bit
// little-endian cells for low-power firmware. Panics when the table was
// never computed.
func (c *Clk) SaveOppSettings() []byte {
	if !c.SettingsValid() {
		panic("OPP settings not valid")
	}

	s := &c.settings
	out := make([]byte, 0, 4*(1+maxOppNB*(2+6+1)))
	put := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		out = append(out, b[:]...)
	}

	put(s.validID)
	for _, f := range s.freq {
		put(f)
	}
	for _, v := range s.volt {
		put(v)
	}
	for i := range s.cfg {
		put(s.cfg[i].M)
		put(s.cfg[i].N)
		put(s.cfg[i].P)
		put(s.cfg[i].Q)
		put(s.cfg[i].R)
		put(s.cfg[i].O)
	}
	for _, f := range s.frac {
		put(f)
	}
	return out
}
