package clk

import (
	"github.com/Jon-Bright/clkctl/rcc"
)

// Clock identifiers, as exposed to clock consumers. The ordering is load
// bearing in three places: the first six IDs are the always-on oscillators,
// the PLL outputs form one contiguous block, and the two timer kernel clock
// groups are each contiguous so rate lookup can range-check them.
type ClockID int

const (
	CK_HSE ClockID = iota
	CK_CSI
	CK_LSI
	CK_LSE
	CK_HSI
	CK_HSE_DIV2

	// DDR interface clocks
	DDRC1
	DDRC1LP
	DDRC2
	DDRC2LP
	DDRPHYC
	DDRPHYCLP
	DDRCAPB
	DDRCAPBLP
	AXIDCG
	DDRPHYCAPB
	DDRPHYCAPBLP

	// Secure peripherals on APB5/AHB5
	SPI6_K
	I2C4_K
	I2C6_K
	USART1_K
	RTCAPB
	TZC1
	TZC2
	TZPC
	IWDG1
	BSEC
	STGEN_K
	GPIOZ
	CRYP1
	HASH1
	RNG1_K
	BKPSRAM
	MDMA
	RTC

	// Non-secure peripherals
	GPIOA
	GPIOB
	GPIOC
	GPIOD
	GPIOE
	GPIOF
	GPIOG
	GPIOH
	GPIOI
	GPIOJ
	GPIOK

	// Timers fed from APB1, kernel clocks
	TIM2_K
	TIM3_K
	TIM4_K
	TIM5_K
	TIM6_K
	TIM7_K
	TIM12_K
	TIM13_K
	TIM14_K

	// Timers fed from APB2, kernel clocks
	TIM1_K
	TIM8_K
	TIM15_K
	TIM16_K
	TIM17_K

	USART2_K
	USART3_K
	UART4_K
	UART5_K
	UART7_K
	UART8_K
	USART6_K
	SYSCFG
	DDRPERFM
	IWDG2
	LTDC_PX
	DMA1
	DMA2
	USBO_K
	SDMMC3_K
	GPU
	ETHMAC
	SDMMC1_K
	SDMMC2_K
	USBH
	CK_DBG

	// PLL outputs, one contiguous block
	PLL1_P
	PLL1_Q
	PLL1_R
	PLL2_P
	PLL2_Q
	PLL2_R
	PLL3_P
	PLL3_Q
	PLL3_R
	PLL4_P
	PLL4_Q
	PLL4_R

	// Internal tree points
	CK_AXI
	CK_MPU
	CK_MCU
	CK_PER

	NbClocks
)

const unknownClock ClockID = -1

// Oscillators feeding the tree. Rates come from the device tree.
type Osc int

const (
	OscHSI Osc = iota
	OscHSE
	OscCSI
	OscLSI
	OscLSE
	OscI2SCKIn
	OscUSBPhy48
	NbOsc
)

const unknownOsc Osc = -1

// Parent clocks. The first NbOsc values match the oscillator ordering.
type parentID int

const (
	pHSI parentID = iota
	pHSE
	pCSI
	pLSI
	pLSE
	pI2SCKIn
	pUSBPhy48
	pHSIKer
	pHSEKer
	pHSEKerDiv2
	pCSIKer
	pPLL1P
	pPLL1Q
	pPLL1R
	pPLL2P
	pPLL2Q
	pPLL2R
	pPLL3P
	pPLL3Q
	pPLL3R
	pPLL4P
	pPLL4Q
	pPLL4R
	pACLK
	pPCLK1
	pPCLK2
	pPCLK3
	pPCLK4
	pPCLK5
	pHCLK6
	pHCLK2
	pCKPer
	pCKMPU
	pCKMCU
	nbParents
)

const unknownParent parentID = -1

var parentNames = [nbParents]string{
	pHSI:        "HSI",
	pHSE:        "HSE",
	pCSI:        "CSI",
	pLSI:        "LSI",
	pLSE:        "LSE",
	pI2SCKIn:    "I2S_CKIN",
	pUSBPhy48:   "USB_PHY_48",
	pHSIKer:     "HSI_KER",
	pHSEKer:     "HSE_KER",
	pHSEKerDiv2: "HSE_KER_DIV2",
	pCSIKer:     "CSI_KER",
	pPLL1P:      "PLL1_P",
	pPLL1Q:      "PLL1_Q",
	pPLL1R:      "PLL1_R",
	pPLL2P:      "PLL2_P",
	pPLL2Q:      "PLL2_Q",
	pPLL2R:      "PLL2_R",
	pPLL3P:      "PLL3_P",
	pPLL3Q:      "PLL3_Q",
	pPLL3R:      "PLL3_R",
	pPLL4P:      "PLL4_P",
	pPLL4Q:      "PLL4_Q",
	pPLL4R:      "PLL4_R",
	pACLK:       "ACLK",
	pPCLK1:      "PCLK1",
	pPCLK2:      "PCLK2",
	pPCLK3:      "PCLK3",
	pPCLK4:      "PCLK4",
	pPCLK5:      "PCLK5",
	pHCLK6:      "HCLK6",
	pHCLK2:      "HCLK2",
	pCKPer:      "CK_PER",
	pCKMPU:      "CK_MPU",
	pCKMCU:      "CK_MCU",
}

// parentClock maps a parent back to its consumer-visible clock ID, for the
// parents that have one.
var parentClock = [nbParents]ClockID{
	pHSE:        CK_HSE,
	pHSI:        CK_HSI,
	pCSI:        CK_CSI,
	pLSE:        CK_LSE,
	pLSI:        CK_LSI,
	pI2SCKIn:    unknownClock,
	pUSBPhy48:   unknownClock,
	pHSIKer:     CK_HSI,
	pHSEKer:     CK_HSE,
	pHSEKerDiv2: CK_HSE_DIV2,
	pCSIKer:     CK_CSI,
	pPLL1P:      PLL1_P,
	pPLL1Q:      PLL1_Q,
	pPLL1R:      PLL1_R,
	pPLL2P:      PLL2_P,
	pPLL2Q:      PLL2_Q,
	pPLL2R:      PLL2_R,
	pPLL3P:      PLL3_P,
	pPLL3Q:      PLL3_Q,
	pPLL3R:      PLL3_R,
	pPLL4P:      PLL4_P,
	pPLL4Q:      PLL4_Q,
	pPLL4R:      PLL4_R,
	pACLK:       CK_AXI,
	pPCLK1:      CK_AXI,
	pPCLK2:      CK_AXI,
	pPCLK3:      CK_AXI,
	pPCLK4:      CK_AXI,
	pPCLK5:      CK_AXI,
	pHCLK6:      CK_AXI,
	pHCLK2:      CK_AXI,
	pCKPer:      CK_PER,
	pCKMPU:      CK_MPU,
	pCKMCU:      CK_MCU,
}

// Parent clock selectors.
type selID int

const (
	selSTGEN selID = iota
	selI2C46
	selSPI6
	selUSART1
	selRNG1
	selUART6
	selUART24
	selUART35
	selUART78
	selSDMMC12
	selSDMMC3
	selAXISS
	selMCUSS
	selUSBPhy
	selUSBO
	selRTC
	selMPU
	nbSel
)

const selNone selID = -1

type selector struct {
	offset  uint32
	src     uint // shift of the source field
	mask    uint32
	parents []parentID
}

// Parent lists in xxxCKSELR value ordering.
var selectors = [nbSel]selector{
	selSTGEN:   {rcc.STGENCKSELR, 0, 0x3, []parentID{pHSIKer, pHSEKer}},
	selI2C46:   {rcc.I2C46CKSELR, 0, 0x7, []parentID{pPCLK5, pPLL3Q, pHSIKer, pCSIKer}},
	selSPI6:    {rcc.SPI6CKSELR, 0, 0x7, []parentID{pPCLK5, pPLL4Q, pHSIKer, pCSIKer, pHSEKer, pPLL3Q}},
	selUSART1:  {rcc.UART1CKSELR, 0, 0x7, []parentID{pPCLK5, pPLL3Q, pHSIKer, pCSIKer, pPLL4Q, pHSEKer}},
	selRNG1:    {rcc.RNG1CKSELR, 0, 0x3, []parentID{pCSI, pPLL4R, pLSE, pLSI}},
	selRTC:     {rcc.BDCR, 16, 0x3, []parentID{unknownParent, pLSE, pLSI, pHSE}},
	selMPU:     {rcc.MPCKSELR, 0, 0x3, []parentID{pHSI, pHSE, pPLL1P, pPLL1P /* specific div */}},
	selAXISS:   {rcc.ASSCKSELR, 0, 0x3, []parentID{pHSI, pHSE, pPLL2P}},
	selMCUSS:   {rcc.MSSCKSELR, 0, 0x3, []parentID{pHSI, pHSE, pCSI, pPLL3P}},
	selUART6:   {rcc.UART6CKSELR, 0, 0x7, []parentID{pPCLK2, pPLL4Q, pHSIKer, pCSIKer, pHSEKer}},
	selUART24:  {rcc.UART24CKSELR, 0, 0x7, []parentID{pPCLK1, pPLL4Q, pHSIKer, pCSIKer, pHSEKer}},
	selUART35:  {rcc.UART35CKSELR, 0, 0x7, []parentID{pPCLK1, pPLL4Q, pHSIKer, pCSIKer, pHSEKer}},
	selUART78:  {rcc.UART78CKSELR, 0, 0x7, []parentID{pPCLK1, pPLL4Q, pHSIKer, pCSIKer, pHSEKer}},
	selSDMMC12: {rcc.SDMMC12CKSELR, 0, 0x7, []parentID{pHCLK6, pPLL3R, pPLL4P, pHSIKer}},
	selSDMMC3:  {rcc.SDMMC3CKSELR, 0, 0x7, []parentID{pHCLK2, pPLL3R, pPLL4P, pHSIKer}},
	selUSBPhy:  {rcc.USBCKSELR, 0, 0x3, []parentID{pHSEKer, pPLL4R, pHSEKerDiv2}},
	selUSBO:    {rcc.USBCKSELR, 4, 0x1, []parentID{pPLL4R, pUSBPhy48}},
}

// A gated clock. The enable bit lives at offset/bit; for setClr gates the
// matching clear register is rcc.ENCLRR_OFFSET further on. Exactly one of
// sel and fixed identifies the parent; both may be absent for clocks whose
// tree position is out of scope.
type gate struct {
	offset uint32
	bit    uint
	id     ClockID
	setClr bool
	secure bool
	sel    selID
	fixed  parentID
}

var gates = []gate{
	{rcc.DDRITFCR, 0, DDRC1, false, true, selNone, pACLK},
	{rcc.DDRITFCR, 1, DDRC1LP, false, true, selNone, pACLK},
	{rcc.DDRITFCR, 2, DDRC2, false, true, selNone, pACLK},
	{rcc.DDRITFCR, 3, DDRC2LP, false, true, selNone, pACLK},
	{rcc.DDRITFCR, 4, DDRPHYC, false, true, selNone, pPLL2R},
	{rcc.DDRITFCR, 5, DDRPHYCLP, false, true, selNone, pPLL2R},
	{rcc.DDRITFCR, 6, DDRCAPB, false, true, selNone, pPCLK4},
	{rcc.DDRITFCR, 7, DDRCAPBLP, false, true, selNone, pPCLK4},
	{rcc.DDRITFCR, 8, AXIDCG, false, true, selNone, pACLK},
	{rcc.DDRITFCR, 9, DDRPHYCAPB, false, true, selNone, pPCLK4},
	{rcc.DDRITFCR, 10, DDRPHYCAPBLP, false, true, selNone, pPCLK4},

	{rcc.MP_APB5ENSETR, 0, SPI6_K, true, true, selSPI6, unknownParent},
	{rcc.MP_APB5ENSETR, 2, I2C4_K, true, true, selI2C46, unknownParent},
	{rcc.MP_APB5ENSETR, 3, I2C6_K, true, true, selI2C46, unknownParent},
	{rcc.MP_APB5ENSETR, 4, USART1_K, true, true, selUSART1, unknownParent},
	{rcc.MP_APB5ENSETR, 8, RTCAPB, true, true, selNone, pPCLK5},
	{rcc.MP_APB5ENSETR, 11, TZC1, true, true, selNone, pPCLK5},
	{rcc.MP_APB5ENSETR, 12, TZC2, true, true, selNone, pPCLK5},
	{rcc.MP_APB5ENSETR, 13, TZPC, true, true, selNone, pPCLK5},
	{rcc.MP_APB5ENSETR, 15, IWDG1, true, true, selNone, pPCLK5},
	{rcc.MP_APB5ENSETR, 16, BSEC, true, true, selNone, pPCLK5},
	{rcc.MP_APB5ENSETR, 20, STGEN_K, true, true, selSTGEN, unknownParent},

	{rcc.MP_AHB5ENSETR, 0, GPIOZ, true, true, selNone, pPCLK5},
	{rcc.MP_AHB5ENSETR, 4, CRYP1, true, true, selNone, pPCLK5},
	{rcc.MP_AHB5ENSETR, 5, HASH1, true, true, selNone, pPCLK5},
	{rcc.MP_AHB5ENSETR, 6, RNG1_K, true, true, selRNG1, unknownParent},
	{rcc.MP_AHB5ENSETR, 8, BKPSRAM, true, true, selNone, pPCLK5},

	{rcc.MP_TZAHB6ENSETR, 0, MDMA, true, true, selNone, pPCLK5},

	{rcc.BDCR, 20, RTC, false, true, selRTC, unknownParent},

	// Non-secure clocks
	{rcc.MP_AHB4ENSETR, 0, GPIOA, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 1, GPIOB, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 2, GPIOC, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 3, GPIOD, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 4, GPIOE, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 5, GPIOF, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 6, GPIOG, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 7, GPIOH, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 8, GPIOI, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 9, GPIOJ, true, false, selNone, unknownParent},
	{rcc.MP_AHB4ENSETR, 10, GPIOK, true, false, selNone, unknownParent},

	{rcc.MP_APB1ENSETR, 6, TIM12_K, true, false, selNone, pPCLK1},
	{rcc.MP_APB1ENSETR, 14, USART2_K, true, false, selUART24, unknownParent},
	{rcc.MP_APB1ENSETR, 15, USART3_K, true, false, selUART35, unknownParent},
	{rcc.MP_APB1ENSETR, 16, UART4_K, true, false, selUART24, unknownParent},
	{rcc.MP_APB1ENSETR, 17, UART5_K, true, false, selUART35, unknownParent},
	{rcc.MP_APB1ENSETR, 18, UART7_K, true, false, selUART78, unknownParent},
	{rcc.MP_APB1ENSETR, 19, UART8_K, true, false, selUART78, unknownParent},

	{rcc.MP_APB2ENSETR, 2, TIM15_K, true, false, selNone, pPCLK2},
	{rcc.MP_APB2ENSETR, 13, USART6_K, true, false, selUART6, unknownParent},

	{rcc.MP_APB3ENSETR, 11, SYSCFG, true, false, selNone, unknownParent},
	{rcc.MP_APB4ENSETR, 8, DDRPERFM, true, false, selNone, unknownParent},
	{rcc.MP_APB4ENSETR, 15, IWDG2, true, false, selNone, unknownParent},
	{rcc.MP_APB4ENSETR, 0, LTDC_PX, true, false, selNone, unknownParent},
	{rcc.MP_AHB2ENSETR, 0, DMA1, true, false, selNone, unknownParent},
	{rcc.MP_AHB2ENSETR, 1, DMA2, true, false, selNone, unknownParent},
	{rcc.MP_AHB2ENSETR, 8, USBO_K, true, false, selUSBO, unknownParent},
	{rcc.MP_AHB2ENSETR, 16, SDMMC3_K, true, false, selSDMMC3, unknownParent},
	{rcc.MP_AHB6ENSETR, 5, GPU, true, false, selNone, unknownParent},
	{rcc.MP_AHB6ENSETR, 10, ETHMAC, true, false, selNone, pACLK},
	{rcc.MP_AHB6ENSETR, 16, SDMMC1_K, true, false, selSDMMC12, unknownParent},
	{rcc.MP_AHB6ENSETR, 17, SDMMC2_K, true, false, selSDMMC12, unknownParent},
	{rcc.MP_AHB6ENSETR, 24, USBH, true, false, selNone, unknownParent},

	{rcc.DBGCFGR, 8, CK_DBG, false, false, selNone, unknownParent},
}

// PLLs and their configuration registers.
type pllID int

const (
	PLL1 pllID = iota
	PLL2
	PLL3
	PLL4
	nbPLL
)

type pllType int

const (
	pll800 pllType = iota
	pll1600
)

// Input and VCO constraints in MHz by PLL type.
var pllTypes = [...]struct {
	refclkMin uint64
	refclkMax uint64
	divnMax   uint32
}{
	pll800:  {4, 16, 99},
	pll1600: {8, 16, 199},
}

type pllDesc struct {
	typ     pllType
	rckselr uint32
	cfgr1   uint32
	cfgr2   uint32
	fracr   uint32
	cr      uint32
	csgr    uint32
	refclk  [4]Osc
}

var plls = [nbPLL]pllDesc{
	PLL1: {pll1600, rcc.RCK12SELR, rcc.PLL1CFGR1, rcc.PLL1CFGR2,
		rcc.PLL1FRACR, rcc.PLL1CR, rcc.PLL1CSGR,
		[4]Osc{OscHSI, OscHSE, unknownOsc, unknownOsc}},
	PLL2: {pll1600, rcc.RCK12SELR, rcc.PLL2CFGR1, rcc.PLL2CFGR2,
		rcc.PLL2FRACR, rcc.PLL2CR, rcc.PLL2CSGR,
		[4]Osc{OscHSI, OscHSE, unknownOsc, unknownOsc}},
	PLL3: {pll800, rcc.RCK3SELR, rcc.PLL3CFGR1, rcc.PLL3CFGR2,
		rcc.PLL3FRACR, rcc.PLL3CR, rcc.PLL3CSGR,
		[4]Osc{OscHSI, OscHSE, OscCSI, unknownOsc}},
	PLL4: {pll800, rcc.RCK4SELR, rcc.PLL4CFGR1, rcc.PLL4CFGR2,
		rcc.PLL4FRACR, rcc.PLL4CR, rcc.PLL4CSGR,
		[4]Osc{OscHSI, OscHSE, OscCSI, OscI2SCKIn}},
}

// CFGR2 shift per PLL output divider.
var pllCfgr2Shift = [3]uint{
	divP: rcc.PLLNCFGR2_DIVP_SHIFT,
	divQ: rcc.PLLNCFGR2_DIVQ_SHIFT,
	divR: rcc.PLLNCFGR2_DIVR_SHIFT,
}

type divID int

const (
	divP divID = iota
	divQ
	divR
	nbDiv
)

// Prescaler lookups. Register field value to shift (or divisor for AXI).

// div = /1 /2 /4 /8 /16 /64 /128 /512
var mcuDiv = [16]uint{0, 1, 2, 3, 4, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9}

// div = /1 /2 /4 /8 /16, same table for the MPU and APBx dividers
var mpuAPBXDiv = [8]uint{0, 1, 2, 3, 4, 4, 4, 4}

// div = /1 /2 /3 /4
var axiDiv = [8]uint64{1, 2, 3, 4, 4, 4, 4, 4}
