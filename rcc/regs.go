package rcc

// Register offsets within the RCC block. The block is split in two: the
// lower half (below 0x800) is only writable by the secure world once TZEN
// is set, the upper half is always accessible.
const (
	TZCR           = 0x00
	OCENSETR       = 0x0C
	OCENCLRR       = 0x10
	HSICFGR        = 0x18
	MPCKSELR       = 0x20
	ASSCKSELR      = 0x24
	RCK12SELR      = 0x28
	MPCKDIVR       = 0x2C
	AXIDIVR        = 0x30
	APB4DIVR       = 0x3C
	APB5DIVR       = 0x40
	RTCDIVR        = 0x44
	MSSCKSELR      = 0x48
	PLL1CR         = 0x80
	PLL1CFGR1      = 0x84
	PLL1CFGR2      = 0x88
	PLL1FRACR      = 0x8C
	PLL1CSGR       = 0x90
	PLL2CR         = 0x94
	PLL2CFGR1      = 0x98
	PLL2CFGR2      = 0x9C
	PLL2FRACR      = 0xA0
	PLL2CSGR       = 0xA4
	I2C46CKSELR    = 0xC0
	SPI6CKSELR     = 0xC4
	UART1CKSELR    = 0xC8
	RNG1CKSELR     = 0xCC
	CPERCKSELR     = 0xD0
	STGENCKSELR    = 0xD4
	DDRITFCR       = 0xD8
	MP_BOOTCR      = 0x100
	MP_SREQSETR    = 0x104
	MP_SREQCLRR    = 0x108
	MP_GCR         = 0x10C
	MP_APRSTCR     = 0x110
	MP_APRSTSR     = 0x114
	BDCR           = 0x140
	RDLSICR        = 0x144
	APB4RSTSETR    = 0x180
	APB4RSTCLRR    = 0x184
	APB5RSTSETR    = 0x188
	APB5RSTCLRR    = 0x18C
	AHB5RSTSETR    = 0x190
	AHB5RSTCLRR    = 0x194
	AHB6RSTSETR    = 0x198
	AHB6RSTCLRR    = 0x19C
	MP_APB4ENSETR  = 0x200
	MP_APB4ENCLRR  = 0x204
	MP_APB5ENSETR  = 0x208
	MP_APB5ENCLRR  = 0x20C
	MP_AHB5ENSETR  = 0x210
	MP_AHB5ENCLRR  = 0x214
	MP_AHB6ENSETR  = 0x218
	MP_AHB6ENCLRR  = 0x21C

	MP_TZAHB6ENSETR = 0x220
	MP_TZAHB6ENCLRR = 0x224

	MP_GRSTCSETR   = 0x404
	MP_RSTSCLRR    = 0x408
	MP_CIER        = 0x414
	MP_CIFR        = 0x418
	MCO1CFGR       = 0x800
	MCO2CFGR       = 0x804
	OCRDYR         = 0x808
	DBGCFGR        = 0x80C
	RCK3SELR       = 0x820
	RCK4SELR       = 0x824
	TIMG1PRER      = 0x828
	TIMG2PRER      = 0x82C
	MCUDIVR        = 0x830
	APB1DIVR       = 0x834
	APB2DIVR       = 0x838
	APB3DIVR       = 0x83C
	PLL3CR         = 0x880
	PLL3CFGR1      = 0x884
	PLL3CFGR2      = 0x888
	PLL3FRACR      = 0x88C
	PLL3CSGR       = 0x890
	PLL4CR         = 0x894
	PLL4CFGR1      = 0x898
	PLL4CFGR2      = 0x89C
	PLL4FRACR      = 0x8A0
	PLL4CSGR       = 0x8A4
	I2C12CKSELR    = 0x8C0
	I2C35CKSELR    = 0x8C4
	SAI1CKSELR     = 0x8C8
	SAI2CKSELR     = 0x8CC
	SAI3CKSELR     = 0x8D0
	SAI4CKSELR     = 0x8D4
	SPI2S1CKSELR   = 0x8D8
	SPI2S23CKSELR  = 0x8DC
	SPI45CKSELR    = 0x8E0
	UART6CKSELR    = 0x8E4
	UART24CKSELR   = 0x8E8
	UART35CKSELR   = 0x8EC
	UART78CKSELR   = 0x8F0
	SDMMC12CKSELR  = 0x8F4
	SDMMC3CKSELR   = 0x8F8
	ETHCKSELR      = 0x8FC
	QSPICKSELR     = 0x900
	FMCCKSELR      = 0x904
	FDCANCKSELR    = 0x90C
	SPDIFCKSELR    = 0x914
	CECCKSELR      = 0x918
	USBCKSELR      = 0x91C
	RNG2CKSELR     = 0x920
	DSICKSELR      = 0x924
	ADCCKSELR      = 0x928
	LPTIM45CKSELR  = 0x92C
	LPTIM23CKSELR  = 0x930
	LPTIM1CKSELR   = 0x934
	MP_APB1ENSETR  = 0xA00
	MP_APB1ENCLRR  = 0xA04
	MP_APB2ENSETR  = 0xA08
	MP_APB2ENCLRR  = 0xA0C
	MP_APB3ENSETR  = 0xA10
	MP_APB3ENCLRR  = 0xA14
	MP_AHB2ENSETR  = 0xA18
	MP_AHB2ENCLRR  = 0xA1C
	MP_AHB3ENSETR  = 0xA20
	MP_AHB3ENCLRR  = 0xA24
	MP_AHB4ENSETR  = 0xA28
	MP_AHB4ENCLRR  = 0xA2C
	MP_MLAHBENSETR = 0xA38
	MP_MLAHBENCLRR = 0xA3C
)

// An ENCLRR register always sits 4 bytes after its ENSETR.
const ENCLRR_OFFSET = 4

// TZCR
const (
	TZCR_TZEN    = 1 << 0
	TZCR_MCKPROT = 1 << 1
)

// OCENSETR / OCENCLRR
const (
	OCEN_HSION    = 1 << 0
	OCEN_HSIKERON = 1 << 1
	OCEN_CSION    = 1 << 4
	OCEN_CSIKERON = 1 << 5
	OCEN_DIGBYP   = 1 << 7
	OCEN_HSEON    = 1 << 8
	OCEN_HSEKERON = 1 << 9
	OCEN_HSEBYP   = 1 << 10
)

// PLLnCR
const (
	PLLNCR_PLLON       = 1 << 0
	PLLNCR_PLLRDY      = 1 << 1
	PLLNCR_SSCG_CTRL   = 1 << 2
	PLLNCR_DIVPEN      = 1 << 4
	PLLNCR_DIVQEN      = 1 << 5
	PLLNCR_DIVREN      = 1 << 6
	PLLNCR_DIVEN_SHIFT = 4
)

// PLLnCFGR1
const (
	PLLNCFGR1_DIVN_MASK   = 0x1FF
	PLLNCFGR1_DIVM_SHIFT  = 16
	PLLNCFGR1_DIVM_MASK   = 0x3F << 16
	PLLNCFGR1_IFRGE_SHIFT = 24
	PLLNCFGR1_IFRGE_MASK  = 0x3 << 24
)

// PLLnCFGR2
const (
	PLLNCFGR2_DIVX_MASK  = 0x7F
	PLLNCFGR2_DIVP_SHIFT = 0
	PLLNCFGR2_DIVQ_SHIFT = 8
	PLLNCFGR2_DIVR_SHIFT = 16
)

// PLLnFRACR
const (
	PLLNFRACR_FRACV_SHIFT = 3
	PLLNFRACR_FRACV_MASK  = 0x1FFF << 3
	PLLNFRACR_FRACLE      = 1 << 16
)

// PLLnCSGR
const (
	PLLNCSGR_MOD_PER_MASK   = 0x1FFF
	PLLNCSGR_INC_STEP_SHIFT = 16
	PLLNCSGR_INC_STEP_MASK  = 0x7FFF << 16
	PLLNCSGR_SSCG_MODE      = 1 << 15
	PLLNCSGR_RPDFN_DIS      = 1 << 13
	PLLNCSGR_TPDFN_DIS      = 1 << 14
)

// Clock source selection registers (xxCKSELR)
const (
	SELR_SRC_MASK = 0x3
	SELR_SRCRDY   = 1 << 31
)

// Divider registers (xxDIVR)
const (
	DIVR_DIV_MASK = 0x3F
	DIVR_DIVRDY   = 1 << 31
)

// MPCKSELR source values
const (
	MPCKSELR_HSI        = 0
	MPCKSELR_HSE        = 1
	MPCKSELR_PLL        = 2
	MPCKSELR_PLL_MPUDIV = 3
)

// Per-divider field widths
const (
	MPUDIV_MASK  = 0x7
	AXIDIV_MASK  = 0x7
	APBXDIV_MASK = 0x7
	MCUDIV_MASK  = 0xF
)

// TIMGxPRER
const TIMGXPRE = 1 << 0

// RCC_MP_CIER / RCC_MP_CIFR
const MP_CIFR_WKUPF = 1 << 20

// RCC_MP_GCR
const MP_GCR_BOOT_MCU = 1 << 0

// RCC_BDCR
const (
	BDCR_LSEON       = 1 << 0
	BDCR_LSERDY      = 1 << 2
	BDCR_RTCSRC_MASK = 0x3 << 16
)

// RCC_RDLSICR
const (
	RDLSICR_LSION  = 1 << 0
	RDLSICR_LSIRDY = 1 << 1
)

// RCC_OCRDYR
const (
	OCRDYR_HSIRDY    = 1 << 0
	OCRDYR_HSIDIVRDY = 1 << 2
	OCRDYR_CSIRDY    = 1 << 4
	OCRDYR_HSERDY    = 1 << 8
)

// RCC_DDRITFCR
const (
	DDRITFCR_DDRCKMOD_MASK = 0x7 << 20
	DDRITFCR_DDRCKMOD_SSR  = 0
)
