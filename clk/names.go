package clk

import (
	"strings"
)

var clockNames = [NbClocks]string{
	CK_HSE:       "CK_HSE",
	CK_CSI:       "CK_CSI",
	CK_LSI:       "CK_LSI",
	CK_LSE:       "CK_LSE",
	CK_HSI:       "CK_HSI",
	CK_HSE_DIV2:  "CK_HSE_DIV2",
	DDRC1:        "DDRC1",
	DDRC1LP:      "DDRC1LP",
	DDRC2:        "DDRC2",
	DDRC2LP:      "DDRC2LP",
	DDRPHYC:      "DDRPHYC",
	DDRPHYCLP:    "DDRPHYCLP",
	DDRCAPB:      "DDRCAPB",
	DDRCAPBLP:    "DDRCAPBLP",
	AXIDCG:       "AXIDCG",
	DDRPHYCAPB:   "DDRPHYCAPB",
	DDRPHYCAPBLP: "DDRPHYCAPBLP",
	SPI6_K:       "SPI6_K",
	I2C4_K:       "I2C4_K",
	I2C6_K:       "I2C6_K",
	USART1_K:     "USART1_K",
	RTCAPB:       "RTCAPB",
	TZC1:         "TZC1",
	TZC2:         "TZC2",
	TZPC:         "TZPC",
	IWDG1:        "IWDG1",
	BSEC:         "BSEC",
	STGEN_K:      "STGEN_K",
	GPIOZ:        "GPIOZ",
	CRYP1:        "CRYP1",
	HASH1:        "HASH1",
	RNG1_K:       "RNG1_K",
	BKPSRAM:      "BKPSRAM",
	MDMA:         "MDMA",
	RTC:          "RTC",
	GPIOA:        "GPIOA",
	GPIOB:        "GPIOB",
	GPIOC:        "GPIOC",
	GPIOD:        "GPIOD",
	GPIOE:        "GPIOE",
	GPIOF:        "GPIOF",
	GPIOG:        "GPIOG",
	GPIOH:        "GPIOH",
	GPIOI:        "GPIOI",
	GPIOJ:        "GPIOJ",
	GPIOK:        "GPIOK",
	TIM2_K:       "TIM2_K",
	TIM3_K:       "TIM3_K",
	TIM4_K:       "TIM4_K",
	TIM5_K:       "TIM5_K",
	TIM6_K:       "TIM6_K",
	TIM7_K:       "TIM7_K",
	TIM12_K:      "TIM12_K",
	TIM13_K:      "TIM13_K",
	TIM14_K:      "TIM14_K",
	TIM1_K:       "TIM1_K",
	TIM8_K:       "TIM8_K",
	TIM15_K:      "TIM15_K",
	TIM16_K:      "TIM16_K",
	TIM17_K:      "TIM17_K",
	USART2_K:     "USART2_K",
	USART3_K:     "USART3_K",
	UART4_K:      "UART4_K",
	UART5_K:      "UART5_K",
	UART7_K:      "UART7_K",
	UART8_K:      "UART8_K",
	USART6_K:     "USART6_K",
	SYSCFG:       "SYSCFG",
	DDRPERFM:     "DDRPERFM",
	IWDG2:        "IWDG2",
	LTDC_PX:      "LTDC_PX",
	DMA1:         "DMA1",
	DMA2:         "DMA2",
	USBO_K:       "USBO_K",
	SDMMC3_K:     "SDMMC3_K",
	GPU:          "GPU",
	ETHMAC:       "ETHMAC",
	SDMMC1_K:     "SDMMC1_K",
	SDMMC2_K:     "SDMMC2_K",
	USBH:         "USBH",
	CK_DBG:       "CK_DBG",
	PLL1_P:       "PLL1_P",
	PLL1_Q:       "PLL1_Q",
	PLL1_R:       "PLL1_R",
	PLL2_P:       "PLL2_P",
	PLL2_Q:       "PLL2_Q",
	PLL2_R:       "PLL2_R",
	PLL3_P:       "PLL3_P",
	PLL3_Q:       "PLL3_Q",
	PLL3_R:       "PLL3_R",
	PLL4_P:       "PLL4_P",
	PLL4_Q:       "PLL4_Q",
	PLL4_R:       "PLL4_R",
	CK_AXI:       "CK_AXI",
	CK_MPU:       "CK_MPU",
	CK_MCU:       "CK_MCU",
	CK_PER:       "CK_PER",
}

// Name returns the consumer-visible name of a clock.
func (id ClockID) Name() string {
	if id < 0 || id >= NbClocks {
		return "UNKNOWN"
	}
	return clockNames[id]
}

// ByName resolves a clock name, case-insensitively. Returns false for
// names that aren't clocks.
func ByName(name string) (ClockID, bool) {
	name = strings.ToUpper(name)
	for id, n := range clockNames {
		if n == name {
			return ClockID(id), true
		}
	}
	return unknownClock, false
}
