package clk

import (
	"fmt"
	"math"
)

// PLL1 divider search bounds. The reference clock after DIVM must land in
// an 8-16 MHz window and the VCO in 800-1600 MHz (the PLL1 hardware reports
// VCO/2, so the comparisons below use the halved window).
const (
	divmMin = 0
	divmMax = 63
	divnMin = 24
	divnMax = 99
	divpMin = 0
	divpMax = 127

	fracMax = 8192

	postDivmMin = 8000000
	postDivmMax = 16000000

	vcoMin = 800000000
	vcoMax = 1600000000
)

// computePLL1Settings finds the DIVM/DIVN/DIVP/FRACV combination whose PLL1
// P output comes closest to freqKHz from the given input frequency. DIVM is
// scanned from largest to smallest and DIVP upward, so among equally good
// solutions the one with the largest M and smallest P wins. An exact match
// returns immediately.
func computePLL1Settings(inputFreq uint64, freqKHz uint32) (pllCfg, uint32, error) {
	outputFreq := uint64(freqKHz) * 1000
	best := pllCfg{
		// Q and R are unused on PLL1, only the P output is enabled
		Q: 0,
		R: 0,
		O: 1,
	}
	var bestFrac uint32
	bestDiff := uint64(math.MaxUint32)
	found := false

	for divm := divmMax; divm >= divmMin; divm-- {
		postDivm := inputFreq / uint64(divm+1)
		if postDivm < postDivmMin || postDivm > postDivmMax {
			continue
		}

		for divp := divpMin; divp <= divpMax; divp++ {
			freq := outputFreq * uint64(divm+1) * uint64(divp+1)

			divn := int(freq/inputFreq) - 1
			if divn < divnMin || divn > divnMax {
				continue
			}

			frac := int(freq*fracMax/inputFreq) - (divn+1)*fracMax

			// 2 passes to refine the fractional part
			for i := 2; i != 0; i-- {
				if frac > fracMax {
					break
				}

				vco := postDivm*uint64(divn+1) +
					postDivm*uint64(frac)/fracMax
				if vco < vcoMin/2 || vco > vcoMax/2 {
					frac++
					continue
				}

				freq = vco / uint64(divp+1)
				var diff uint64
				if outputFreq < freq {
					diff = freq - outputFreq
				} else {
					diff = outputFreq - freq
				}

				if diff < bestDiff {
					best.M = uint32(divm)
					best.N = uint32(divn)
					best.P = uint32(divp)
					bestFrac = uint32(frac)
					found = true

					if diff == 0 {
						return best, bestFrac, nil
					}
					bestDiff = diff
				}

				frac++
			}
		}
	}

	if !found {
		return pllCfg{}, 0, fmt.Errorf("no PLL1 settings for %d kHz from %d Hz",
			freqKHz, inputFreq)
	}
	return best, bestFrac, nil
}
