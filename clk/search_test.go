package clk

import (
	"testing"
)

func TestComputePLL1SettingsExact(t *testing.T) {
	for _, tc := range []struct {
		inputFreq uint64
		freqKHz   uint32
		want      pllCfg
		wantFrac  uint32
	}{
		// 24 MHz / 3 * 81.25 = 650 MHz
		{24000000, 650000, pllCfg{M: 2, N: 80, P: 0, O: 1}, 2048},
		// 24 MHz / 3 * 100 = 800 MHz
		{24000000, 800000, pllCfg{M: 2, N: 99, P: 0, O: 1}, 0},
		// 100 MHz needs P to lift the VCO into its window
		{24000000, 100000, pllCfg{M: 2, N: 49, P: 3, O: 1}, 0},
		// 64 MHz HSI reference; DIVM is scanned downward so the
		// largest divider wins
		{64000000, 650000, pllCfg{M: 7, N: 80, P: 0, O: 1}, 2048},
	} {
		cfg, frac, err := computePLL1Settings(tc.inputFreq, tc.freqKHz)
		if err != nil {
			t.Errorf("%d kHz from %d Hz: %v", tc.freqKHz, tc.inputFreq, err)
			continue
		}
		if cfg != tc.want || frac != tc.wantFrac {
			t.Errorf("%d kHz from %d Hz: got %+v frac %d, want %+v frac %d",
				tc.freqKHz, tc.inputFreq, cfg, frac, tc.want, tc.wantFrac)
		}
	}
}

func TestComputePLL1SettingsNoSolution(t *testing.T) {
	// Too slow for any P divider to reach from the VCO window
	if _, _, err := computePLL1Settings(24000000, 1000); err == nil {
		t.Error("1 MHz accepted")
	}
	// Reference can't be divided into the 8-16 MHz window
	if _, _, err := computePLL1Settings(4000000, 650000); err == nil {
		t.Error("4 MHz input accepted")
	}
}

// The result must respect the hardware constraints and come close to the
// target for any target the dividers can express.
func TestComputePLL1SettingsConstraints(t *testing.T) {
	const inputFreq = 24000000
	for _, freqKHz := range []uint32{400000, 456789, 555555, 648000, 790123} {
		cfg, frac, err := computePLL1Settings(inputFreq, freqKHz)
		if err != nil {
			t.Errorf("%d kHz: %v", freqKHz, err)
			continue
		}

		postDivm := inputFreq / uint64(cfg.M+1)
		if postDivm < postDivmMin || postDivm > postDivmMax {
			t.Errorf("%d kHz: post-DIVM ref %d out of window", freqKHz, postDivm)
		}
		if cfg.N < divnMin || cfg.N > divnMax {
			t.Errorf("%d kHz: DIVN %d out of range", freqKHz, cfg.N)
		}

		vco := postDivm*uint64(cfg.N+1) + postDivm*uint64(frac)/fracMax
		if vco < vcoMin/2 || vco > vcoMax/2 {
			t.Errorf("%d kHz: VCO %d out of window", freqKHz, vco)
		}

		got := vco / uint64(cfg.P+1)
		want := uint64(freqKHz) * 1000
		var diff uint64
		if got < want {
			diff = want - got
		} else {
			diff = got - want
		}
		// One fractional step at the lowest reference is just under
		// 2 kHz
		if diff > 2000 {
			t.Errorf("%d kHz: output %d Hz off by %d", freqKHz, got, diff)
		}
	}
}
