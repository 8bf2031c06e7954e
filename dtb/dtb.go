// Package dtb extracts clock configuration from a flattened device tree:
// oscillator frequencies, the RCC security state and the CPU operating
// point table.
package dtb

import (
	"fmt"
	"io/ioutil"
	"math"
	"sort"
	"strings"

	"github.com/Jon-Bright/clkctl/clk"
	"github.com/platinasystems/fdt"
)

// Info is everything the clock tree needs from the device tree.
type Info struct {
	OscHz  [clk.NbOsc]uint64
	Secure bool
	OPPs   []clk.OPP
	// IgnoredCfg names clock tree configuration directives found on the
	// RCC node. Parenthood is set up by the earlier boot stages, so
	// these are reported and skipped.
	IgnoredCfg []string
}

var oscNodes = map[string]clk.Osc{
	"clk-hsi":     clk.OscHSI,
	"clk-hse":     clk.OscHSE,
	"clk-csi":     clk.OscCSI,
	"clk-lsi":     clk.OscLSI,
	"clk-lse":     clk.OscLSE,
	"i2s_ckin":    clk.OscI2SCKIn,
	"ck_usbo_48m": clk.OscUSBPhy48,
}

func nodeDisabled(t *fdt.Tree, n *fdt.Node) bool {
	status, ok := n.Properties["status"]
	if !ok {
		return false
	}
	return t.PropString(status) == "disabled"
}

func parseOscillators(t *fdt.Tree, info *Info) {
	for name, osc := range oscNodes {
		t.MatchNode(name, func(n *fdt.Node) {
			if nodeDisabled(t, n) {
				return
			}
			freq, ok := n.Properties["clock-frequency"]
			if !ok || len(freq) < 4 {
				return
			}
			info.OscHz[osc] = uint64(t.PropUint32(freq))
		})
	}
}

func propUint64(t *fdt.Tree, b []byte) uint64 {
	cells := t.PropUint32Slice(b)
	if len(cells) < 2 {
		return uint64(cells[0])
	}
	return uint64(cells[0])<<32 | uint64(cells[1])
}

func parseOPP(t *fdt.Tree, n *fdt.Node, variantMask uint32) (clk.OPP, bool, error) {
	if hw, ok := n.Properties["opp-supported-hw"]; ok {
		if t.PropUint32(hw)&variantMask == 0 {
			return clk.OPP{}, false, nil
		}
	}

	hz, ok := n.Properties["opp-hz"]
	if !ok || len(hz) < 8 {
		return clk.OPP{}, false, fmt.Errorf("node %s: missing opp-hz", n.Name)
	}
	freqKHz := propUint64(t, hz) / 1000
	if freqKHz > math.MaxUint32 {
		return clk.OPP{}, false, fmt.Errorf("node %s: frequency %d kHz too large", n.Name, freqKHz)
	}

	uv, ok := n.Properties["opp-microvolt"]
	if !ok || len(uv) < 4 {
		return clk.OPP{}, false, fmt.Errorf("node %s: missing opp-microvolt", n.Name)
	}
	voltMV := t.PropUint32(uv) / 1000
	if voltMV > math.MaxUint16 {
		return clk.OPP{}, false, fmt.Errorf("node %s: voltage %d mV too large", n.Name, voltMV)
	}

	return clk.OPP{FreqKHz: uint32(freqKHz), VoltMV: voltMV}, true, nil
}

func parseOPPTable(t *fdt.Tree, variantMask uint32, info *Info) error {
	var table *fdt.Node
	t.EachProperty("compatible", "operating-points-v2", func(n *fdt.Node, name string, value string) {
		if table == nil {
			table = n
		}
	})
	if table == nil {
		// No OPP table: the clock core falls back to the current
		// operating point.
		return nil
	}

	for _, child := range table.Children {
		if !strings.HasPrefix(child.Name, "opp") {
			continue
		}
		opp, supported, err := parseOPP(t, child, variantMask)
		if err != nil {
			return fmt.Errorf("couldn't parse OPP table: %v", err)
		}
		if !supported {
			continue
		}
		info.OPPs = append(info.OPPs, opp)
	}

	// Children come from a map, give the table a stable order.
	sort.Slice(info.OPPs, func(i, j int) bool {
		return info.OPPs[i].FreqKHz < info.OPPs[j].FreqKHz
	})
	return nil
}

var rccCfgProps = []string{"st,clksrc", "st,clkdiv", "st,pkcs"}

func parseRCC(t *fdt.Tree, info *Info) {
	var rccNode *fdt.Node
	t.EachProperty("compatible", "st,stm32mp1-rcc", func(n *fdt.Node, name string, value string) {
		if rccNode == nil {
			rccNode = n
		}
		if strings.Contains(value, "st,stm32mp1-rcc-secure") {
			info.Secure = true
		}
	})
	if rccNode == nil {
		return
	}

	for _, prop := range rccCfgProps {
		if _, ok := rccNode.Properties[prop]; ok {
			info.IgnoredCfg = append(info.IgnoredCfg, prop)
		}
	}
	for i := 0; i < 4; i++ {
		pll, ok := rccNode.Children[fmt.Sprintf("st,pll@%d", i)]
		if !ok {
			continue
		}
		_, hasCfg := pll.Properties["cfg"]
		_, hasFrac := pll.Properties["frac"]
		if hasCfg || hasFrac {
			info.IgnoredCfg = append(info.IgnoredCfg, pll.Name)
		}
	}
}

// FromTree pulls clock configuration out of a parsed device tree.
// variantMask selects OPP entries by the opp-supported-hw property; pass
// ^uint32(0) to accept all.
func FromTree(t *fdt.Tree, variantMask uint32) (*Info, error) {
	info := &Info{}
	parseOscillators(t, info)
	parseRCC(t, info)
	if err := parseOPPTable(t, variantMask, info); err != nil {
		return nil, err
	}
	return info, nil
}

// LoadFile parses the DTB at path and extracts clock configuration.
func LoadFile(path string, variantMask uint32) (*Info, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read %s: %v", path, err)
	}
	t := &fdt.Tree{}
	if err := t.Parse(buf); err != nil {
		return nil, fmt.Errorf("couldn't parse %s: %v", path, err)
	}
	return FromTree(t, variantMask)
}
