package main

import (
	"flag"

	"github.com/Jon-Bright/clkctl/clk"
	"github.com/Jon-Bright/clkctl/dtb"
	"github.com/Jon-Bright/clkctl/rcc"
	"github.com/platinasystems/log"
)

var dtbPath = flag.String("dtb", "/boot/fdt.dtb", "The device tree blob with clock and OPP configuration")
var port = flag.Int("port", 24610, "The port that the server should listen to")
var variant = flag.Uint("variant", 0xFFFFFFFF, "The chip variant mask matched against opp-supported-hw")
var buck1MV = flag.Uint("buck1", 0, "The current BUCK1 regulator voltage in mV, 0 to skip the check")
var smp = flag.Bool("smp", true, "Keep the RTC APB clock on for secondary cores")

func main() {
	flag.Parse()

	info, err := dtb.LoadFile(*dtbPath, uint32(*variant))
	if err != nil {
		log.Printf("Failed reading device tree: %v", err)
		panic(err)
	}

	mem, err := rcc.NewMem()
	if err != nil {
		log.Printf("Failed mapping RCC: %v", err)
		panic(err)
	}
	defer mem.Close()

	cfg := clk.Config{
		OscHz:      info.OscHz,
		Secure:     info.Secure,
		SMP:        *smp,
		IgnoredCfg: info.IgnoredCfg,
		SecurePeriph: func(name string) {
			log.Printf("%s is a secure shared resource", name)
		},
	}
	ck := clk.New(mem, &cfg)
	ck.Probe()
	if err := ck.ComputeAllSettings(info.OPPs, uint32(*buck1MV)); err != nil {
		log.Printf("Failed computing operating points: %v", err)
		panic(err)
	}

	s, err := NewServer(*port, ck)
	if err != nil {
		log.Printf("Failed creating server: %v", err)
		panic(err)
	}

	s.handleConnections()
}
