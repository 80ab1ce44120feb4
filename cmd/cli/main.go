// Command kart-engine reads a SimulationInput JSON from a file argument (or stdin),
// runs the simulation, and writes the SimulationLog JSON to stdout.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cxd309/kart-engine/internal/config"
	"github.com/cxd309/kart-engine/internal/engine"
	"github.com/cxd309/kart-engine/internal/logging"
)

func main() {
	configDir := pflag.String("config", ".", "directory holding "+config.FileName)
	pflag.String("log-level", "", "trace, debug, info, warn or error (overrides the config file)")
	pflag.Bool("log-json", false, "write logs as JSON lines instead of console text")
	summaryOnly := pflag.Bool("summary-only", false, "omit per-step rows from the output")
	pflag.Parse()

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if f := pflag.Lookup("log-level"); f.Changed {
		viper.Set("logLevel", f.Value.String())
	}
	if f := pflag.Lookup("log-json"); f.Changed {
		viper.Set("logFormat", "json")
	}

	level, err := logging.ParseLevel(config.GetString("logLevel"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, level, config.GetString("logFormat") != "json")

	var data []byte
	if pflag.NArg() > 0 {
		data, err = os.ReadFile(pflag.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Error().Err(err).Msg("error reading input")
		os.Exit(1)
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithDefaults(config.Sim().Defaults()),
	}
	if *summaryOnly {
		opts = append(opts, engine.WithSummaryOnly())
	}

	result, err := engine.RunJSON(string(data), opts...)
	if err != nil {
		log.Error().Err(err).Msg("simulation error")
		os.Exit(1)
	}

	fmt.Println(result)
}
