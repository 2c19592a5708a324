package config

import "flag"

var (
	seedFlag    = flag.Int64("seed", 0, "seed used for challenge set generation")
	lotFlag     = flag.Int("validation-lot", 0, "length of the challenge set")
	netuidFlag  = flag.Int("netuid", 0, "the chain subnet uid")
	flagDefined = map[string]bool{}
)

// ApplyFlags overrides environment-sourced validator settings with any
// command line flags that were explicitly set. flag.Parse must have been
// called already (logger.Init does this).
func ApplyFlags(cfg *ValidatorEnvConfig) {
	flag.Visit(func(f *flag.Flag) {
		flagDefined[f.Name] = true
	})

	if flagDefined["seed"] {
		cfg.Seed = *seedFlag
	}
	if flagDefined["validation-lot"] {
		cfg.ValidationLot = *lotFlag
	}
	if flagDefined["netuid"] {
		cfg.Netuid = *netuidFlag
	}
}
