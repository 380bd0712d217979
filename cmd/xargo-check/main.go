// Command xargo-check is the cargo-check flavor of xargo: it refreshes the
// sysroot cache with `cargo check` semantics. With no subcommand it only
// updates the cache and exits.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xargo-dev/xargo/internal/engine"
	"github.com/xargo-dev/xargo/internal/log"
	"github.com/xargo-dev/xargo/internal/sysroot"
)

var rootCmd = &cobra.Command{
	Use:   "xargo-check",
	Short: "Type-check a custom std sysroot without building artifacts",

	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	SilenceUsage:       true,
	SilenceErrors:      true,

	RunE: func(cmd *cobra.Command, args []string) error {
		log.Init(args)

		code, err := engine.Run(args, sysroot.ModeCheck)
		if err != nil {
			os.Exit(engine.Report(os.Stderr, err))
		}
		os.Exit(code)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(engine.Report(os.Stderr, err))
	}
}
