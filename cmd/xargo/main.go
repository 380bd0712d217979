// Command xargo is a drop-in cargo front-end that transparently builds and
// caches a custom standard-library sysroot for the requested target, then
// runs cargo with that sysroot wired in.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xargo-dev/xargo/internal/engine"
	"github.com/xargo-dev/xargo/internal/log"
	"github.com/xargo-dev/xargo/internal/sysroot"
)

var rootCmd = &cobra.Command{
	Use:   "xargo",
	Short: "The sysroot manager that lets you build and customize std",

	// Every flag belongs to cargo; xargo only scans the list.
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	SilenceUsage:       true,
	SilenceErrors:      true,

	RunE: func(cmd *cobra.Command, args []string) error {
		log.Init(args)

		code, err := engine.Run(args, sysroot.ModeBuild)
		if err != nil {
			exitWithCode(engine.Report(os.Stderr, err))
		}
		exitWithCode(code)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitWithCode(engine.Report(os.Stderr, err))
	}
}
