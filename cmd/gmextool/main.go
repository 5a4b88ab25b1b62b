// Command gmextool converts between GameMaker extension file forms. The
// action follows the input suffix: a compiled package (.gex) is extracted
// into an editable project plus its payload files, and a project
// (.ged/.gmp) is built back into a package.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gmextkit/gexpack/tool"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "gmextool <input.{ged|gmp|gex}> [output]",
	Short: "Extract and build GameMaker extension packages",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  run,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log per-payload detail")
}

func run(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	input := args[0]
	output := ""
	if len(args) == 2 {
		output = args[1]
	}
	stem := strings.TrimSuffix(input, filepath.Ext(input))

	switch strings.ToLower(filepath.Ext(input)) {
	case ".gex":
		if output == "" {
			output = stem
		}
		_, err := tool.Extract(input, output)
		return err
	case ".ged", ".gmp":
		if output == "" {
			output = stem + ".gex"
		}
		return tool.Build(input, output, tool.BuildOptions{Optimize: true})
	default:
		return fmt.Errorf("unrecognized input suffix %q", filepath.Ext(input))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
