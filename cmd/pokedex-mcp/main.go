// Command pokedex-mcp serves Pokemon lookups as MCP tools and answers the
// same queries from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"pokedex-mcp/internal/server"
)

type rootFlags struct {
	configPath string
	logLevel   string
	render     bool
	width      int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "pokedex-mcp",
		Short: "Pokemon data over the Model Context Protocol",
		Long: `pokedex-mcp exposes PokeAPI lookups as MCP tools.

Run "serve" to start the tool server over stdio or HTTP, or use the
query commands to call a tool once and print its output.`,
		Version:       server.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config YAML (default $CONFIG_PATH or configs/config.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.BoolVar(&flags.render, "render", false, "render markdown output for the terminal")
	pf.IntVar(&flags.width, "width", 100, "word wrap width used with --render")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newGetCmd(flags))
	rootCmd.AddCommand(newCompareCmd(flags))
	rootCmd.AddCommand(newSearchCmd(flags))
	rootCmd.AddCommand(newFavoritesCmd(flags))
	return rootCmd
}
