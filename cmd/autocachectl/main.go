package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type globals struct {
	configPath string
	namespace  string
	shards     string
	router     string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:           "autocachectl",
		Short:         "Inspect and invalidate a sharded autocache deployment",
		Long:          "Reads, writes and deletes autocache entries across a configured set of Redis shards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&g.namespace, "namespace", "n", "", "Key namespace (overrides config)")
	rootCmd.PersistentFlags().StringVar(&g.shards, "shards", "", "Shards as name=addr,... (overrides config)")
	rootCmd.PersistentFlags().StringVar(&g.router, "router", "", "Router: rendezvous or ring (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		getCmd(g),
		setCmd(g),
		delCmd(g),
		whereCmd(g),
	)
	return rootCmd
}
