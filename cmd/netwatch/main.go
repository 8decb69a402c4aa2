package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hamed0406/netwatch/internal/config"
)

var Version = "dev"

type rootFlags struct {
	configPath string
	baseURL    string
}

func (f *rootFlags) load() (config.Config, error) {
	return config.Load(f.configPath, config.WithBaseURL(f.baseURL))
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		var ee exitError
		if !errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "netwatch",
		Short:         "netwatch - device connectivity and backend reachability monitor",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "yaml config file (env vars override it)")
	rootCmd.PersistentFlags().StringVar(&f.baseURL, "base-url", "", "backend root URL, overrides NETWATCH_BASE_URL")

	rootCmd.AddCommand(serveCmd(f))
	rootCmd.AddCommand(checkCmd(f))
	rootCmd.AddCommand(watchCmd(f))
	rootCmd.AddCommand(preflightCmd(f))
	return rootCmd
}

// exitError fails the command without printing anything more; the command
// already reported on stdout.
type exitError struct{ msg string }

func (e exitError) Error() string { return e.msg }
