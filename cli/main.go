package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gammadia/hostpool/cli/flags"
	"github.com/gammadia/hostpool/cli/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// Versioning information set at build time
var version, commit = "dev", "n/a"

var hostpoolCmd = &cobra.Command{
	Use:   "hostpool",
	Short: "Hostpool hands out localhost slots as if they were cluster nodes.",

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := flags.Bind(cmd.Flags()); err != nil {
			return err
		}
		return log.Init(cmd.ErrOrStderr())
	},
}

func init() {
	hostpoolCmd.AddCommand(allocCmd)
	hostpoolCmd.AddCommand(replayCmd)
	hostpoolCmd.AddCommand(versionCmd)

	flags.Register(hostpoolCmd.PersistentFlags())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hostpoolCmd.SetOut(os.Stdout)
	if err := hostpoolCmd.ExecuteContext(ctx); err != nil {
		lo.Must(fmt.Fprintln(os.Stderr, color.HiRedString(fmt.Sprint(err))))
		os.Exit(1)
	}
}
