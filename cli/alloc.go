package main

import (
	"errors"

	"github.com/gammadia/hostpool/cli/log"
	"github.com/gammadia/hostpool/remoteaccount"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var allocCmd = &cobra.Command{
	Use:   "alloc",
	Short: "Allocate slots and show how to reach them",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) (err error) {
		spec, err := nodeSpec(map[string]int{
			remoteaccount.Linux.String():   lo.Must(cmd.Flags().GetInt("linux")),
			remoteaccount.Windows.String(): lo.Must(cmd.Flags().GetInt("windows")),
		})
		if err != nil {
			return err
		}

		c, err := createCluster(nil)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, c.Close())
		}()

		slots, err := c.Alloc(spec)
		if err != nil {
			return err
		}
		log.InfoContext(cmd.Context(), "Slots allocated", "cluster", c.Name(), "count", len(slots))

		return writeSlots(
			cmd.OutOrStdout(),
			lo.Must(cmd.Flags().GetString("output")),
			lo.Must(cmd.Flags().GetString("template")),
			slots,
		)
	},
}

func init() {
	allocCmd.Flags().Int("linux", 1, "number of linux slots to allocate")
	allocCmd.Flags().Int("windows", 0, "number of windows slots to allocate")
	allocCmd.Flags().StringP("output", "o", outputText, "output format (text, json, yaml)")
	allocCmd.Flags().String("template", "", "go template rendered for each slot, overrides --output")
}
