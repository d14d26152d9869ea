package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <option> <participant>",
	Short: "Add or remove a participant on one day",
	Long:  `Toggles a participant on an option (mon, tue, wed, thu, fri, sat, sun) exactly like a click on the poll button.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := polls.Toggle(cmd.Context(), args[0], domain.Participant(args[1]))
		if err != nil {
			return err
		}

		verb := "left"
		if res.Joined {
			verb = "joined"
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%d)\n", args[1], verb, renderer.Label(res.Option), res.State.Count(res.Option))
		return err
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
