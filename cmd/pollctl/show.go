package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current poll",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		state, err := polls.Current(cmd.Context())
		if err != nil && !errors.Is(err, domain.ErrNoActivePoll) {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			if state == nil {
				_, err := fmt.Fprintln(out, "null")
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}
		_, err = fmt.Fprintln(out, renderer.Text(state))
		return err
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("json", false, "Print the stored document instead of the chat text")
}
