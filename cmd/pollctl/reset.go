package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/weeklypoll/internal/adapters/telegram"
	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/services"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a fresh poll",
	Long:  `Clears every day. With --post the new poll is also sent to the configured chat, the same way the weekly schedule does it.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		post, _ := cmd.Flags().GetBool("post")
		if !post {
			state, err := polls.Reset(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderer.Text(state))
			return err
		}

		if err := cfg.ValidateBot(); err != nil {
			return err
		}
		messenger, err := telegram.NewMessenger(cfg.BotToken, cfg.ChatID)
		if err != nil {
			return err
		}
		dispatcher := services.NewDispatcher(polls, messenger, renderer)
		if err := dispatcher.Handle(cmd.Context(), domain.ScheduledReset{ID: uuid.NewString()}); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "new poll posted")
		return err
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().Bool("post", false, "Send the new poll to the chat")
}
