package chat

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malonaz/specchat/internal/cli"
	"github.com/malonaz/specchat/store"
)

// NewDeleteChatCmd instantiates and returns the delete command.
func NewDeleteChatCmd(s *store.Store) *cobra.Command {
	var opts struct {
		Yes bool
	}

	cmd := &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat",
		Long:  "Delete a chat and all its messages",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			chat, err := s.GetChat(args[0])
			cobra.CheckErr(err)
			if !opts.Yes && !cli.QueryUser(fmt.Sprintf("Delete chat %q?", chat.Title)) {
				return
			}
			cobra.CheckErr(s.DeleteChat(chat.ID))
			cli.UserInput("deleted %s\n", chat.ID)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
