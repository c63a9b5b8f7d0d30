package chat

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malonaz/specchat/internal/cli"
	"github.com/malonaz/specchat/store"
)

// NewShowChatCmd instantiates and returns the show command.
func NewShowChatCmd(s *store.Store) *cobra.Command {
	var opts struct {
		JSON bool
	}

	cmd := &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Show a chat",
		Long:  "Show a chat with its rendered specs",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			chat, err := s.GetChat(args[0])
			cobra.CheckErr(err)
			messages, err := s.GetChatMessages(chat.ID)
			cobra.CheckErr(err)

			if opts.JSON {
				bytes, err := json.MarshalIndent(historyMessages(messages), "", "  ")
				cobra.CheckErr(err)
				fmt.Println(string(bytes))
				return
			}
			cli.Title("%s (%s)", chat.Title, chat.ID)
			printHistory(newSpecRenderer(), messages)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the messages as gateway JSON")
	return cmd
}
