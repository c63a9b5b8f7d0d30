package chat

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/malonaz/specchat/internal/cli"
	"github.com/malonaz/specchat/store"
)

// NewListChatsCmd instantiates and returns the chats command.
func NewListChatsCmd(s *store.Store) *cobra.Command {
	var opts struct {
		Page     int
		PageSize int
	}

	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List chats",
		Long:  "List chats, most recently updated first",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			response, err := s.ListChats(&store.ListChatsRequest{Page: opts.Page, PageSize: opts.PageSize})
			cobra.CheckErr(err)

			cli.Title("SPECCHAT CHATS (page %d/%d)", max(opts.Page, 1), max(response.PageCount, 1))
			for _, chat := range response.Chats {
				updated := time.UnixMicro(chat.UpdateTimestamp).Format(time.DateTime)
				cli.Reply(chat.ID + "  " + updated + "  " + chat.Model + "\n")
				cli.UserInput("  %s\n", chat.Title)
			}
			cli.CostInfo("%d chats\n", response.TotalCount)
		},
	}

	cmd.Flags().IntVarP(&opts.Page, "page", "p", 1, "Page")
	cmd.Flags().IntVarP(&opts.PageSize, "page-size", "s", store.DefaultPageSize, "Page size")
	return cmd
}
