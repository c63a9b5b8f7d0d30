package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/malonaz/specchat/chat"
	"github.com/malonaz/specchat/internal/configuration"
	"github.com/malonaz/specchat/internal/debug"
	"github.com/malonaz/specchat/replay"
	"github.com/malonaz/specchat/server"
	"github.com/malonaz/specchat/store"
)

var rootCmd = &cobra.Command{
	Use:     "specchat",
	Short:   "Chat with models that answer in text and terminal UI",
	Version: "1.0",
}

func main() {
	configPath := configuration.DefaultPath
	if path := os.Getenv("SPECCHAT_CONFIG"); path != "" {
		configPath = path
	}
	config, err := configuration.Parse(configPath)
	if err != nil {
		panic(err)
	}
	debug.Configure(config.Logging.Level, config.Logging.File)

	// Create store
	s, err := store.New(config.Chat.DatabasePath)
	if err != nil {
		panic(err)
	}
	// Ensure store is closed when the program exits normally
	defer s.Close()

	rootCmd.AddCommand(server.NewServeCmd(config))
	rootCmd.AddCommand(chat.NewCmd(config, s))
	rootCmd.AddCommand(chat.NewListChatsCmd(s))
	rootCmd.AddCommand(chat.NewShowChatCmd(s))
	rootCmd.AddCommand(chat.NewDeleteChatCmd(s))
	rootCmd.AddCommand(replay.NewCmd(config))
	rootCmd.Execute()
}
