package chat

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/malonaz/specchat/internal/cli"
	"github.com/malonaz/specchat/internal/configuration"
	"github.com/malonaz/specchat/internal/debug"
	"github.com/malonaz/specchat/internal/llm"
	"github.com/malonaz/specchat/internal/message"
	"github.com/malonaz/specchat/internal/render"
	"github.com/malonaz/specchat/internal/spec"
	"github.com/malonaz/specchat/internal/uistream"
	"github.com/malonaz/specchat/store"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, s *store.Store) *cobra.Command {
	var opts struct {
		Model    *llm.Opts
		ChatID   string
		ShowCost bool
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Back and forth chat with generated UI",
		Long:  "Back and forth chat. Replies stream as text and UI specs rendered in the terminal",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			session := &session{
				config:   config,
				store:    s,
				client:   NewClient(config.Chat.ServerURL),
				renderer: newSpecRenderer(),
				model:    config.ResolveModel(opts.Model.Model),
				showCost: opts.ShowCost,
			}
			if opts.ChatID != "" {
				cobra.CheckErr(session.resume(opts.ChatID))
			}

			cli.Title("SPECCHAT [%s](%s)", session.model.ID, session.chatID())
			printHistory(session.renderer, session.messages)

			for {
				text, err := cli.PromptUser()
				cobra.CheckErr(err)
				text = strings.TrimSpace(text)
				if text == "" {
					continue
				}
				if err := session.send(cmd.Context(), text); err != nil {
					cli.Error("error: %v\n", err)
				}
			}
		},
	}

	opts.Model = llm.GetOpts(cmd, config.Chat.DefaultModel)
	cmd.Flags().StringVar(&opts.ChatID, "id", "", "resume the chat with this id")
	cmd.Flags().BoolVarP(&opts.ShowCost, "show-cost", "c", false, "Show cost")
	return cmd
}

// session is one interactive chat.
type session struct {
	config   *configuration.Config
	store    *store.Store
	client   *Client
	renderer *render.Renderer
	model    *configuration.Model
	showCost bool

	chat      *store.Chat
	messages  []*store.Message
	totalCost decimal.Decimal
}

func (s *session) chatID() string {
	if s.chat == nil {
		return "new"
	}
	return s.chat.ID
}

func (s *session) resume(chatID string) error {
	chat, err := s.store.GetChat(chatID)
	if err != nil {
		return errors.Wrapf(err, "getting chat %s", chatID)
	}
	messages, err := s.store.GetChatMessages(chatID)
	if err != nil {
		return errors.Wrap(err, "getting chat messages")
	}
	s.chat = chat
	s.messages = messages
	return nil
}

// send streams the reply to text, printing it as it arrives. The exchange is
// saved once the reply completes.
func (s *session) send(ctx context.Context, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.config.Gateway.RequestTimeout)*time.Second)
	defer cancel()

	userMessage := &store.Message{Role: message.RoleUser, Content: text}
	request := &Request{
		Messages: historyMessages(append(slices.Clip(s.messages), userMessage)),
		Model:    s.model.ID,
	}

	assembler := message.NewAssembler(
		spec.WithMaxLineSize(s.config.Stream.MaxLineSize),
		spec.WithLogger(debug.GetLogger()),
	)
	err := s.client.Stream(ctx, request, func(event uistream.Event) error {
		if event.Type == uistream.EventTextDelta {
			cli.Reply(event.Delta)
		}
		if assembler.Add(event) {
			debug.GetLogger().Debug("spec updated", "stats", assembler.Stats())
		}
		return nil
	})
	cli.Reply("\n")
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.New("request timed out")
		}
		if ctx.Err() != nil {
			cli.UserInput("#Interrupted\n")
			return nil
		}
		return err
	}
	if err := assembler.Err(); err != nil {
		return errors.Wrap(err, "gateway")
	}

	result := assembler.Result()
	printSpec(s.renderer, result.Spec)
	if s.showCost {
		s.printCost(assembler.Metadata())
	}
	return s.save(userMessage, result)
}

func (s *session) printCost(metadata *uistream.Metadata) {
	if metadata == nil || metadata.Cost == "" {
		return
	}
	cost, err := decimal.NewFromString(metadata.Cost)
	if err != nil {
		return
	}
	s.totalCost = s.totalCost.Add(cost)
	cli.CostInfo("Reply used %d+%d tokens costing $%s\n", metadata.PromptTokens, metadata.CompletionTokens, cost.String())
	cli.CostInfo("Total cost so far $%s\n", s.totalCost.String())
}

func (s *session) save(userMessage *store.Message, result *message.Result) error {
	if s.chat == nil {
		chat, err := s.store.CreateChat(&store.CreateChatRequest{Title: autoTitle(userMessage.Content), Model: s.model.ID})
		if err != nil {
			return errors.Wrap(err, "creating chat")
		}
		s.chat = chat
	}
	saved, err := s.store.SaveMessage(&store.SaveMessageRequest{ChatID: s.chat.ID, Role: userMessage.Role, Content: userMessage.Content})
	if err != nil {
		return errors.Wrap(err, "saving user message")
	}
	reply, err := s.store.SaveMessage(&store.SaveMessageRequest{
		ChatID:  s.chat.ID,
		Role:    message.RoleAssistant,
		Content: result.Text,
		Spec:    result.Spec,
	})
	if err != nil {
		return errors.Wrap(err, "saving reply")
	}
	s.messages = append(s.messages, saved, reply)
	return nil
}
