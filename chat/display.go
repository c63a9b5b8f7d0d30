package chat

import (
	"strings"

	"github.com/malonaz/specchat/internal/catalog"
	"github.com/malonaz/specchat/internal/cli"
	"github.com/malonaz/specchat/internal/debug"
	"github.com/malonaz/specchat/internal/markdown"
	"github.com/malonaz/specchat/internal/message"
	"github.com/malonaz/specchat/internal/render"
	"github.com/malonaz/specchat/internal/spec"
	"github.com/malonaz/specchat/store"
)

// newSpecRenderer returns a renderer sized to the terminal. Paragraphs fall
// back to plain text if glamour cannot be set up.
func newSpecRenderer() *render.Renderer {
	md, err := markdown.NewRenderer(cli.Width() - 4)
	if err != nil {
		debug.GetLogger().Warn("creating markdown renderer", "error", err)
		md = nil
	}
	return render.New(catalog.Default(), md)
}

func printSpec(renderer *render.Renderer, s *spec.Spec) {
	if s == nil || len(s.Elements) == 0 {
		return
	}
	if output := renderer.Render(s); output != "" {
		cli.Reply(strings.TrimRight(output, "\n") + "\n")
	}
}

func printHistory(renderer *render.Renderer, messages []*store.Message) {
	for _, m := range messages {
		switch m.Role {
		case message.RoleUser:
			cli.UserInput("> %s\n", m.Content)
		case message.RoleAssistant:
			if m.Content != "" {
				cli.Reply(m.Content + "\n")
			}
			printSpec(renderer, m.Spec)
		}
	}
}
