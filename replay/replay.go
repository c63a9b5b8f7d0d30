// Package replay compiles a recorded patch stream offline.
package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/specchat/internal/catalog"
	"github.com/malonaz/specchat/internal/cli"
	"github.com/malonaz/specchat/internal/configuration"
	"github.com/malonaz/specchat/internal/debug"
	"github.com/malonaz/specchat/internal/markdown"
	"github.com/malonaz/specchat/internal/render"
	"github.com/malonaz/specchat/internal/spec"
)

// Output of a replay.
type Output struct {
	Spec  *spec.Spec
	Stats spec.Stats
}

// Compile reads patch lines from r until EOF. A trailing unterminated line is
// applied as well.
func Compile(r io.Reader, opts ...spec.Option) (*Output, error) {
	compiler := spec.NewCompiler(opts...)
	if _, err := io.Copy(compiler, r); err != nil {
		return nil, errors.Wrap(err, "reading patches")
	}
	compiler.Flush()
	return &Output{
		Spec:  spec.Normalize(compiler.Result()),
		Stats: compiler.Stats(),
	}, nil
}

// NewCmd instantiates and returns the replay command.
func NewCmd(config *configuration.Config) *cobra.Command {
	var opts struct {
		JSON  bool
		Stats bool
	}

	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Compile a recorded patch stream",
		Long:  "Compile JSONL spec patches from a file, or stdin, and print the resulting spec",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var input io.Reader = os.Stdin
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				cobra.CheckErr(err)
				defer f.Close()
				input = f
			}

			output, err := Compile(input,
				spec.WithMaxLineSize(config.Stream.MaxLineSize),
				spec.WithLogger(debug.GetLogger()),
			)
			cobra.CheckErr(err)

			if opts.JSON {
				bytes, err := json.MarshalIndent(output.Spec, "", "  ")
				cobra.CheckErr(err)
				fmt.Println(string(bytes))
			} else {
				md, err := markdown.NewRenderer(cli.Width() - 4)
				cobra.CheckErr(err)
				fmt.Println(render.New(catalog.Default(), md).Render(output.Spec))
			}

			if opts.Stats {
				stats := output.Stats
				cli.CostInfo("%d lines, %d applied, %d dropped, %d elements\n",
					stats.Lines, stats.Applied, stats.Dropped, len(output.Spec.Elements))
			}
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the spec as JSON")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print line statistics")
	return cmd
}
