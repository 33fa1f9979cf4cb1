package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/answer-cli/internal/prompt"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect prompt templates",
}

var promptsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the prompt file and render every template with sample variables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ps, err := prompt.NewStore(cfg.Prompts.Path)
		if err != nil {
			return err
		}
		return checkPrompts(cmd.OutOrStdout(), ps)
	},
}

func init() {
	promptsCmd.AddCommand(promptsCheckCmd)
	rootCmd.AddCommand(promptsCmd)
}

// checkPrompts renders each template and prints its size.
func checkPrompts(out io.Writer, r prompt.Renderer) error {
	vars := map[string]string{
		prompt.VarQuestion: "sample question",
		prompt.VarContext:  "1_1 sample title sample paragraph",
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TEMPLATE\tCHARS\tSTATUS")
	for _, id := range prompt.IDs {
		text, err := r.Render(id, vars)
		if err != nil {
			_ = w.Flush()
			return eris.Wrapf(err, "prompts check %s", id)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\tok\n", id, len([]rune(text)))
	}
	return w.Flush()
}
