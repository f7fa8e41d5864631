package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/docx"
	"github.com/aerladis/eflwizard/internal/questions"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <worksheet.docx>",
	Short: "Replace one question in an exported worksheet",
	Long: `Read the questions from an exported worksheet, regenerate one of them
and write the worksheet back. The reason given with --feedback goes into
the prompt and into the feedback log.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegenerate,
}

func init() {
	addUnitFlags(regenerateCmd)
	regenerateCmd.Flags().IntP("index", "n", 0, "Question number to replace (1-15)")
	regenerateCmd.Flags().StringP("feedback", "f", "", "What was wrong with the question")
	regenerateCmd.Flags().StringP("out", "o", "", "Output file (default: overwrite the input)")
	_ = regenerateCmd.MarkFlagRequired("index")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	index, _ := cmd.Flags().GetInt("index")
	if index < 1 || index > questions.Count {
		return fmt.Errorf("invalid --index %d: must be between 1 and %d", index, questions.Count)
	}
	reason, _ := cmd.Flags().GetString("feedback")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	existing, err := docx.ReadQuestions(data)
	if err != nil {
		return fmt.Errorf("read worksheet: %w", err)
	}
	if len(existing) == 0 {
		return fmt.Errorf("%s has no numbered questions", args[0])
	}

	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := sessionFromFlags(cmd, e)
	if err != nil {
		return err
	}
	sess.ApplyBatch(existing)
	req := sess.Inputs()
	if err := sess.RequireTitle(); err != nil {
		return fmt.Errorf("%w: pass --title", err)
	}

	gen, src, err := e.generator(ctx)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	defer src.Close()

	i := index - 1
	old := sess.Questions[i].Text
	if reason != "" {
		if err := e.recorder().Record(ctx, sess.ID, i, old, reason); err != nil {
			fmt.Fprintln(os.Stderr, "record feedback:", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Regenerating question %d...\n", index)
	q, err := gen.Regenerate(ctx, req, i, reason)
	if err != nil {
		return err
	}
	if err := sess.ApplySingle(i, q); err != nil {
		return fmt.Errorf("no result: the model returned empty text")
	}
	fmt.Printf("- %s\n+ %s\n", old, sess.Questions[i].Text)

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = args[0]
	}
	return writeWorksheet(ctx, e, sess, out, "")
}
