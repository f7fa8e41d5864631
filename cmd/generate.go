package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/docx"
	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/session"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate fifteen discussion questions for a unit",
	Long: `Generate fifteen discussion questions without opening the editor.

Topics can be passed inline or read from a file. A pasted unit block
("Unit 3A - Title", bullets, "Vocab: ...") is parsed as a whole. With --out
the questions are also written to a DOCX or PDF worksheet.`,
	RunE: runGenerate,
}

func init() {
	addUnitFlags(generateCmd)
	generateCmd.Flags().StringP("out", "o", "", "Write the worksheet to this .docx or .pdf file")
	generateCmd.Flags().String("method", "", "PDF conversion method (auto, selfcontained, docx2pdf, word, libreoffice)")
	generateCmd.Flags().Bool("json", false, "Print the questions as a JSON array")
}

// addUnitFlags registers the unit inputs shared by generate, regenerate
// and export.
func addUnitFlags(c *cobra.Command) {
	c.Flags().StringP("title", "t", "", "Unit title")
	c.Flags().StringP("level", "l", "", "CEFR level (A1, A2, B1, B1+, B2, C1, C2)")
	c.Flags().String("tier", "", "Tier within the level (Upper, Neutral, Lower)")
	c.Flags().String("topics", "", "Topics, one per line, or a pasted unit block")
	c.Flags().String("topics-file", "", "Read topics from a file")
	c.Flags().String("vocab", "", "Target vocabulary, comma separated")
}

// sessionFromFlags builds a session from the config defaults and the unit
// flags.
func sessionFromFlags(cmd *cobra.Command, e *env) (*session.Session, error) {
	sess := newSession(e.cfg)
	title, _ := cmd.Flags().GetString("title")
	level, _ := cmd.Flags().GetString("level")
	tier, _ := cmd.Flags().GetString("tier")
	topicsText, _ := cmd.Flags().GetString("topics")
	topicsFile, _ := cmd.Flags().GetString("topics-file")
	vocab, _ := cmd.Flags().GetString("vocab")

	if level != "" {
		level = strings.ToUpper(level)
		if !slices.Contains(session.Levels, level) {
			return nil, fmt.Errorf("invalid level %q: must be one of %s", level, strings.Join(session.Levels, ", "))
		}
		sess.SetLevel(level)
	}
	if tier != "" {
		i := slices.IndexFunc(session.Tiers, func(t string) bool { return strings.EqualFold(t, tier) })
		if i < 0 {
			return nil, fmt.Errorf("invalid tier %q: must be one of %s", tier, strings.Join(session.Tiers, ", "))
		}
		sess.SetTier(session.Tiers[i])
	}
	if topicsFile != "" {
		data, err := os.ReadFile(topicsFile)
		if err != nil {
			return nil, fmt.Errorf("read topics: %w", err)
		}
		topicsText = string(data)
	}
	sess.SetTitle(title)
	sess.SetTopics(topicsText)
	sess.SetVocab(vocab)
	return sess, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := sessionFromFlags(cmd, e)
	if err != nil {
		return err
	}
	req := sess.Inputs()
	if err := sess.RequireTitle(); err != nil {
		return fmt.Errorf("%w: pass --title or a topics block with a \"Unit N - Title\" line", err)
	}

	gen, src, err := e.generator(ctx)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	defer src.Close()

	fmt.Fprintf(os.Stderr, "Generating questions for %q (%s %s)...\n", req.Title, req.Level, req.Tier)
	qs, err := gen.GenerateBatch(ctx, req)
	if err != nil {
		return err
	}
	sess.ApplyBatch(qs)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sess.Texts()); err != nil {
			return err
		}
	} else {
		printQuestions(sess)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return nil
	}
	method, _ := cmd.Flags().GetString("method")
	return writeWorksheet(ctx, e, sess, out, method)
}

func printQuestions(sess *session.Session) {
	for i, q := range sess.Questions {
		mark := ""
		if q.Regenerated {
			mark = " *"
		}
		fmt.Printf("%2d. %s%s\n", i+1, q.Text, mark)
	}
}

// writeWorksheet fills the template into out. The extension picks DOCX
// or PDF.
func writeWorksheet(ctx context.Context, e *env, sess *session.Session, out, method string) error {
	c := sess.Content()
	switch strings.ToLower(filepath.Ext(out)) {
	case ".docx":
		if err := docx.ExportFile(ctx, e.cfg.Paths.Template, out, c); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved", out)
		recordExport(ctx, e, sess, out, "docx", "")
		return nil

	case ".pdf":
		m := e.pdfMethod()
		if method != "" {
			var err error
			if m, err = pdfconv.ParseMethod(method); err != nil {
				return err
			}
		}
		dir, err := os.MkdirTemp("", "eflwizard_pdf_")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		docxPath := filepath.Join(dir, "worksheet.docx")
		if err := docx.ExportFile(ctx, e.cfg.Paths.Template, docxPath, c); err != nil {
			return err
		}
		used, err := e.pdf().Convert(ctx, m, pdfconv.Job{DocxPath: docxPath, PDFPath: out, Content: c})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %s (%s)\n", out, used)
		recordExport(ctx, e, sess, out, "pdf", string(used))
		return nil
	}
	return fmt.Errorf("unsupported output %q: use a .docx or .pdf file name", out)
}
