package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/screens/importer"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <file>",
	Short: "Read a title, topics and vocabulary from a scanned page",
	Long: `Run OCR over an image (PNG, JPEG, BMP, TIFF) or the first pages of a PDF
and extract the unit title, topics and target vocabulary with the model.
With --raw only the recognised text is printed and no model is called.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().Bool("raw", false, "Print the OCR text only")
}

func runOCR(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := importer.CleanPath(args[0])
	raw, _ := cmd.Flags().GetBool("raw")

	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	progress := func(msg string) { fmt.Fprintln(os.Stderr, msg) }

	if raw {
		im, err := e.importer(nil)
		if err != nil {
			return err
		}
		text, err := im.Extractor.ExtractFile(ctx, path, progress)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	gen, src, err := e.generator(ctx)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	defer src.Close()
	im, err := e.importer(gen)
	if err != nil {
		return err
	}
	ext, _, err := im.Import(ctx, path, progress)
	if err != nil {
		return err
	}

	fmt.Printf("Title:  %s\n", ext.Title)
	fmt.Println("Topics:")
	for _, line := range strings.Split(ext.TopicsText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Printf("  %s\n", line)
		}
	}
	fmt.Printf("Vocab:  %s\n", strings.Join(ext.Vocab, ", "))
	return nil
}
