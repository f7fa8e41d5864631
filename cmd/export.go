package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/questions"
)

var exportCmd = &cobra.Command{
	Use:   "export <questions.txt|->",
	Short: "Fill a worksheet from a list of questions",
	Long: `Read questions from a text file (or stdin with "-") and fill them into
the worksheet template. Questions may be numbered, bulleted or one per
line. Lists shorter than fifteen are padded, longer lists are cut.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	addUnitFlags(exportCmd)
	exportCmd.Flags().StringP("out", "o", "", "Output .docx or .pdf file (required)")
	exportCmd.Flags().String("method", "", "PDF conversion method")
	_ = exportCmd.MarkFlagRequired("out")
}

// readQuestionList reads the question list from name, or from stdin when
// name is "-".
func readQuestionList(stdin io.Reader, name string) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	qs := questions.ParseList(string(data), questions.Count)
	if len(qs) == 0 {
		return nil, fmt.Errorf("no questions found in %s", name)
	}
	return qs, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	qs, err := readQuestionList(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
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
	if err := sess.RequireTitle(); err != nil {
		return fmt.Errorf("%w: pass --title", err)
	}
	sess.ApplyBatch(qs)

	out, _ := cmd.Flags().GetString("out")
	method, _ := cmd.Flags().GetString("method")
	return writeWorksheet(cmd.Context(), e, sess, out, method)
}
