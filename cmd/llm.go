package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/generator"
	"github.com/aerladis/eflwizard/internal/llm"
	"github.com/aerladis/eflwizard/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect model calls made while generating questions",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE:  runLLMList,
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one model call with its prompt and answer",
	Long: `Show one model call with its prompt and answer.

Prompts and answers are only stored when the call was made with --debug.`,
	Args: cobra.ExactArgs(1),
	RunE: runLLMView,
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise token usage per purpose and estimated cost per model",
	RunE:  runLLMStats,
}

func init() {
	purposes := strings.Join([]string{generator.PurposeBatch, generator.PurposeSingle, generator.PurposeExtract}, ", ")
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose ("+purposes+")")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")
	llmViewCmd.Flags().Bool("no-bodies", false, "Omit the prompt and answer")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

func rule(n int) string { return strings.Repeat("─", n) }

func runLLMList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	purpose, _ := cmd.Flags().GetString("purpose")
	failedOnly, _ := cmd.Flags().GetBool("failed")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
	if err != nil {
		return fmt.Errorf("query model calls: %w", err)
	}

	const row = "%-5v  %-19s  %-15s  %-28s  %-6v  %-6v  %-7v  %s\n"
	printed := 0
	for _, e := range events {
		if failedOnly && e.Success {
			continue
		}
		if printed == 0 {
			fmt.Printf(row, "ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Println(rule(100))
		}
		status := "✓"
		if !e.Success {
			status = "✗ " + truncate(e.ErrorMessage, 40)
		}
		fmt.Printf(row, e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose,
			truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, status)
		printed++
	}
	if printed == 0 {
		fmt.Println("No model calls recorded.")
	}
	return nil
}

func runLLMView(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid ID %q", args[0])
	}
	noBodies, _ := cmd.Flags().GetBool("no-bodies")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get model call: %w", err)
	}
	if e == nil {
		return fmt.Errorf("model call %d not found", id)
	}

	field := func(name, value string) { fmt.Printf("%-10s %s\n", name+":", value) }
	field("ID", strconv.Itoa(e.ID))
	field("Time", e.Timestamp.Local().Format(timeLayout))
	field("Provider", e.Provider)
	field("Model", e.Model)
	field("Purpose", e.Purpose)
	field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
	if cost := llm.LookupCost(e.Model); cost != nil {
		field("Cost", formatCost(cost.Cost(e.InputTokens, e.OutputTokens)))
	}
	field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
	field("Success", strconv.FormatBool(e.Success))
	if e.ErrorMessage != "" {
		field("Error", e.ErrorMessage)
	}
	if noBodies {
		return nil
	}

	for _, part := range []struct{ name, body string }{
		{"PROMPT", e.RequestBody},
		{"ANSWER", e.ResponseBody},
	} {
		fmt.Printf("\n%s\n%s\n%s\n", rule(60), part.name, rule(60))
		if part.body == "" {
			fmt.Println("(not captured, rerun with --debug)")
			continue
		}
		fmt.Println(part.body)
	}
	return nil
}

func runLLMStats(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
	if err != nil {
		return fmt.Errorf("usage by purpose: %w", err)
	}
	if len(byPurpose) == 0 {
		fmt.Println("No model calls recorded yet.")
		return nil
	}
	printPurposeUsage(byPurpose)

	byModel, err := s.EventRepo().LLMUsageByModel(ctx)
	if err != nil {
		return fmt.Errorf("usage by model: %w", err)
	}
	if len(byModel) > 0 {
		fmt.Println()
		printModelCost(byModel)
	}
	return nil
}

func printPurposeUsage(usage []store.PurposeUsage) {
	const row = "%-16s  %6v  %10v  %10v  %10v  %8v\n"
	fmt.Println("Tokens by purpose")
	fmt.Println(rule(72))
	fmt.Printf(row, "Purpose", "Calls", "Input", "Output", "Total", "Avg ms")
	fmt.Println(rule(72))

	var calls, in, out int
	for _, u := range usage {
		fmt.Printf(row, u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Println(rule(72))
	fmt.Printf(row, "TOTAL", calls, in, out, in+out, "")
}

func printModelCost(usage []store.ModelUsage) {
	const row = "%-32s  %6v  %10v  %10v  %10s\n"
	fmt.Println("Estimated cost (USD)")
	fmt.Println(rule(72))
	fmt.Printf(row, "Model", "Calls", "Input", "Output", "Cost")
	fmt.Println(rule(72))

	var total float64
	var unpriced []string
	for _, u := range usage {
		cost := "?"
		if p := llm.LookupCost(u.Model); p != nil {
			c := p.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Printf(row, truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	fmt.Println(rule(72))

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Printf(row, label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Printf("\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
