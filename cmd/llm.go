package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect and test the text-generation provider",
}

var llmTestCmd = &cobra.Command{
	Use:   "test [prompt]",
	Short: "Send one prompt to the configured provider",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg, false)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := llm.NewProvider(ctx, cfg.LLM, llm.Options{Recorder: st, Logger: logger.Named("llm")})
		if err != nil {
			return err
		}

		text := "Say hello to a new programmer in one sentence."
		if len(args) == 1 {
			text = args[0]
		}
		start := time.Now()
		resp, err := p.Generate(llm.WithPurpose(ctx, llm.PurposeProxy), llm.UserText("", text))
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		fmt.Println(resp.Text)
		fmt.Printf("\n%s · %d in / %d out · %dms\n",
			resp.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens, time.Since(start).Milliseconds())
		return nil
	},
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent provider calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.RecentLLMEvents(ctx, limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-9s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 96))

		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗ " + e.ErrorKind
			}
			fmt.Printf("%-5d  %-19s  %-9s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show aggregated token usage per model and purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		usage, err := st.LLMUsageSummary(ctx)
		if err != nil {
			return err
		}
		if len(usage) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}
		printUsage(usage)
		return nil
	},
}

func printUsage(usage []store.LLMUsage) {
	rule := strings.Repeat("─", 86)
	fmt.Printf("%-28s  %-9s  %6s  %6s  %10s  %10s  %8s\n",
		"Model", "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
	fmt.Println(rule)

	var calls, failed, in, out int
	for _, u := range usage {
		fmt.Printf("%-28s  %-9s  %6d  %6d  %10d  %10d  %8d\n",
			truncate(u.Model, 28), u.Purpose, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		failed += u.Failures
		in += u.InputTokens
		out += u.OutputTokens
	}

	fmt.Println(rule)
	fmt.Printf("%-28s  %-9s  %6d  %6d  %10d  %10d\n", "TOTAL", "", calls, failed, in, out)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (explain, evaluate, proxy)")

	llmCmd.AddCommand(llmTestCmd)
	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmUsageCmd)
}
