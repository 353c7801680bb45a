package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coacha/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learner analytics",
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

		a, err := st.LoadAnalytics(ctx)
		if err != nil {
			return fmt.Errorf("load analytics: %w", err)
		}

		fmt.Printf("Learners:            %d\n", a.TotalUsers)
		fmt.Printf("Average points:      %d\n", a.AvgPoints)
		fmt.Printf("Concepts completed:  %d\n", a.TotalConceptsCompleted)

		printDistribution("Personas", a.PersonaDistribution)
		printDistribution("Courses", a.CoursePopularity)
		return nil
	},
}

func printDistribution(title string, rows []store.NamedCount) {
	fmt.Println()
	fmt.Println(title)
	fmt.Println(strings.Repeat("─", 40))
	if len(rows) == 0 {
		fmt.Println("No data yet.")
		return
	}
	for _, r := range rows {
		fmt.Printf("%-24s  %6d\n", truncate(r.Name, 24), r.Count)
	}
}
