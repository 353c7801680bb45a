package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coacha/internal/badges"
	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/prompt"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the built-in learning content",
}

var catalogPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the learning paths and their steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.New()
		if err != nil {
			return err
		}
		for i, kind := range catalog.AllPathKinds() {
			path, ok := cat.PathByKind(kind)
			if !ok {
				continue
			}
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s  (%d steps, %d points, ~%d min)\n",
				kind.DisplayName(), path.Len(), path.TotalPoints(), path.TotalMinutes())
			fmt.Println(strings.Repeat("─", 60))
			for j, s := range path.Steps {
				fmt.Printf("%2d. %s %-32s  %3d pts  %2d min\n",
					j+1, s.Emoji, truncate(s.Title, 32), s.AwardPoints(), s.EstimatedMinutes)
			}
		}
		return nil
	},
}

var catalogThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the analogy themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.New()
		if err != nil {
			return err
		}
		for _, t := range cat.Themes() {
			fmt.Printf("%s %-12s  %s\n", t.Emoji, t.Key, t.Description)
		}
		return nil
	},
}

var catalogBadgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List the badges",
	Run: func(cmd *cobra.Command, args []string) {
		for _, b := range badges.All() {
			fmt.Printf("%s %-20s  %s\n", b.Icon.Glyph(), b.Name, b.Description)
		}
	},
}

var catalogPromptCmd = &cobra.Command{
	Use:   "prompt <concept>",
	Short: "Preview the instruction sent to the model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		personaFlag, _ := cmd.Flags().GetString("persona")
		courseFlag, _ := cmd.Flags().GetString("course")
		analogy, _ := cmd.Flags().GetString("analogy")
		profession, _ := cmd.Flags().GetString("profession")
		evaluate, _ := cmd.Flags().GetBool("evaluate")

		persona, err := catalog.ParsePersona(personaFlag)
		if err != nil {
			return err
		}
		course, err := catalog.ParseCourseMode(courseFlag)
		if err != nil {
			return err
		}
		cat, err := catalog.New()
		if err != nil {
			return err
		}

		task := prompt.TaskExplain
		if evaluate {
			task = prompt.TaskEvaluate
		}
		fmt.Println(prompt.NewComposer(cat).ComposeInstruction(task, persona, course, args[0], profession, analogy))
		return nil
	},
}

func init() {
	catalogPromptCmd.Flags().String("persona", string(catalog.PersonaAdult), "Persona: kid, adult or doctor")
	catalogPromptCmd.Flags().String("course", string(catalog.CourseCoding), "Course: coding or swe")
	catalogPromptCmd.Flags().String("analogy", "", "Analogy theme key (default depends on persona)")
	catalogPromptCmd.Flags().String("profession", "", "Medical specialty, for doctors")
	catalogPromptCmd.Flags().Bool("evaluate", false, "Show the evaluation instruction instead")

	catalogCmd.AddCommand(catalogPathsCmd, catalogThemesCmd, catalogBadgesCmd, catalogPromptCmd)
}
