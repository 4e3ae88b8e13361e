package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd(o *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task, event and note counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open()
			if err != nil {
				return err
			}
			s := e.planner.Stats()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), s)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headerStyle.Render("Статистика задач"))
			fmt.Fprintf(w, "  Всего задач: %d\n", s.Tasks.Total)
			fmt.Fprintf(w, "  Завершено: %d\n", s.Tasks.Completed)
			fmt.Fprintf(w, "  Активных: %d\n", s.Tasks.Active)
			fmt.Fprintf(w, "  Высокий приоритет: %d\n", s.Tasks.HighPriority)
			fmt.Fprintln(w, headerStyle.Render("Статистика событий"))
			fmt.Fprintf(w, "  Всего событий: %d\n", s.Events.Total)
			fmt.Fprintf(w, "  Предстоящие: %d\n", s.Events.Upcoming)
			fmt.Fprintf(w, "  Прошедшие: %d\n", s.Events.Past)
			fmt.Fprintln(w, headerStyle.Render("Статистика заметок"))
			fmt.Fprintf(w, "  Всего заметок: %d\n", s.Notes.Total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
