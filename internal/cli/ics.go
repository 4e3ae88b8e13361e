package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dayplanner/internal/ics"
	"dayplanner/internal/planner"
)

func icsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Exchange events with calendar apps (iCalendar)",
	}
	cmd.AddCommand(icsExportCmd(o))
	cmd.AddCommand(icsImportCmd(o))
	return cmd
}

func icsExportCmd(o *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all events as an .ics calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open()
			if err != nil {
				return err
			}

			opts := ics.ExportOptions{
				ProductID: e.cfg.ICS.ProductID,
				Duration:  time.Duration(e.cfg.ICS.DefaultDurationMinutes) * time.Minute,
				Location:  e.cfg.Location(),
			}
			if o.now != nil {
				opts.Now = o.now()
			}
			events := e.planner.ListEvents(planner.EventAll, "")

			if out == "" || out == "-" {
				return ics.Export(cmd.OutOrStdout(), events, opts)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := ics.Export(f, events, opts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Экспортировано событий: %d → %s\n", len(events), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func icsImportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE|-",
		Short: "Add events from an .ics calendar, expanding recurrences",
		Long: `Import reads VEVENTs, expands RRULE/EXDATE/RECURRENCE-ID inside
[today - import_backfill_days, today + import_horizon_days] and adds each
occurrence as an event. Occurrences already present with the same title,
date and time are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open()
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			opts := ics.ImportOptions{
				Location:     e.cfg.Location(),
				HorizonDays:  e.cfg.ICS.ImportHorizonDays,
				BackfillDays: e.cfg.ICS.ImportBackfillDays,
			}
			if o.now != nil {
				opts.Now = o.now()
			}
			res, err := ics.Import(e.planner, r, opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Импортировано событий: %d\n", len(res.Added))
			if res.Duplicates > 0 {
				fmt.Fprintf(w, "Пропущено дубликатов: %d\n", res.Duplicates)
			}
			if res.Rejected > 0 {
				fmt.Fprintf(w, "Отклонено: %d\n", res.Rejected)
			}
			for _, uid := range res.Truncated {
				fmt.Fprintf(w, "Повторения %s обрезаны\n", uid)
			}
			return nil
		},
	}
}
