package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dayplanner/internal/model"
	"dayplanner/internal/planner"
)

func eventCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"events", "e"},
		Short:   "Manage events",
	}
	cmd.AddCommand(eventListCmd(o))
	cmd.AddCommand(eventAddCmd(o))
	cmd.AddCommand(eventEditCmd(o))
	cmd.AddCommand(eventRmCmd(o))
	return cmd
}

func eventListCmd(o *rootOptions) *cobra.Command {
	var (
		filter string
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events by date and time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := planner.ParseEventFilter(filter)
			if err != nil {
				return err
			}
			e, err := o.open()
			if err != nil {
				return err
			}
			events := e.planner.ListEvents(f, search)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), events)
			}

			rows := make([][]string, 0, len(events))
			for _, ev := range events {
				at := "Весь день"
				if ev.Time != nil {
					at = *ev.Time
				}
				reminder := "Нет"
				if ev.Reminder != nil && *ev.Reminder > 0 {
					reminder = fmt.Sprintf("%d мин", *ev.Reminder)
				}
				rows = append(rows, []string{strconv.Itoa(ev.ID), ev.Title, ev.Date, at, reminder})
			}
			printTable(cmd.OutOrStdout(), "Событий нет.",
				[]string{"ID", "Название", "Дата", "Время", "Напоминание"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, upcoming or past")
	cmd.Flags().StringVarP(&search, "search", "s", "", "substring of title or description")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func eventAddCmd(o *rootOptions) *cobra.Command {
	var in planner.EventInput
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open()
			if err != nil {
				return err
			}
			in.Title = args[0]
			ev, err := e.planner.AddEvent(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Событие добавлено (id %d)\n", ev.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "description")
	cmd.Flags().StringVar(&in.Date, "date", "", "date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&in.Time, "time", "", "time HH:MM")
	cmd.Flags().StringVar(&in.Reminder, "reminder", "", "reminder, minutes before the event")
	return cmd
}

func eventEditCmd(o *rootOptions) *cobra.Command {
	var title, description, date, at, reminder string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := o.open()
			if err != nil {
				return err
			}
			cur, err := e.planner.Event(id)
			if err != nil {
				return err
			}

			in := planner.EventInput{
				Title:       cur.Title,
				Description: cur.Description,
				Date:        cur.Date,
				Time:        model.Deref(cur.Time),
			}
			if cur.Reminder != nil {
				in.Reminder = strconv.Itoa(*cur.Reminder)
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = title
			}
			if flags.Changed("description") {
				in.Description = description
			}
			if flags.Changed("date") {
				in.Date = date
			}
			if flags.Changed("time") {
				in.Time = at
			}
			if flags.Changed("reminder") {
				in.Reminder = reminder
			}

			if _, err := e.planner.EditEvent(id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Событие %d обновлено\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&date, "date", "", "new date YYYY-MM-DD")
	cmd.Flags().StringVar(&at, "time", "", `new time HH:MM ("" clears it)`)
	cmd.Flags().StringVar(&reminder, "reminder", "", `new reminder in minutes ("" clears it)`)
	return cmd
}

func eventRmCmd(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete an event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := o.open()
			if err != nil {
				return err
			}
			if _, err := e.planner.Event(id); err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Вы уверены, что хотите удалить это событие?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Отменено")
				return nil
			}
			if err := e.planner.DeleteEvent(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Событие %d удалено\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
