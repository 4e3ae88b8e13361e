package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dayplanner/internal/model"
	"dayplanner/internal/planner"
)

func taskCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(taskListCmd(o))
	cmd.AddCommand(taskAddCmd(o))
	cmd.AddCommand(taskEditCmd(o))
	cmd.AddCommand(taskDoneCmd(o))
	cmd.AddCommand(taskRmCmd(o))
	return cmd
}

func taskListCmd(o *rootOptions) *cobra.Command {
	var (
		filter string
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks sorted by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := planner.ParseTaskFilter(filter)
			if err != nil {
				return err
			}
			e, err := o.open()
			if err != nil {
				return err
			}
			tasks := e.planner.ListTasks(f, search)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tasks)
			}

			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				due := model.Deref(t.DueDate)
				if due == "" {
					due = "Нет срока"
				}
				status := "Активно"
				if t.Completed {
					status = "Завершено"
				}
				rows = append(rows, []string{strconv.Itoa(t.ID), t.Title, string(t.Priority), due, status})
			}
			printTable(cmd.OutOrStdout(), "Задач нет.",
				[]string{"ID", "Название", "Приоритет", "Срок", "Статус"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, active, completed or high")
	cmd.Flags().StringVarP(&search, "search", "s", "", "substring of title or description")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func taskAddCmd(o *rootOptions) *cobra.Command {
	var in planner.TaskInput
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open()
			if err != nil {
				return err
			}
			in.Title = args[0]
			t, err := e.planner.AddTask(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Задача добавлена (id %d)\n", t.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "description")
	cmd.Flags().StringVarP(&in.Priority, "priority", "p", "", "Низкий/Средний/Высокий or low/medium/high")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "due date YYYY-MM-DD")
	return cmd
}

// taskEditCmd starts from the stored task and applies only the flags given.
func taskEditCmd(o *rootOptions) *cobra.Command {
	var (
		title, description, priority, due string
		done, undone                      bool
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task",
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
			cur, err := e.planner.Task(id)
			if err != nil {
				return err
			}

			in := planner.TaskInput{
				Title:       cur.Title,
				Description: cur.Description,
				Priority:    string(cur.Priority),
				DueDate:     model.Deref(cur.DueDate),
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = title
			}
			if flags.Changed("description") {
				in.Description = description
			}
			if flags.Changed("priority") {
				in.Priority = priority
			}
			if flags.Changed("due") {
				in.DueDate = due
			}
			switch {
			case done:
				in.Completed = &done
			case undone:
				reopen := false
				in.Completed = &reopen
			}

			if _, err := e.planner.EditTask(id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Задача %d обновлена\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority")
	cmd.Flags().StringVar(&due, "due", "", `new due date YYYY-MM-DD ("" clears it)`)
	cmd.Flags().BoolVar(&done, "done", false, "mark completed")
	cmd.Flags().BoolVar(&undone, "undone", false, "mark active again")
	cmd.MarkFlagsMutuallyExclusive("done", "undone")
	return cmd
}

func taskDoneCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task completed",
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
			t, err := e.planner.CompleteTask(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Задача %d «%s» выполнена\n", t.ID, t.Title)
			return nil
		},
	}
}

func taskRmCmd(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
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
			if _, err := e.planner.Task(id); err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Вы уверены, что хотите удалить эту задачу?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Отменено")
				return nil
			}
			if err := e.planner.DeleteTask(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Задача %d удалена\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
