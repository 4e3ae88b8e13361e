package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dayplanner/internal/model"
	"dayplanner/internal/planner"
)

func noteCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes", "n"},
		Short:   "Manage notes",
	}
	cmd.AddCommand(noteListCmd(o))
	cmd.AddCommand(noteShowCmd(o))
	cmd.AddCommand(noteAddCmd(o))
	cmd.AddCommand(noteEditCmd(o))
	cmd.AddCommand(noteRmCmd(o))
	return cmd
}

func noteListCmd(o *rootOptions) *cobra.Command {
	var (
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently edited first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open()
			if err != nil {
				return err
			}
			notes := e.planner.ListNotes(search)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), notes)
			}

			rows := make([][]string, 0, len(notes))
			for _, n := range notes {
				rows = append(rows, []string{strconv.Itoa(n.ID), n.Title, model.ShownTimestamp(n.CreatedAt), model.ShownTimestamp(n.UpdatedAt)})
			}
			printTable(cmd.OutOrStdout(), "Заметок нет.",
				[]string{"ID", "Название", "Создана", "Изменена"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "substring of title or content")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func noteShowCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a note",
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
			n, err := e.planner.Note(id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, headerStyle.Render(n.Title))
			fmt.Fprintf(w, "Создана: %s  Изменена: %s\n\n", model.ShownTimestamp(n.CreatedAt), model.ShownTimestamp(n.UpdatedAt))
			fmt.Fprintln(w, n.Content)
			return nil
		},
	}
}

// readContent resolves --content; "-" reads stdin.
func readContent(cmd *cobra.Command, v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func noteAddCmd(o *rootOptions) *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readContent(cmd, content)
			if err != nil {
				return err
			}
			e, err := o.open()
			if err != nil {
				return err
			}
			n, err := e.planner.AddNote(planner.NoteInput{Title: args[0], Content: body})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Заметка добавлена (id %d)\n", n.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", `note text ("-" reads stdin)`)
	return cmd
}

func noteEditCmd(o *rootOptions) *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a note",
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
			cur, err := e.planner.Note(id)
			if err != nil {
				return err
			}

			in := planner.NoteInput{Title: cur.Title, Content: cur.Content}
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("content") {
				if in.Content, err = readContent(cmd, content); err != nil {
					return err
				}
			}

			if _, err := e.planner.EditNote(id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Заметка %d обновлена\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", `new text ("-" reads stdin)`)
	return cmd
}

func noteRmCmd(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
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
			if _, err := e.planner.Note(id); err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Вы уверены, что хотите удалить эту заметку?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Отменено")
				return nil
			}
			if err := e.planner.DeleteNote(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Заметка %d удалена\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
