package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"git.sr.ht/~jakintosh/taskdesk/internal/domain"
	"git.sr.ht/~jakintosh/taskdesk/internal/engine"
)

var (
	addPriority string
	addDue      string

	listSort string

	editTitle    string
	editPriority string
	editDue      string
	editClearDue bool
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, err := domain.ParsePriority(addPriority)
		if err != nil {
			return err
		}

		var due *domain.Date
		if addDue != "" {
			d, err := domain.ParseDate(addDue)
			if err != nil {
				return err
			}
			due = &d
		}

		task, err := list.AddTask(args[0], priority, due)
		if err != nil {
			return err
		}
		fmt.Printf("added %s  %s\n", task.ID, task.Title)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show tasks under a sort mode",
	Long: `Shows the task list. --sort original is the manual order; priority and
due_date are derived views and never change the stored order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		modeStr := listSort
		if modeStr == "" {
			modeStr = cfg.DefaultSort
		}
		mode, err := domain.ParseSortMode(modeStr)
		if err != nil {
			return err
		}

		tasks := list.Tasks(mode)
		if len(tasks) == 0 {
			fmt.Println("no tasks")
			return nil
		}
		for i, t := range tasks {
			fmt.Println(formatTask(i, t))
			for _, sub := range t.Subtasks {
				fmt.Println(formatSubtask(sub))
			}
		}
		printStats(list.Stats())
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle [task-id]",
	Short: "Toggle task completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return list.ToggleComplete(args[0])
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task's title, priority, or due date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd engine.TaskUpdate

		if cmd.Flags().Changed("title") {
			upd.Title = &editTitle
		}
		if cmd.Flags().Changed("priority") {
			p, err := domain.ParsePriority(editPriority)
			if err != nil {
				return err
			}
			upd.Priority = &p
		}
		if editClearDue {
			upd.ClearDueDate = true
		} else if cmd.Flags().Changed("due") {
			d, err := domain.ParseDate(editDue)
			if err != nil {
				return err
			}
			upd.DueDate = &d
		}

		return list.EditTask(args[0], upd)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm [task-id]",
	Short: "Delete a task and its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return list.DeleteTask(args[0])
	},
}

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [index]",
	Short: "Move a task to a new position in the manual order",
	Long: `Moves a task within the stored manual order. The index is clamped to
the list bounds. Position only shows through the original sort mode.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}
		return list.Reorder(args[0], idx)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return list.Clear()
	},
}

func formatTask(i int, t *domain.Task) string {
	check := " "
	if t.Completed {
		check = "x"
	}
	line := fmt.Sprintf("%3d. [%s] %-6s %s", i, check, t.Priority, t.Title)
	if t.DueDate != nil {
		line += fmt.Sprintf("  (due %s)", t.DueDate)
	}
	line += "  " + t.ID
	return line
}

func formatSubtask(sub *domain.Subtask) string {
	check := " "
	if sub.Completed {
		check = "x"
	}
	return fmt.Sprintf("       - [%s] %s  %s", check, sub.Title, sub.ID)
}

func printStats(s engine.Stats) {
	fmt.Printf("\n%d/%d tasks done", s.CompletedTasks, s.Tasks)
	if s.Subtasks > 0 {
		fmt.Printf(", %d/%d subtasks done", s.CompletedSubtasks, s.Subtasks)
	}
	fmt.Println()
}

func init() {
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "Task priority: high, medium, low")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (YYYY-MM-DD)")

	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "Sort mode: original, priority, due_date")

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority: high, medium, low")
	editCmd.Flags().StringVarP(&editDue, "due", "d", "", "New due date (YYYY-MM-DD)")
	editCmd.Flags().BoolVar(&editClearDue, "clear-due", false, "Remove the due date")
}
