package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Manage subtasks of a task",
}

var subAddCmd = &cobra.Command{
	Use:   "add [task-id] [title]",
	Short: "Add a subtask to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := list.AddSubtask(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("added %s  %s\n", sub.ID, sub.Title)
		return nil
	},
}

var subToggleCmd = &cobra.Command{
	Use:   "toggle [task-id] [subtask-id]",
	Short: "Toggle subtask completion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return list.ToggleSubtask(args[0], args[1])
	},
}

var subRmCmd = &cobra.Command{
	Use:   "rm [task-id] [subtask-id]",
	Short: "Delete a subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return list.DeleteSubtask(args[0], args[1])
	},
}

func init() {
	subCmd.AddCommand(subAddCmd)
	subCmd.AddCommand(subToggleCmd)
	subCmd.AddCommand(subRmCmd)
}
