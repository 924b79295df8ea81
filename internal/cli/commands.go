package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newRunCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run the targets and everything they depend on",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, args, outW, errW)
			if err != nil {
				return err
			}
			if _, err := a.Run(cmd.Context()); err != nil {
				return classify(err)
			}
			return nil
		},
	}
}

func newPlanCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [targets...]",
		Short: "Print the execution order without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, args, outW, errW)
			if err != nil {
				return err
			}
			if _, err := a.Plan(cmd.Context()); err != nil {
				return classify(err)
			}
			return nil
		},
	}
}

func newTasksCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List every declared task with its edges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, nil, outW, errW)
			if err != nil {
				return err
			}
			if err := a.Tasks(cmd.Context()); err != nil {
				return classify(err)
			}
			return nil
		},
	}
}
