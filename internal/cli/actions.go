package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire/rest"
	"github.com/vovakirdan/debatewire-sdk-go/internal/output"
	"github.com/vovakirdan/debatewire-sdk-go/internal/version"
)

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the autonomous loop status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newRESTClient(deps).LoopStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("loop status: %w", err)
			}
			output.NewFormatter(cmd.OutOrStdout()).LoopStatus(st)
			return nil
		},
	}
}

func NewDebatesCmd(deps *Dependencies) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "debates",
		Short: "List recent debates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())
			debates, err := newRESTClient(deps).ListDebates(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list debates: %w", err)
			}
			if len(debates) == 0 {
				formatter.Info("No debates yet")
				return nil
			}
			formatter.DebateListHeader()
			for _, d := range debates {
				formatter.DebateListItem(d)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of debates")
	return cmd
}

func NewTriggerCmd(deps *Dependencies) *cobra.Command {
	var participants []string
	cmd := &cobra.Command{
		Use:   "trigger [topic]",
		Short: "Start a debate; without a topic the latest news headline is used",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := rest.TriggerRequest{
				Topic:        strings.TrimSpace(strings.Join(args, " ")),
				Participants: participants,
			}
			resp, err := newRESTClient(deps).TriggerDebate(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("trigger debate: %w", err)
			}
			msg := resp.Message
			if resp.Topic != "" {
				msg += ": " + resp.Topic
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(msg)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&participants, "participant", "p", nil, "agent to include (repeatable)")
	return cmd
}

func NewLoopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Start or stop the autonomous debate loop",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newRESTClient(deps).StartLoop(cmd.Context())
			if err != nil {
				return fmt.Errorf("start loop: %w", err)
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(loopMessage(st, "Loop started"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newRESTClient(deps).StopLoop(cmd.Context())
			if err != nil {
				return fmt.Errorf("stop loop: %w", err)
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(loopMessage(st, "Loop stopped"))
			return nil
		},
	})
	return cmd
}

func loopMessage(st *rest.LoopStatus, fallback string) string {
	if st.Message != "" {
		return st.Message
	}
	return fallback
}

func NewValidateCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <theory-id>",
		Short: "Validate a pending theory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid theory id %q", args[0])
			}
			res, err := newRESTClient(deps).ValidateTheory(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("validate theory %d: %w", id, err)
			}
			output.NewFormatter(cmd.OutOrStdout()).Validation(res)
			return nil
		},
	}
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
