package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire"
	"github.com/vovakirdan/debatewire-sdk-go/internal/output"
	"github.com/vovakirdan/debatewire-sdk-go/internal/tui"
)

func NewFeedCmd(deps *Dependencies) *cobra.Command {
	var (
		category string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Stream global activity as plain lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			filter := debatewire.FeedFilter{Category: category}
			return streamFeed(ctx, newDashboard(deps), filter, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "all", "only show this category")
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long (0 runs until interrupted)")
	return cmd
}

// streamFeed prints each feed row when it first appears or changes kind,
// and the loop banner whenever its label changes.
func streamFeed(ctx context.Context, dash *debatewire.Dashboard, filter debatewire.FeedFilter, w io.Writer) error {
	formatter := output.NewFormatter(w)
	errc := make(chan error, 1)
	go func() { errc <- dash.Run(ctx) }()

	printed := map[string]debatewire.FeedKind{}
	var banner string
	for {
		select {
		case err := <-errc:
			return runResult(ctx, err)
		case <-dash.Updates():
			v, err := dash.Snapshot(ctx, filter)
			if err != nil {
				continue
			}
			if v.Banner.Label != banner {
				banner = v.Banner.Label
				formatter.Banner(v.Banner)
			}
			for _, r := range freshRows(printed, v.Feed) {
				fmt.Fprintln(w, output.RenderFeedRow(r))
			}
		}
	}
}

// freshRows returns the rows not yet printed with their current kind, oldest
// first, and records them in printed. Rows evicted from the feed are
// forgotten.
func freshRows(printed map[string]debatewire.FeedKind, rows []debatewire.FeedRow) []debatewire.FeedRow {
	live := make(map[string]struct{}, len(rows))
	var fresh []debatewire.FeedRow
	for _, r := range rows {
		live[r.Key] = struct{}{}
		if kind, ok := printed[r.Key]; ok && kind == r.Kind {
			continue
		}
		printed[r.Key] = r.Kind
		fresh = append(fresh, r)
	}
	maps.DeleteFunc(printed, func(key string, _ debatewire.FeedKind) bool {
		_, ok := live[key]
		return !ok
	})
	// projections are newest first; a stream reads oldest first
	slices.Reverse(fresh)
	return fresh
}

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "watch [room-id]",
		Short: "Live dashboard, optionally following one debate room",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var room debatewire.RoomID
			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid room id %q", args[0])
				}
				room = debatewire.RoomID(id)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			dash := newDashboard(deps)
			errc := make(chan error, 1)
			go func() { errc <- dash.Run(ctx) }()

			select {
			case <-dash.Ready():
			case err := <-errc:
				return runResult(ctx, err)
			}
			if room != 0 {
				if err := dash.OpenRoom(ctx, room); err != nil {
					return fmt.Errorf("open room %d: %w", room, err)
				}
			}

			model := tui.NewAppModel(ctx, dash, debatewire.FeedFilter{Category: category})
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			_, progErr := program.Run()
			cancel()
			runErr := runResult(ctx, <-errc)
			if progErr != nil && !errors.Is(progErr, tea.ErrProgramKilled) {
				return progErr
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "all", "initial feed category")
	return cmd
}

// runResult treats the caller's own cancellation as a clean exit.
func runResult(ctx context.Context, err error) error {
	if err == nil || (ctx.Err() != nil && errors.Is(err, ctx.Err())) {
		return nil
	}
	return err
}
