package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/config/eventlog"
)

// executeEventsList formats the events matching f, newest first.
func executeEventsList(logger eventlog.Logger, f eventlog.QueryFilter) (string, error) {
	events, err := logger.Query(f)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, e := range events {
		line := fmt.Sprintf("%s  %-22s %-28s %-24s %s",
			e.Timestamp.Local().Format(time.DateTime), e.Kind, e.Screen, e.Subject, e.Message)
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return sb.String(), nil
}

// NewEventsCmd builds the `atlas events` command tree.
func NewEventsCmd() *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "inspect analytics events recorded by the screens",
	}

	var (
		screen string
		kinds  []string
		limit  int
		since  time.Duration
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStores(config.LoadConfig())
			if err != nil {
				return err
			}
			defer s.Close()

			f := eventlog.QueryFilter{Screen: screen, Limit: limit}
			for _, k := range kinds {
				f.Kinds = append(f.Kinds, eventlog.EventKind(k))
			}
			if since > 0 {
				f.After = time.Now().Add(-since)
			}
			out, err := executeEventsList(s.events, f)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	listCmd.Flags().StringVar(&screen, "screen", "", "only events of this screen (e.g. startWorkScreen)")
	listCmd.Flags().StringSliceVar(&kinds, "kind", nil, "only events of these kinds (repeatable)")
	listCmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events")
	listCmd.Flags().DurationVar(&since, "since", 0, "only events newer than this (e.g. 24h)")
	eventsCmd.AddCommand(listCmd)

	return eventsCmd
}
