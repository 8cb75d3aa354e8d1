package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/config/pmffsm"
	"github.com/kastheco/atlas/config/pmfstore"
)

var errPMFDisabled = errors.New("the PMF survey is disabled in config")

// executePMFStatus describes the survey state as of now.
func executePMFStatus(t pmfstore.Tracker, now time.Time) (string, error) {
	rec, err := t.Get()
	if err != nil {
		return "", err
	}
	due, err := t.ShouldShow(now)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "status:  %s\n", rec.Status)
	fmt.Fprintf(&sb, "shown:   %d\n", rec.ShownCount)
	if !rec.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "updated: %s\n", rec.UpdatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(&sb, "due:     %t\n", due)
	return sb.String(), nil
}

// executePMFReset makes the survey eligible again.
func executePMFReset(t pmfstore.Tracker) (pmffsm.Status, error) {
	rec, err := t.Apply(pmffsm.Reset)
	if err != nil {
		return "", err
	}
	return rec.Status, nil
}

// NewPMFCmd builds the `atlas pmf` command tree.
func NewPMFCmd() *cobra.Command {
	pmfCmd := &cobra.Command{
		Use:   "pmf",
		Short: "inspect or reset the product-market-fit survey state",
	}

	withTracker := func(fn func(cmd *cobra.Command, t pmfstore.Tracker) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := openStores(config.LoadConfig())
			if err != nil {
				return err
			}
			defer s.Close()
			if s.pmf == nil {
				return errPMFDisabled
			}
			return fn(cmd, s.pmf)
		}
	}

	pmfCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "show the survey state and whether the banner is due",
		RunE: withTracker(func(cmd *cobra.Command, t pmfstore.Tracker) error {
			out, err := executePMFStatus(t, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}),
	})
	pmfCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "make the survey eligible again",
		RunE: withTracker(func(cmd *cobra.Command, t pmfstore.Tracker) error {
			status, err := executePMFReset(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pmf → %s\n", status)
			return nil
		}),
	})
	return pmfCmd
}
