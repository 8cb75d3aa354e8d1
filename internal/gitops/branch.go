package gitops

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kastheco/atlas/log"
	"github.com/kastheco/atlas/model"
)

// CreateOrCheckoutBranch switches to name, creating it when needed. An
// existing local branch is checked out as is; an existing remote branch on
// remote is tracked; otherwise the branch starts at source. When remote is
// set and the branch has no upstream yet, it is pushed with tracking.
func (r *Repo) CreateOrCheckoutBranch(ctx context.Context, name string, source model.Branch, remote string) (model.Branch, error) {
	if name == "" {
		return model.Branch{}, fmt.Errorf("branch name required")
	}

	switch {
	case r.localBranchExists(name):
		if _, err := r.run(ctx, "checkout", name); err != nil {
			return model.Branch{}, err
		}
	case remote != "" && r.remoteBranchExists(remote, name):
		if _, err := r.run(ctx, "checkout", "-b", name, "--track", remote+"/"+name); err != nil {
			return model.Branch{}, err
		}
	default:
		start := source.Name
		if source.Remote != "" {
			start = source.Remote + "/" + source.Name
		}
		if start == "" {
			return model.Branch{}, fmt.Errorf("source branch required to create %s", name)
		}
		if _, err := r.run(ctx, "checkout", "-b", name, start); err != nil {
			return model.Branch{}, err
		}
		log.InfoLog.Printf("created branch %s from %s", name, start)
	}

	branch, err := r.branchInfo(name)
	if err != nil {
		return model.Branch{}, err
	}
	if remote == "" || branch.Upstream != "" {
		return branch, nil
	}
	if err := r.Push(ctx, remote, name, true); err != nil {
		return model.Branch{}, err
	}
	return r.branchInfo(name)
}

// Checkout switches to an existing branch, fetching it from remote first
// when it is only known remotely.
func (r *Repo) Checkout(ctx context.Context, name, remote string) error {
	if r.localBranchExists(name) {
		_, err := r.run(ctx, "checkout", name)
		return err
	}
	if remote == "" {
		remote = "origin"
	}
	if _, err := r.run(ctx, "fetch", remote, name); err != nil {
		return err
	}
	_, err := r.run(ctx, "checkout", "-b", name, "--track", remote+"/"+name)
	return err
}

// Push pushes branch to remote, optionally recording it as the upstream.
func (r *Repo) Push(ctx context.Context, remote, branch string, setUpstream bool) error {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	args = append(args, remote, branch)
	_, err := r.run(ctx, args...)
	return err
}

func (r *Repo) branchInfo(name string) (model.Branch, error) {
	local, err := r.LocalBranches()
	if err != nil {
		return model.Branch{}, err
	}
	for _, b := range local {
		if b.Name == name {
			return b, nil
		}
	}
	return model.Branch{}, fmt.Errorf("branch %s not found after checkout", name)
}

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Log lists the commits reachable from head but not from base, newest first.
func (r *Repo) Log(ctx context.Context, base, head string) ([]model.Commit, error) {
	format := strings.Join([]string{"%H", "%an", "%ae", "%aI", "%B"}, fieldSep) + recordSep
	out, err := r.run(ctx, "log", "--format="+format, base+".."+head)
	if err != nil {
		return nil, err
	}
	var commits []model.Commit
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimLeft(rec, "\n")
		if rec == "" {
			continue
		}
		f := strings.SplitN(rec, fieldSep, 5)
		if len(f) != 5 {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, f[3])
		commits = append(commits, model.Commit{
			Hash:    f[0],
			Author:  model.User{DisplayName: f[1], Email: f[2]},
			Date:    ts,
			Message: strings.TrimSpace(f[4]),
		})
	}
	return commits, nil
}

// DiffStat summarizes the files changed on head since it forked from base.
func (r *Repo) DiffStat(ctx context.Context, base, head string) ([]model.FileDiff, error) {
	rng := base + "..." + head
	statusOut, err := r.run(ctx, "diff", "--name-status", "-M", "-z", rng)
	if err != nil {
		return nil, err
	}
	numOut, err := r.run(ctx, "diff", "--numstat", "-M", "-z", rng)
	if err != nil {
		return nil, err
	}
	diffs := parseNameStatus(statusOut)
	counts := parseNumstat(numOut)
	for i := range diffs {
		if c, ok := counts[diffs[i].Path()]; ok {
			diffs[i].LinesAdded = c[0]
			diffs[i].LinesRemoved = c[1]
		}
	}
	return diffs, nil
}

// parseNameStatus reads `git diff --name-status -z` output.
func parseNameStatus(out string) []model.FileDiff {
	tok := strings.Split(strings.TrimSuffix(out, "\x00"), "\x00")
	var diffs []model.FileDiff
	for i := 0; i < len(tok); i++ {
		code := tok[i]
		if code == "" {
			continue
		}
		var d model.FileDiff
		switch code[0] {
		case 'R', 'C':
			if i+2 >= len(tok) {
				return diffs
			}
			d = model.FileDiff{Status: model.FileRenamed, OldPath: tok[i+1], NewPath: tok[i+2], File: tok[i+2]}
			i += 2
		default:
			if i+1 >= len(tok) {
				return diffs
			}
			d = model.FileDiff{Status: fileStatus(code[0]), File: tok[i+1]}
			switch d.Status {
			case model.FileDeleted:
				d.OldPath = tok[i+1]
			default:
				d.NewPath = tok[i+1]
			}
			i++
		}
		diffs = append(diffs, d)
	}
	return diffs
}

func fileStatus(code byte) model.FileStatus {
	switch code {
	case 'A':
		return model.FileAdded
	case 'D':
		return model.FileDeleted
	case 'U':
		return model.FileConflict
	default:
		return model.FileModified
	}
}

// parseNumstat reads `git diff --numstat -z` output into path -> {added, removed}.
// Binary files report "-" and count as zero.
func parseNumstat(out string) map[string][2]int {
	counts := make(map[string][2]int)
	tok := strings.Split(strings.TrimSuffix(out, "\x00"), "\x00")
	for i := 0; i < len(tok); i++ {
		fields := strings.SplitN(tok[i], "\t", 3)
		if len(fields) != 3 {
			continue
		}
		added, _ := strconv.Atoi(fields[0])
		removed, _ := strconv.Atoi(fields[1])
		path := fields[2]
		if path == "" {
			// Renames put "old\0new" after an empty path field.
			if i+2 >= len(tok) {
				break
			}
			path = tok[i+2]
			i += 2
		}
		counts[path] = [2]int{added, removed}
	}
	return counts
}
