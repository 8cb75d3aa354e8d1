// Package gitops performs the local git operations behind the start work,
// create pull request and pull request details screens. Reads go through
// go-git; mutations shell out to git so hooks and credential helpers apply.
package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/log"
	"github.com/kastheco/atlas/model"
)

// Repo is a git working tree on disk.
type Repo struct {
	path string
	repo *git.Repository
}

// Open opens the repository containing path.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Repo{path: root, repo: repo}, nil
}

// RootURI is the file URI the webviews use to identify the repository.
func (r *Repo) RootURI() string { return "file://" + filepath.ToSlash(r.path) }

// Path returns the root of the working tree.
func (r *Repo) Path() string { return r.path }

// CurrentBranch returns the checked out branch, or "" when HEAD is detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// LocalBranches lists refs/heads with their configured upstreams.
func (r *Repo) LocalBranches() ([]model.Branch, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return nil, fmt.Errorf("failed to read git config: %w", err)
	}
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var out []model.Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		b := model.Branch{Name: ref.Name().Short(), Commit: ref.Hash().String()}
		if bc, ok := cfg.Branches[b.Name]; ok && bc.Remote != "" {
			b.Remote = bc.Remote
			b.Upstream = bc.Remote + "/" + bc.Merge.Short()
		}
		out = append(out, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RemoteBranches lists remote-tracking branches, skipping symbolic HEADs.
func (r *Repo) RemoteBranches() ([]model.Branch, error) {
	iter, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	var out []model.Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() || ref.Type() != plumbing.HashReference {
			return nil
		}
		short := ref.Name().Short()
		remote, name, ok := strings.Cut(short, "/")
		if !ok || name == "HEAD" {
			return nil
		}
		out = append(out, model.Branch{Name: name, Remote: remote, Commit: ref.Hash().String()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Remote != out[j].Remote {
			return out[i].Remote < out[j].Remote
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Remotes lists the configured remotes.
func (r *Repo) Remotes() ([]model.Remote, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	out := make([]model.Remote, 0, len(remotes))
	for _, rm := range remotes {
		c := rm.Config()
		m := model.Remote{Name: c.Name}
		if len(c.URLs) > 0 {
			m.FetchURL = c.URLs[0]
			m.PushURL = c.URLs[len(c.URLs)-1]
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// HasLocalChanges reports whether the working tree is dirty.
func (r *Repo) HasLocalChanges() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read status: %w", err)
	}
	return !status.IsClean(), nil
}

// Snapshot describes the repository the way the webviews expect it.
func (r *Repo) Snapshot(defaultBranch string) (model.WorkspaceRepo, error) {
	ws := model.WorkspaceRepo{
		RootURI:       r.RootURI(),
		Name:          filepath.Base(r.path),
		DefaultBranch: defaultBranch,
	}
	var err error
	if ws.Remotes, err = r.Remotes(); err != nil {
		return ws, err
	}
	if ws.LocalBranches, err = r.LocalBranches(); err != nil {
		return ws, err
	}
	if ws.RemoteBranches, err = r.RemoteBranches(); err != nil {
		return ws, err
	}
	if ws.HasLocalChange, err = r.HasLocalChanges(); err != nil {
		return ws, err
	}
	if ws.DefaultBranch == "" {
		ws.DefaultBranch = r.guessDefaultBranch(ws.LocalBranches)
	}
	return ws, nil
}

func (r *Repo) guessDefaultBranch(local []model.Branch) string {
	for _, candidate := range []string{"main", "master", "develop"} {
		for _, b := range local {
			if b.Name == candidate {
				return candidate
			}
		}
	}
	cur, _ := r.CurrentBranch()
	return cur
}

func (r *Repo) localBranchExists(name string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), false)
	return err == nil
}

func (r *Repo) remoteBranchExists(remote, name string) bool {
	_, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remote, name), false)
	return err == nil
}

// run executes git in the repository. A failing command becomes an
// *ipc.GitError carrying git's stderr.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", r.path}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		gitErr := &ipc.GitError{
			Message: fmt.Sprintf("git %s failed", args[0]),
			Stderr:  strings.TrimSpace(stderr.String()),
			Args:    args,
		}
		log.WarningLog.Printf("%s: %s", gitErr.Message, gitErr.Stderr)
		return "", gitErr
	}
	return stdout.String(), nil
}
