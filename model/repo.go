package model

// Remote is a git remote of a workspace repository.
type Remote struct {
	Name     string `json:"name"`
	FetchURL string `json:"fetchUrl"`
	PushURL  string `json:"pushUrl,omitempty"`
}

// Branch is a local or remote-tracking git branch.
type Branch struct {
	Name     string `json:"name"`
	Remote   string `json:"remote,omitempty"`
	Upstream string `json:"upstream,omitempty"`
	Commit   string `json:"commit,omitempty"`
}

// WorkspaceRepo is a git repository open in the editor workspace, with the
// Bitbucket site it maps to when one is known.
type WorkspaceRepo struct {
	RootURI        string         `json:"rootUri"`
	Name           string         `json:"name"`
	Site           *BitbucketSite `json:"site,omitempty"`
	Remotes        []Remote       `json:"remotes"`
	LocalBranches  []Branch       `json:"localBranches"`
	RemoteBranches []Branch       `json:"remoteBranches"`
	DefaultBranch  string         `json:"developmentBranch"`
	HasLocalChange bool           `json:"hasLocalChanges"`
	BranchTypes    []BranchType   `json:"branchTypes,omitempty"`
}

// BranchType is a branch-name prefix category such as "feature/".
type BranchType struct {
	Kind   string `json:"kind"`
	Prefix string `json:"prefix"`
}

// FindLocalBranch reports the local branch called name.
func (r WorkspaceRepo) FindLocalBranch(name string) (Branch, bool) {
	for _, b := range r.LocalBranches {
		if b.Name == name {
			return b, true
		}
	}
	return Branch{}, false
}
