package model

import "time"

// ApprovalStatus is a reviewer's verdict on a pull request.
type ApprovalStatus string

const (
	ApprovalApproved         ApprovalStatus = "APPROVED"
	ApprovalNeedsWork        ApprovalStatus = "NEEDS_WORK"
	ApprovalUnapproved       ApprovalStatus = "UNAPPROVED"
	ApprovalChangesRequested ApprovalStatus = "CHANGES_REQUESTED"
)

// BranchRef names one end of a pull request.
type BranchRef struct {
	Repo   BitbucketSite `json:"repo"`
	Branch string        `json:"branchName"`
	Commit string        `json:"commitHash"`
}

// Reviewer is a participant with a role on a pull request.
type Reviewer struct {
	User     User           `json:"user"`
	Role     string         `json:"role"`
	Status   ApprovalStatus `json:"status"`
	Approved bool           `json:"approved"`
}

// PullRequest is a Bitbucket pull request.
type PullRequest struct {
	ID                string        `json:"id"`
	Site              BitbucketSite `json:"site"`
	Title             string        `json:"title"`
	Summary           Content       `json:"summary"`
	State             string        `json:"state"`
	Author            User          `json:"author"`
	Source            BranchRef     `json:"source"`
	Destination       BranchRef     `json:"destination"`
	Participants      []Reviewer    `json:"participants"`
	URL               string        `json:"url"`
	TaskCount         int           `json:"taskCount"`
	CloseSourceBranch bool          `json:"closeSourceBranch"`
	CreatedOn         time.Time     `json:"ts"`
	UpdatedOn         time.Time     `json:"updatedTs"`
}

// Commit is one commit in a pull request or branch comparison.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  User      `json:"author"`
	Date    time.Time `json:"ts"`
	URL     string    `json:"url"`
}

// BuildStatus is a CI result reported against a commit.
type BuildStatus struct {
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	State     string    `json:"state"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"ts"`
}

// MergeStrategy is one merge method the destination repository allows.
type MergeStrategy struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	IsDefault bool   `json:"isDefault"`
}

// FileStatus is how a file changed in a diff.
type FileStatus string

const (
	FileAdded    FileStatus = "ADDED"
	FileDeleted  FileStatus = "DELETED"
	FileModified FileStatus = "MODIFIED"
	FileRenamed  FileStatus = "RENAMED"
	FileConflict FileStatus = "CONFLICT"
)

// FileDiff summarizes one changed file.
type FileDiff struct {
	File          string     `json:"file"`
	Status        FileStatus `json:"status"`
	LinesAdded    int        `json:"linesAdded"`
	LinesRemoved  int        `json:"linesRemoved"`
	OldPath       string     `json:"oldPath,omitempty"`
	NewPath       string     `json:"newPath,omitempty"`
	CommentsCount int        `json:"commentsCount"`
}

// Path returns the path the file has after the change.
func (f FileDiff) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// MergeStatus is the pull request state after a merge attempt.
type MergeStatus struct {
	State    string `json:"state"`
	Merged   bool   `json:"merged"`
	MergedBy string `json:"mergedBy,omitempty"`
}
