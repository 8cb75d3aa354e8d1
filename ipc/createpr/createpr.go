// Package createpr is the contract of the create pull request screen.
package createpr

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	ActionFetchDetails        ipc.ActionType = "fetchDetails"
	ActionFetchIssue          ipc.ActionType = "fetchIssue"
	ActionFetchUsersRequest   ipc.ActionType = "fetchUsersRequest"
	ActionSubmitCreateRequest ipc.ActionType = "submitCreateRequest"
	ActionOpenDiff            ipc.ActionType = "openDiff"

	MessageInit               ipc.MessageType = "init"
	MessageUpdateDetails      ipc.MessageType = "updateDetails"
	MessageUpdateIssue        ipc.MessageType = "updateIssue"
	MessageFetchUsersResponse ipc.MessageType = "fetchUsersResponse"
	MessageSubmitResponse     ipc.MessageType = "submitResponse"
)

// FetchDetails asks for the commits and file changes between two branches.
type FetchDetails struct {
	Repo              model.WorkspaceRepo `json:"repo"`
	SourceBranch      model.Branch        `json:"sourceBranch"`
	DestinationBranch model.Branch        `json:"destinationBranch"`
}

func (FetchDetails) ActionType() ipc.ActionType { return ActionFetchDetails }

// FetchIssue looks up the Jira issue whose key appears in BranchName.
type FetchIssue struct {
	BranchName string `json:"branchName"`
}

func (FetchIssue) ActionType() ipc.ActionType { return ActionFetchIssue }

type FetchUsersRequest struct {
	Site     model.BitbucketSite `json:"site"`
	Query    string              `json:"query"`
	AbortKey string              `json:"abortKey,omitempty"`
	Nonce    string              `json:"nonce,omitempty"`
}

func (FetchUsersRequest) ActionType() ipc.ActionType { return ActionFetchUsersRequest }
func (a FetchUsersRequest) GetNonce() string        { return a.Nonce }

// SubmitCreateRequest creates the pull request, optionally pushing local
// commits first and transitioning the linked Jira issue afterwards.
type SubmitCreateRequest struct {
	Repo              model.WorkspaceRepo `json:"workspaceRepo"`
	Site              model.BitbucketSite `json:"site"`
	Reviewers         []model.User        `json:"reviewers"`
	Title             string              `json:"title"`
	Summary           string              `json:"summary"`
	SourceBranch      model.Branch        `json:"sourceSiteBranch"`
	DestinationBranch model.Branch        `json:"destinationBranch"`
	PushLocalChanges  bool                `json:"pushLocalChanges"`
	CloseSourceBranch bool                `json:"closeSourceBranch"`
	Issue             *model.MinimalIssue `json:"issue,omitempty"`
	Transition        *model.Transition   `json:"transition,omitempty"`
	Nonce             string              `json:"nonce,omitempty"`
}

func (SubmitCreateRequest) ActionType() ipc.ActionType { return ActionSubmitCreateRequest }
func (a SubmitCreateRequest) GetNonce() string        { return a.Nonce }

type OpenDiff struct {
	FileDiff model.FileDiff `json:"fileDiff"`
}

func (OpenDiff) ActionType() ipc.ActionType { return ActionOpenDiff }

type Init struct {
	Repositories []model.WorkspaceRepo `json:"repositories"`
}

func (Init) MessageType() ipc.MessageType { return MessageInit }

type UpdateDetails struct {
	Commits   []model.Commit   `json:"commits"`
	FileDiffs []model.FileDiff `json:"fileDiffs"`
}

func (UpdateDetails) MessageType() ipc.MessageType { return MessageUpdateDetails }

// UpdateIssue carries the issue matched from a branch name, or nil.
type UpdateIssue struct {
	Issue *model.MinimalIssue `json:"issue"`
}

func (UpdateIssue) MessageType() ipc.MessageType { return MessageUpdateIssue }

type FetchUsersResponse struct {
	Users []model.User `json:"users"`
	Nonce string       `json:"nonce,omitempty"`
}

func (FetchUsersResponse) MessageType() ipc.MessageType { return MessageFetchUsersResponse }
func (m FetchUsersResponse) GetNonce() string          { return m.Nonce }

type SubmitResponse struct {
	PR    model.PullRequest `json:"pr"`
	Nonce string            `json:"nonce,omitempty"`
}

func (SubmitResponse) MessageType() ipc.MessageType { return MessageSubmitResponse }
func (m SubmitResponse) GetNonce() string          { return m.Nonce }

func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(append(ipc.CommonActions(),
		FetchDetails{},
		FetchIssue{},
		FetchUsersRequest{},
		SubmitCreateRequest{},
		OpenDiff{},
	)...)
}

func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(),
		Init{},
		UpdateDetails{},
		UpdateIssue{},
		FetchUsersResponse{},
		SubmitResponse{},
	)...)
}
