// Package prdetails is the contract of the pull request details screen.
package prdetails

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	ActionFetchUsersRequest    ipc.ActionType = "fetchUsersRequest"
	ActionUpdateSummaryRequest ipc.ActionType = "updateSummaryRequest"
	ActionUpdateTitleRequest   ipc.ActionType = "updateTitleRequest"
	ActionUpdateReviewers      ipc.ActionType = "updateReviewers"
	ActionUpdateApprovalStatus ipc.ActionType = "updateApprovalStatus"
	ActionCheckoutBranch       ipc.ActionType = "checkoutBranch"
	ActionPostComment          ipc.ActionType = "postComment"
	ActionEditComment          ipc.ActionType = "editComment"
	ActionDeleteComment        ipc.ActionType = "deleteComment"
	ActionAddTask              ipc.ActionType = "addTask"
	ActionEditTask             ipc.ActionType = "editTask"
	ActionDeleteTask           ipc.ActionType = "deleteTask"
	ActionOpenDiff             ipc.ActionType = "openDiff"
	ActionMerge                ipc.ActionType = "merge"
	ActionOpenBuildStatus      ipc.ActionType = "openBuildStatus"
)

type FetchUsersRequest struct {
	Site     model.BitbucketSite `json:"site"`
	Query    string              `json:"query"`
	AbortKey string              `json:"abortKey,omitempty"`
	Nonce    string              `json:"nonce,omitempty"`
}

func (FetchUsersRequest) ActionType() ipc.ActionType { return ActionFetchUsersRequest }
func (a FetchUsersRequest) GetNonce() string        { return a.Nonce }

type UpdateSummaryRequest struct {
	Text  string `json:"text"`
	Nonce string `json:"nonce,omitempty"`
}

func (UpdateSummaryRequest) ActionType() ipc.ActionType { return ActionUpdateSummaryRequest }
func (a UpdateSummaryRequest) GetNonce() string        { return a.Nonce }

type UpdateTitleRequest struct {
	Text  string `json:"text"`
	Nonce string `json:"nonce,omitempty"`
}

func (UpdateTitleRequest) ActionType() ipc.ActionType { return ActionUpdateTitleRequest }
func (a UpdateTitleRequest) GetNonce() string        { return a.Nonce }

// SetReviewers replaces the reviewer list.
type SetReviewers struct {
	Reviewers []model.User `json:"reviewers"`
	Nonce     string       `json:"nonce,omitempty"`
}

func (SetReviewers) ActionType() ipc.ActionType { return ActionUpdateReviewers }
func (a SetReviewers) GetNonce() string        { return a.Nonce }

// SetApprovalStatus records the current user's verdict.
type SetApprovalStatus struct {
	Status model.ApprovalStatus `json:"status"`
	Nonce  string               `json:"nonce,omitempty"`
}

func (SetApprovalStatus) ActionType() ipc.ActionType { return ActionUpdateApprovalStatus }
func (a SetApprovalStatus) GetNonce() string        { return a.Nonce }

type CheckoutBranch struct {
	Nonce string `json:"nonce,omitempty"`
}

func (CheckoutBranch) ActionType() ipc.ActionType { return ActionCheckoutBranch }
func (a CheckoutBranch) GetNonce() string        { return a.Nonce }

// PostComment adds a comment. ParentID makes it a reply; Inline anchors it
// to a file.
type PostComment struct {
	RawText  string               `json:"rawText"`
	ParentID *int                 `json:"parentId,omitempty"`
	Inline   *model.CommentInline `json:"inline,omitempty"`
	Nonce    string               `json:"nonce,omitempty"`
}

func (PostComment) ActionType() ipc.ActionType { return ActionPostComment }
func (a PostComment) GetNonce() string        { return a.Nonce }

type EditComment struct {
	RawContent string `json:"rawContent"`
	CommentID  int    `json:"commentId"`
	Nonce      string `json:"nonce,omitempty"`
}

func (EditComment) ActionType() ipc.ActionType { return ActionEditComment }
func (a EditComment) GetNonce() string        { return a.Nonce }

type DeleteComment struct {
	Comment model.Comment `json:"comment"`
	Nonce   string        `json:"nonce,omitempty"`
}

func (DeleteComment) ActionType() ipc.ActionType { return ActionDeleteComment }
func (a DeleteComment) GetNonce() string        { return a.Nonce }

type AddTask struct {
	Content   string `json:"content"`
	CommentID *int   `json:"commentId,omitempty"`
	Nonce     string `json:"nonce,omitempty"`
}

func (AddTask) ActionType() ipc.ActionType { return ActionAddTask }
func (a AddTask) GetNonce() string        { return a.Nonce }

type EditTask struct {
	Task  model.Task `json:"task"`
	Nonce string     `json:"nonce,omitempty"`
}

func (EditTask) ActionType() ipc.ActionType { return ActionEditTask }
func (a EditTask) GetNonce() string        { return a.Nonce }

type DeleteTask struct {
	Task  model.Task `json:"task"`
	Nonce string     `json:"nonce,omitempty"`
}

func (DeleteTask) ActionType() ipc.ActionType { return ActionDeleteTask }
func (a DeleteTask) GetNonce() string        { return a.Nonce }

type OpenDiff struct {
	FileDiff model.FileDiff `json:"fileDiff"`
}

func (OpenDiff) ActionType() ipc.ActionType { return ActionOpenDiff }

// Merge merges the pull request and transitions the given related issues.
type Merge struct {
	MergeStrategy     model.MergeStrategy  `json:"mergeStrategy"`
	CommitMessage     string               `json:"commitMessage"`
	CloseSourceBranch bool                 `json:"closeSourceBranch"`
	Issues            []model.MinimalIssue `json:"issues"`
	Nonce             string               `json:"nonce,omitempty"`
}

func (Merge) ActionType() ipc.ActionType { return ActionMerge }
func (a Merge) GetNonce() string        { return a.Nonce }

type OpenBuildStatus struct {
	BuildStatus model.BuildStatus `json:"buildStatus"`
}

func (OpenBuildStatus) ActionType() ipc.ActionType { return ActionOpenBuildStatus }

func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(append(ipc.CommonActions(),
		FetchUsersRequest{},
		UpdateSummaryRequest{},
		UpdateTitleRequest{},
		SetReviewers{},
		SetApprovalStatus{},
		CheckoutBranch{},
		PostComment{},
		EditComment{},
		DeleteComment{},
		AddTask{},
		EditTask{},
		DeleteTask{},
		OpenDiff{},
		Merge{},
		OpenBuildStatus{},
	)...)
}
