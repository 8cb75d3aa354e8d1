package prdetails

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	MessageInit                         ipc.MessageType = "init"
	MessageUpdateSummary                ipc.MessageType = "updateSummary"
	MessageUpdateTitle                  ipc.MessageType = "updateTitle"
	MessageUpdateCommits                ipc.MessageType = "updateCommits"
	MessageUpdateReviewers              ipc.MessageType = "updateReviewers"
	MessageUpdateApprovalStatus         ipc.MessageType = "updateApprovalStatus"
	MessageCheckedOut                   ipc.MessageType = "checkedOut"
	MessageUpdateComments               ipc.MessageType = "updateComments"
	MessageUpdateTasks                  ipc.MessageType = "updateTasks"
	MessageUpdateFileDiffs              ipc.MessageType = "updateFileDiffs"
	MessageUpdateBuildStatuses          ipc.MessageType = "updateBuildStatuses"
	MessageUpdateMergeStrategies        ipc.MessageType = "updateMergeStrategies"
	MessageUpdateRelatedJiraIssues      ipc.MessageType = "updateRelatedJiraIssues"
	MessageUpdateRelatedBitbucketIssues ipc.MessageType = "updateRelatedBitbucketIssues"
	MessageUpdateMergeStatus            ipc.MessageType = "updateMergeStatus"
	MessageFetchUsersResponse           ipc.MessageType = "fetchUsersResponse"
)

type Init struct {
	PR            model.PullRequest `json:"pr"`
	CurrentUser   model.User        `json:"currentUser"`
	CurrentBranch string            `json:"currentBranchName"`
}

func (Init) MessageType() ipc.MessageType { return MessageInit }

type UpdateSummary struct {
	Summary model.Content `json:"summary"`
	Nonce   string        `json:"nonce,omitempty"`
}

func (UpdateSummary) MessageType() ipc.MessageType { return MessageUpdateSummary }
func (m UpdateSummary) GetNonce() string          { return m.Nonce }

type UpdateTitle struct {
	Title string `json:"title"`
	Nonce string `json:"nonce,omitempty"`
}

func (UpdateTitle) MessageType() ipc.MessageType { return MessageUpdateTitle }
func (m UpdateTitle) GetNonce() string          { return m.Nonce }

type UpdateCommits struct {
	Commits []model.Commit `json:"commits"`
}

func (UpdateCommits) MessageType() ipc.MessageType { return MessageUpdateCommits }

type UpdateReviewers struct {
	Reviewers []model.Reviewer `json:"reviewers"`
	Nonce     string           `json:"nonce,omitempty"`
}

func (UpdateReviewers) MessageType() ipc.MessageType { return MessageUpdateReviewers }
func (m UpdateReviewers) GetNonce() string          { return m.Nonce }

type UpdateApprovalStatus struct {
	Status model.ApprovalStatus `json:"status"`
	Nonce  string               `json:"nonce,omitempty"`
}

func (UpdateApprovalStatus) MessageType() ipc.MessageType { return MessageUpdateApprovalStatus }
func (m UpdateApprovalStatus) GetNonce() string          { return m.Nonce }

type CheckedOut struct {
	BranchName string `json:"branchName"`
	Nonce      string `json:"nonce,omitempty"`
}

func (CheckedOut) MessageType() ipc.MessageType { return MessageCheckedOut }
func (m CheckedOut) GetNonce() string          { return m.Nonce }

// UpdateComments carries the full comment set split into page-level and
// inline comments.
type UpdateComments struct {
	Comments       []model.Comment `json:"comments"`
	InlineComments []model.Comment `json:"inlineComments"`
	Nonce          string          `json:"nonce,omitempty"`
}

func (UpdateComments) MessageType() ipc.MessageType { return MessageUpdateComments }
func (m UpdateComments) GetNonce() string          { return m.Nonce }

type UpdateTasks struct {
	Tasks []model.Task `json:"tasks"`
	Nonce string       `json:"nonce,omitempty"`
}

func (UpdateTasks) MessageType() ipc.MessageType { return MessageUpdateTasks }
func (m UpdateTasks) GetNonce() string          { return m.Nonce }

type UpdateFileDiffs struct {
	FileDiffs []model.FileDiff `json:"fileDiffs"`
}

func (UpdateFileDiffs) MessageType() ipc.MessageType { return MessageUpdateFileDiffs }

type UpdateBuildStatuses struct {
	BuildStatuses []model.BuildStatus `json:"buildStatuses"`
}

func (UpdateBuildStatuses) MessageType() ipc.MessageType { return MessageUpdateBuildStatuses }

type UpdateMergeStrategies struct {
	MergeStrategies []model.MergeStrategy `json:"mergeStrategies"`
}

func (UpdateMergeStrategies) MessageType() ipc.MessageType { return MessageUpdateMergeStrategies }

type UpdateRelatedJiraIssues struct {
	RelatedIssues []model.MinimalIssue `json:"relatedIssues"`
}

func (UpdateRelatedJiraIssues) MessageType() ipc.MessageType { return MessageUpdateRelatedJiraIssues }

type UpdateRelatedBitbucketIssues struct {
	RelatedIssues []model.BitbucketIssue `json:"relatedIssues"`
}

func (UpdateRelatedBitbucketIssues) MessageType() ipc.MessageType {
	return MessageUpdateRelatedBitbucketIssues
}

type UpdateMergeStatus struct {
	Status model.MergeStatus `json:"mergeStatus"`
	Nonce  string            `json:"nonce,omitempty"`
}

func (UpdateMergeStatus) MessageType() ipc.MessageType { return MessageUpdateMergeStatus }
func (m UpdateMergeStatus) GetNonce() string          { return m.Nonce }

type FetchUsersResponse struct {
	Users []model.User `json:"users"`
	Nonce string       `json:"nonce,omitempty"`
}

func (FetchUsersResponse) MessageType() ipc.MessageType { return MessageFetchUsersResponse }
func (m FetchUsersResponse) GetNonce() string          { return m.Nonce }

func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(),
		Init{},
		UpdateSummary{},
		UpdateTitle{},
		UpdateCommits{},
		UpdateReviewers{},
		UpdateApprovalStatus{},
		CheckedOut{},
		UpdateComments{},
		UpdateTasks{},
		UpdateFileDiffs{},
		UpdateBuildStatuses{},
		UpdateMergeStrategies{},
		UpdateRelatedJiraIssues{},
		UpdateRelatedBitbucketIssues{},
		UpdateMergeStatus{},
		FetchUsersResponse{},
	)...)
}
