package webui

import (
	"context"
	"slices"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/prdetails"
	"github.com/kastheco/atlas/model"
)

// PRDetailsState is the render state of the pull request details screen.
// Each field fills in independently as the host's fetches land.
type PRDetailsState struct {
	Status
	PR                     model.PullRequest
	CurrentUser            model.User
	CurrentBranch          string
	Commits                []model.Commit
	Comments               []model.Comment
	InlineComments         []model.Comment
	Tasks                  []model.Task
	FileDiffs              []model.FileDiff
	BuildStatuses          []model.BuildStatus
	MergeStrategies        []model.MergeStrategy
	RelatedJiraIssues      []model.MinimalIssue
	RelatedBitbucketIssues []model.BitbucketIssue
	MergeStatus            *model.MergeStatus
	Users                  []model.User
}

// SetApproval shows the current user's verdict before the host confirms it.
type SetApproval struct {
	Status model.ApprovalStatus
}

// SetTaskComplete ticks or unticks a task before the host confirms it.
type SetTaskComplete struct {
	TaskID   string
	Complete bool
}

func (SetApproval) uiAction()     {}
func (SetTaskComplete) uiAction() {}

func ReducePRDetails(s PRDetailsState, a UIAction) PRDetailsState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		return reducePRMessage(s, a.Message)
	case SetApproval:
		s.PR.Participants = withApproval(s.PR.Participants, s.CurrentUser, a.Status)
	case SetTaskComplete:
		s.Tasks = slices.Clone(s.Tasks)
		for i := range s.Tasks {
			if s.Tasks[i].ID == a.TaskID {
				s.Tasks[i].IsComplete = a.Complete
			}
		}
	default:
		ipc.Unreachable(a)
	}
	return s
}

func reducePRMessage(s PRDetailsState, m ipc.Message) PRDetailsState {
	switch m := m.(type) {
	case prdetails.Init:
		s = PRDetailsState{
			Status:        Status{IsOffline: s.IsOffline},
			PR:            m.PR,
			CurrentUser:   m.CurrentUser,
			CurrentBranch: m.CurrentBranch,
		}
	case prdetails.UpdateSummary:
		s.PR.Summary = m.Summary
		s.IsLoading = false
	case prdetails.UpdateTitle:
		s.PR.Title = m.Title
		s.IsLoading = false
	case prdetails.UpdateCommits:
		s.Commits = m.Commits
	case prdetails.UpdateReviewers:
		s.PR.Participants = m.Reviewers
		s.IsLoading = false
	case prdetails.UpdateApprovalStatus:
		s.PR.Participants = withApproval(s.PR.Participants, s.CurrentUser, m.Status)
		s.IsLoading = false
	case prdetails.CheckedOut:
		s.CurrentBranch = m.BranchName
		s.IsLoading = false
	case prdetails.UpdateComments:
		s.Comments = m.Comments
		s.InlineComments = m.InlineComments
		if m.Nonce != "" {
			s.IsLoading = false
		}
	case prdetails.UpdateTasks:
		s.Tasks = m.Tasks
		if m.Nonce != "" {
			s.IsLoading = false
		}
	case prdetails.UpdateFileDiffs:
		s.FileDiffs = m.FileDiffs
	case prdetails.UpdateBuildStatuses:
		s.BuildStatuses = m.BuildStatuses
	case prdetails.UpdateMergeStrategies:
		s.MergeStrategies = m.MergeStrategies
	case prdetails.UpdateRelatedJiraIssues:
		s.RelatedJiraIssues = m.RelatedIssues
	case prdetails.UpdateRelatedBitbucketIssues:
		s.RelatedBitbucketIssues = m.RelatedIssues
	case prdetails.UpdateMergeStatus:
		status := m.Status
		s.MergeStatus = &status
		s.IsLoading = false
	case prdetails.FetchUsersResponse:
		s.Users = m.Users
	default:
		ipc.Unreachable(m)
	}
	return s
}

// withApproval returns participants with user's verdict set, adding user as
// a participant when absent.
func withApproval(participants []model.Reviewer, user model.User, status model.ApprovalStatus) []model.Reviewer {
	out := slices.Clone(participants)
	approved := status == model.ApprovalApproved
	for i := range out {
		if out[i].User.AccountID == user.AccountID {
			out[i].Status = status
			out[i].Approved = approved
			return out
		}
	}
	return append(out, model.Reviewer{User: user, Role: "PARTICIPANT", Status: status, Approved: approved})
}

// PRDetailsClient issues the pull request screen's requests.
type PRDetailsClient struct {
	*Client
}

func (c PRDetailsClient) FetchUsers(ctx context.Context, site model.BitbucketSite, query string) ([]model.User, error) {
	res, err := cancellable[prdetails.FetchUsersResponse](ctx, c.Client, func(nonce, key string) ipc.Action {
		return prdetails.FetchUsersRequest{Site: site, Query: query, AbortKey: key, Nonce: nonce}
	})
	return res.Users, err
}

func (c PRDetailsClient) UpdateSummary(ctx context.Context, text string) (model.Content, error) {
	res, err := request[prdetails.UpdateSummary](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.UpdateSummaryRequest{Text: text, Nonce: nonce}
	})
	return res.Summary, err
}

func (c PRDetailsClient) UpdateTitle(ctx context.Context, text string) (string, error) {
	res, err := request[prdetails.UpdateTitle](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.UpdateTitleRequest{Text: text, Nonce: nonce}
	})
	return res.Title, err
}

func (c PRDetailsClient) SetReviewers(ctx context.Context, users []model.User) ([]model.Reviewer, error) {
	res, err := request[prdetails.UpdateReviewers](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.SetReviewers{Reviewers: users, Nonce: nonce}
	})
	return res.Reviewers, err
}

func (c PRDetailsClient) SetApprovalStatus(ctx context.Context, status model.ApprovalStatus) (model.ApprovalStatus, error) {
	if d, ok := c.handler.(Dispatcher); ok {
		d.Dispatch(SetApproval{Status: status})
	}
	res, err := request[prdetails.UpdateApprovalStatus](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.SetApprovalStatus{Status: status, Nonce: nonce}
	})
	return res.Status, err
}

func (c PRDetailsClient) Checkout(ctx context.Context) (string, error) {
	res, err := request[prdetails.CheckedOut](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.CheckoutBranch{Nonce: nonce}
	})
	return res.BranchName, err
}

func (c PRDetailsClient) PostComment(ctx context.Context, text string, parentID *int, inline *model.CommentInline) (prdetails.UpdateComments, error) {
	return request[prdetails.UpdateComments](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.PostComment{RawText: text, ParentID: parentID, Inline: inline, Nonce: nonce}
	})
}

func (c PRDetailsClient) EditComment(ctx context.Context, commentID int, text string) (prdetails.UpdateComments, error) {
	return request[prdetails.UpdateComments](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.EditComment{RawContent: text, CommentID: commentID, Nonce: nonce}
	})
}

func (c PRDetailsClient) DeleteComment(ctx context.Context, comment model.Comment) (prdetails.UpdateComments, error) {
	return request[prdetails.UpdateComments](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.DeleteComment{Comment: comment, Nonce: nonce}
	})
}

func (c PRDetailsClient) AddTask(ctx context.Context, content string, commentID *int) ([]model.Task, error) {
	res, err := request[prdetails.UpdateTasks](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.AddTask{Content: content, CommentID: commentID, Nonce: nonce}
	})
	return res.Tasks, err
}

func (c PRDetailsClient) EditTask(ctx context.Context, task model.Task) ([]model.Task, error) {
	if d, ok := c.handler.(Dispatcher); ok {
		d.Dispatch(SetTaskComplete{TaskID: task.ID, Complete: task.IsComplete})
	}
	res, err := request[prdetails.UpdateTasks](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.EditTask{Task: task, Nonce: nonce}
	})
	return res.Tasks, err
}

func (c PRDetailsClient) DeleteTask(ctx context.Context, task model.Task) ([]model.Task, error) {
	res, err := request[prdetails.UpdateTasks](ctx, c.Client, func(nonce string) ipc.Action {
		return prdetails.DeleteTask{Task: task, Nonce: nonce}
	})
	return res.Tasks, err
}

func (c PRDetailsClient) Merge(ctx context.Context, req prdetails.Merge) (model.MergeStatus, error) {
	res, err := request[prdetails.UpdateMergeStatus](ctx, c.Client, func(nonce string) ipc.Action {
		req.Nonce = nonce
		return req
	})
	return res.Status, err
}

func (c PRDetailsClient) OpenDiff(diff model.FileDiff) error {
	return c.Post(prdetails.OpenDiff{FileDiff: diff})
}

func (c PRDetailsClient) OpenBuildStatus(status model.BuildStatus) error {
	return c.Post(prdetails.OpenBuildStatus{BuildStatus: status})
}
