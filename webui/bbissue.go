package webui

import (
	"context"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/bbissue"
	"github.com/kastheco/atlas/model"
)

// BitbucketIssueState is the render state of the Bitbucket issue viewer.
type BitbucketIssueState struct {
	Status
	Issue    model.BitbucketIssue
	Comments []model.Comment
	// Users are the latest typeahead matches.
	Users []model.User
}

// SetIssueStatus shows status before the host confirms it.
type SetIssueStatus struct {
	Status string
}

func (SetIssueStatus) uiAction() {}

func ReduceBitbucketIssue(s BitbucketIssueState, a UIAction) BitbucketIssueState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		switch m := a.Message.(type) {
		case bbissue.Init:
			s = BitbucketIssueState{Status: Status{IsOffline: s.IsOffline}, Issue: m.Issue, Comments: s.Comments}
		case bbissue.InitComments:
			s.Comments = m.Comments
		case bbissue.UpdateComments:
			s.Comments = m.Comments
			s.IsLoading = false
		case bbissue.UpdateStatusResponse:
			s.Issue.State = m.Status
			s.IsLoading = false
		case bbissue.UpdateAssignee:
			s.Issue.Assignee = m.Assignee
			s.IsLoading = false
		case bbissue.FetchUsersResponse:
			s.Users = m.Users
		default:
			ipc.Unreachable(m)
		}
	case SetIssueStatus:
		s.Issue.State = a.Status
	default:
		ipc.Unreachable(a)
	}
	return s
}

// BitbucketIssueClient issues the viewer's requests.
type BitbucketIssueClient struct {
	*Client
}

func (c BitbucketIssueClient) UpdateStatus(ctx context.Context, status string) (string, error) {
	res, err := request[bbissue.UpdateStatusResponse](ctx, c.Client, func(nonce string) ipc.Action {
		return bbissue.UpdateStatusRequest{Status: status, Nonce: nonce}
	})
	return res.Status, err
}

func (c BitbucketIssueClient) AddComment(ctx context.Context, content string) ([]model.Comment, error) {
	res, err := request[bbissue.UpdateComments](ctx, c.Client, func(nonce string) ipc.Action {
		return bbissue.AddCommentRequest{Content: content, Nonce: nonce}
	})
	return res.Comments, err
}

// FetchUsers is cancelled on the host when ctx ends first.
func (c BitbucketIssueClient) FetchUsers(ctx context.Context, query string) ([]model.User, error) {
	res, err := cancellable[bbissue.FetchUsersResponse](ctx, c.Client, func(nonce, key string) ipc.Action {
		return bbissue.FetchUsersRequest{Query: query, AbortKey: key, Nonce: nonce}
	})
	return res.Users, err
}

func (c BitbucketIssueClient) Assign(ctx context.Context, accountID string) (*model.User, error) {
	res, err := request[bbissue.UpdateAssignee](ctx, c.Client, func(nonce string) ipc.Action {
		return bbissue.AssignRequest{AccountID: accountID, Nonce: nonce}
	})
	return res.Assignee, err
}

func (c BitbucketIssueClient) StartWork() error { return c.Post(bbissue.StartWork{}) }

func (c BitbucketIssueClient) CreateJiraIssue() error { return c.Post(bbissue.CreateJiraIssue{}) }
