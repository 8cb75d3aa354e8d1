package webui

import (
	"context"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/createpr"
	"github.com/kastheco/atlas/model"
)

type CreatePRState struct {
	Status
	Repositories []model.WorkspaceRepo
	Repo         *model.WorkspaceRepo
	Commits      []model.Commit
	FileDiffs    []model.FileDiff
	Issue        *model.MinimalIssue
	Users        []model.User
	Created      *model.PullRequest
}

// SelectRepo picks the repository and drops details of the previous one.
type SelectRepo struct {
	Repo model.WorkspaceRepo
}

func (SelectRepo) uiAction() {}

func ReduceCreatePR(s CreatePRState, a UIAction) CreatePRState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		switch m := a.Message.(type) {
		case createpr.Init:
			s = CreatePRState{Status: Status{IsOffline: s.IsOffline}, Repositories: m.Repositories}
			if len(m.Repositories) > 0 {
				repo := m.Repositories[0]
				s.Repo = &repo
			}
		case createpr.UpdateDetails:
			s.Commits = m.Commits
			s.FileDiffs = m.FileDiffs
			s.IsLoading = false
		case createpr.UpdateIssue:
			s.Issue = m.Issue
		case createpr.FetchUsersResponse:
			s.Users = m.Users
		case createpr.SubmitResponse:
			pr := m.PR
			s.Created = &pr
			s.IsLoading = false
		default:
			ipc.Unreachable(m)
		}
	case SelectRepo:
		repo := a.Repo
		s.Repo = &repo
		s.Commits = nil
		s.FileDiffs = nil
		s.Issue = nil
	default:
		ipc.Unreachable(a)
	}
	return s
}

type CreatePRClient struct {
	*Client
}

// FetchDetails asks for the comparison of source against destination. The
// result arrives as an updateDetails message.
func (c CreatePRClient) FetchDetails(repo model.WorkspaceRepo, source, destination model.Branch) error {
	c.markLoading()
	return c.Post(createpr.FetchDetails{Repo: repo, SourceBranch: source, DestinationBranch: destination})
}

func (c CreatePRClient) FetchIssue(branch string) error {
	return c.Post(createpr.FetchIssue{BranchName: branch})
}

func (c CreatePRClient) FetchUsers(ctx context.Context, site model.BitbucketSite, query string) ([]model.User, error) {
	res, err := cancellable[createpr.FetchUsersResponse](ctx, c.Client, func(nonce, key string) ipc.Action {
		return createpr.FetchUsersRequest{Site: site, Query: query, AbortKey: key, Nonce: nonce}
	})
	return res.Users, err
}

func (c CreatePRClient) Submit(ctx context.Context, req createpr.SubmitCreateRequest) (model.PullRequest, error) {
	res, err := request[createpr.SubmitResponse](ctx, c.Client, func(nonce string) ipc.Action {
		req.Nonce = nonce
		return req
	})
	return res.PR, err
}

func (c CreatePRClient) OpenDiff(diff model.FileDiff) error {
	return c.Post(createpr.OpenDiff{FileDiff: diff})
}
