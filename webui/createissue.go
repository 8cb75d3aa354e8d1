package webui

import (
	"context"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/createissue"
	"github.com/kastheco/atlas/model"
)

type CreateIssueState struct {
	Status
	Sites []model.BitbucketSite
	Site  *model.BitbucketSite
	// Created is the last issue filed from this screen.
	Created *model.BitbucketIssue
}

// SelectSite picks the repository the issue is filed against.
type SelectSite struct {
	Site model.BitbucketSite
}

func (SelectSite) uiAction() {}

func ReduceCreateIssue(s CreateIssueState, a UIAction) CreateIssueState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		switch m := a.Message.(type) {
		case createissue.Init:
			s = CreateIssueState{Status: Status{IsOffline: s.IsOffline}, Sites: m.Sites, Site: m.Site}
		case createissue.SubmitResponse:
			issue := m.Issue
			s.Created = &issue
			s.IsLoading = false
		default:
			ipc.Unreachable(m)
		}
	case SelectSite:
		site := a.Site
		s.Site = &site
	default:
		ipc.Unreachable(a)
	}
	return s
}

type CreateIssueClient struct {
	*Client
}

func (c CreateIssueClient) Submit(ctx context.Context, req createissue.SubmitIssueRequest) (model.BitbucketIssue, error) {
	res, err := request[createissue.SubmitResponse](ctx, c.Client, func(nonce string) ipc.Action {
		req.Nonce = nonce
		return req
	})
	return res.Issue, err
}
