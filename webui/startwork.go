package webui

import (
	"context"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/startwork"
	"github.com/kastheco/atlas/model"
)

type StartWorkState struct {
	Status
	Issue          model.MinimalIssue
	Repos          []model.WorkspaceRepo
	CustomTemplate string
	CustomPrefixes []string
	// Result is set once work has started.
	Result *startwork.StartWorkResponse
}

func ReduceStartWork(s StartWorkState, a UIAction) StartWorkState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		switch m := a.Message.(type) {
		case startwork.Init:
			s = StartWorkState{
				Status:         Status{IsOffline: s.IsOffline},
				Issue:          m.Issue,
				Repos:          m.RepoData,
				CustomTemplate: m.CustomTemplate,
				CustomPrefixes: m.CustomPrefixes,
			}
		case startwork.StartWorkResponse:
			res := m
			s.Result = &res
			s.IsLoading = false
		default:
			ipc.Unreachable(m)
		}
	default:
		ipc.Unreachable(a)
	}
	return s
}

type StartWorkClient struct {
	*Client
}

// StartWork runs the enabled steps and returns what the host did.
func (c StartWorkClient) StartWork(ctx context.Context, req startwork.StartRequest) (startwork.StartWorkResponse, error) {
	return request[startwork.StartWorkResponse](ctx, c.Client, func(nonce string) ipc.Action {
		req.Nonce = nonce
		return req
	})
}

func (c StartWorkClient) OpenSettings() error {
	return c.Post(startwork.OpenSettings{})
}
