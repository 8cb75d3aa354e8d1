package webui

import (
	"context"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/onboarding"
	"github.com/kastheco/atlas/model"
)

type OnboardingState struct {
	Status
	JiraSites      []model.SiteInfo
	BitbucketSites []model.SiteInfo
	IsRemote       bool
}

func ReduceOnboarding(s OnboardingState, a UIAction) OnboardingState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		switch m := a.Message.(type) {
		case onboarding.Init:
			s = OnboardingState{
				Status:         Status{IsOffline: s.IsOffline},
				JiraSites:      m.JiraSites,
				BitbucketSites: m.BitbucketSites,
				IsRemote:       m.IsRemote,
			}
		case onboarding.SitesUpdate:
			s.JiraSites = m.JiraSites
			s.BitbucketSites = m.BitbucketSites
		case onboarding.LoginResponse:
			s.IsLoading = false
		default:
			ipc.Unreachable(m)
		}
	default:
		ipc.Unreachable(a)
	}
	return s
}

type OnboardingClient struct {
	*Client
}

// Login returns once the host has verified the credentials.
func (c OnboardingClient) Login(ctx context.Context, site model.SiteInfo, auth model.AuthInfo) error {
	_, err := request[onboarding.LoginResponse](ctx, c.Client, func(nonce string) ipc.Action {
		return onboarding.Login{SiteInfo: site, AuthInfo: auth, Nonce: nonce}
	})
	return err
}

func (c OnboardingClient) Logout(site model.SiteInfo) error {
	return c.Post(onboarding.Logout{SiteInfo: site})
}

func (c OnboardingClient) SaveSettings(changes map[string]any, removes []string) error {
	return c.Post(onboarding.SaveSettings{Changes: changes, Removes: removes})
}

func (c OnboardingClient) OpenSettings() error {
	return c.Post(onboarding.OpenSettings{})
}
