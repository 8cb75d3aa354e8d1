package webui

import (
	"maps"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/settings"
	"github.com/kastheco/atlas/model"
)

type SettingsState struct {
	Status
	Target         settings.Target
	Config         map[string]any
	JiraSites      []model.SiteInfo
	BitbucketSites []model.SiteInfo
}

// EditSetting shows a changed value before the host saves it.
type EditSetting struct {
	Key   string
	Value any
}

func (EditSetting) uiAction() {}

func ReduceSettings(s SettingsState, a UIAction) SettingsState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		switch m := a.Message.(type) {
		case settings.Init:
			s = SettingsState{
				Status:         Status{IsOffline: s.IsOffline},
				Target:         m.Target,
				Config:         m.Config,
				JiraSites:      m.JiraSites,
				BitbucketSites: m.BitbucketSites,
			}
		case settings.SitesUpdate:
			s.JiraSites = m.JiraSites
			s.BitbucketSites = m.BitbucketSites
			s.IsLoading = false
		case settings.ConfigUpdate:
			s.Target = m.Target
			s.Config = m.Config
			s.IsLoading = false
		default:
			ipc.Unreachable(m)
		}
	case EditSetting:
		cfg := maps.Clone(s.Config)
		if cfg == nil {
			cfg = map[string]any{}
		}
		cfg[a.Key] = a.Value
		s.Config = cfg
	default:
		ipc.Unreachable(a)
	}
	return s
}

// SettingsClient posts the settings screen's actions. Replies arrive as
// sitesUpdate and configUpdate messages.
type SettingsClient struct {
	*Client
}

func (c SettingsClient) Login(site model.SiteInfo, auth model.AuthInfo) error {
	c.markLoading()
	return c.Post(settings.Login{SiteInfo: site, AuthInfo: auth})
}

func (c SettingsClient) Logout(site model.SiteInfo) error {
	return c.Post(settings.Logout{SiteInfo: site})
}

// Save applies changes and removes to target; the empty target means the
// scope on display.
func (c SettingsClient) Save(target settings.Target, changes map[string]any, removes []string) error {
	if d, ok := c.handler.(Dispatcher); ok {
		for k, v := range changes {
			d.Dispatch(EditSetting{Key: k, Value: v})
		}
	}
	return c.Post(settings.SaveSettings{Target: target, Changes: changes, Removes: removes})
}

func (c SettingsClient) OpenJSON(target settings.Target) error {
	return c.Post(settings.OpenJSON{Target: target})
}
