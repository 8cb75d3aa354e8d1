// Package onboarding is the contract of the first-run onboarding screen.
package onboarding

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	ActionLogin        ipc.ActionType = "login"
	ActionLogout       ipc.ActionType = "logout"
	ActionSaveSettings ipc.ActionType = "saveSettings"
	ActionOpenSettings ipc.ActionType = "openSettings"

	MessageInit          ipc.MessageType = "init"
	MessageSitesUpdate   ipc.MessageType = "sitesUpdate"
	MessageLoginResponse ipc.MessageType = "loginResponse"
)

type Login struct {
	SiteInfo model.SiteInfo `json:"siteInfo"`
	AuthInfo model.AuthInfo `json:"authInfo"`
	Nonce    string         `json:"nonce,omitempty"`
}

func (Login) ActionType() ipc.ActionType { return ActionLogin }
func (a Login) GetNonce() string        { return a.Nonce }

type Logout struct {
	SiteInfo model.SiteInfo `json:"siteInfo"`
}

func (Logout) ActionType() ipc.ActionType { return ActionLogout }

type SaveSettings struct {
	Changes map[string]any `json:"changes"`
	Removes []string       `json:"removes"`
}

func (SaveSettings) ActionType() ipc.ActionType { return ActionSaveSettings }

type OpenSettings struct{}

func (OpenSettings) ActionType() ipc.ActionType { return ActionOpenSettings }

type Init struct {
	JiraSites      []model.SiteInfo `json:"jiraSites"`
	BitbucketSites []model.SiteInfo `json:"bitbucketSites"`
	IsRemote       bool             `json:"isRemote"`
}

func (Init) MessageType() ipc.MessageType { return MessageInit }

type SitesUpdate struct {
	JiraSites      []model.SiteInfo `json:"jiraSites"`
	BitbucketSites []model.SiteInfo `json:"bitbucketSites"`
}

func (SitesUpdate) MessageType() ipc.MessageType { return MessageSitesUpdate }

type LoginResponse struct {
	Nonce string `json:"nonce,omitempty"`
}

func (LoginResponse) MessageType() ipc.MessageType { return MessageLoginResponse }
func (m LoginResponse) GetNonce() string          { return m.Nonce }

func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(append(ipc.CommonActions(),
		Login{},
		Logout{},
		SaveSettings{},
		OpenSettings{},
	)...)
}

func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(),
		Init{},
		SitesUpdate{},
		LoginResponse{},
	)...)
}
