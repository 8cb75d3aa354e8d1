// Package settings is the contract of the settings screen.
package settings

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	ActionLogin        ipc.ActionType = "login"
	ActionLogout       ipc.ActionType = "logout"
	ActionSaveSettings ipc.ActionType = "saveSettings"
	ActionOpenJSON     ipc.ActionType = "openJSON"

	MessageInit         ipc.MessageType = "init"
	MessageSitesUpdate  ipc.MessageType = "sitesUpdate"
	MessageConfigUpdate ipc.MessageType = "configUpdate"
)

// Target selects which configuration scope the screen edits.
type Target string

const (
	TargetUser      Target = "user"
	TargetWorkspace Target = "workspace"
)

type Login struct {
	SiteInfo model.SiteInfo `json:"siteInfo"`
	AuthInfo model.AuthInfo `json:"authInfo"`
}

func (Login) ActionType() ipc.ActionType { return ActionLogin }

type Logout struct {
	SiteInfo model.SiteInfo `json:"siteInfo"`
}

func (Logout) ActionType() ipc.ActionType { return ActionLogout }

// SaveSettings sets every key in Changes and unsets every key in Removes.
type SaveSettings struct {
	Target  Target         `json:"target"`
	Changes map[string]any `json:"changes"`
	Removes []string       `json:"removes"`
}

func (SaveSettings) ActionType() ipc.ActionType { return ActionSaveSettings }

type OpenJSON struct {
	Target Target `json:"target"`
}

func (OpenJSON) ActionType() ipc.ActionType { return ActionOpenJSON }

type Init struct {
	Config         map[string]any   `json:"config"`
	JiraSites      []model.SiteInfo `json:"jiraSites"`
	BitbucketSites []model.SiteInfo `json:"bitbucketSites"`
	Target         Target           `json:"target"`
}

func (Init) MessageType() ipc.MessageType { return MessageInit }

type SitesUpdate struct {
	JiraSites      []model.SiteInfo `json:"jiraSites"`
	BitbucketSites []model.SiteInfo `json:"bitbucketSites"`
}

func (SitesUpdate) MessageType() ipc.MessageType { return MessageSitesUpdate }

type ConfigUpdate struct {
	Config map[string]any `json:"config"`
	Target Target         `json:"target"`
}

func (ConfigUpdate) MessageType() ipc.MessageType { return MessageConfigUpdate }

func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(append(ipc.CommonActions(),
		Login{},
		Logout{},
		SaveSettings{},
		OpenJSON{},
	)...)
}

func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(),
		Init{},
		SitesUpdate{},
		ConfigUpdate{},
	)...)
}
