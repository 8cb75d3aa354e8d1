// Package startwork is the contract of the start work screen.
package startwork

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	ActionStartRequest ipc.ActionType = "startRequest"
	ActionOpenSettings ipc.ActionType = "openSettings"

	MessageInit              ipc.MessageType = "init"
	MessageStartWorkResponse ipc.MessageType = "startWorkResponse"
)

// StartRequest runs the enabled steps in order: transition and assign the
// issue, then create or check out the branch.
type StartRequest struct {
	TransitionIssueEnabled bool                `json:"transitionIssueEnabled"`
	Transition             model.Transition    `json:"transition"`
	BranchSetupEnabled     bool                `json:"branchSetupEnabled"`
	WorkspaceRepo          model.WorkspaceRepo `json:"wsRepo"`
	SourceBranch           model.Branch        `json:"sourceBranch"`
	TargetBranch           string              `json:"targetBranch"`
	Upstream               string              `json:"upstream"`
	Nonce                  string              `json:"nonce,omitempty"`
}

func (StartRequest) ActionType() ipc.ActionType { return ActionStartRequest }
func (a StartRequest) GetNonce() string        { return a.Nonce }

type OpenSettings struct{}

func (OpenSettings) ActionType() ipc.ActionType { return ActionOpenSettings }

type Init struct {
	Issue          model.MinimalIssue    `json:"issue"`
	RepoData       []model.WorkspaceRepo `json:"repoData"`
	CustomTemplate string                `json:"customTemplate"`
	CustomPrefixes []string              `json:"customPrefixes"`
}

func (Init) MessageType() ipc.MessageType { return MessageInit }

// StartWorkResponse only carries the fields of the steps that ran. The
// "transistionStatus" spelling is part of the wire format.
type StartWorkResponse struct {
	TransistionStatus string `json:"transistionStatus,omitempty"`
	Branch            string `json:"branch,omitempty"`
	Upstream          string `json:"upstream,omitempty"`
	Nonce             string `json:"nonce,omitempty"`
}

func (StartWorkResponse) MessageType() ipc.MessageType { return MessageStartWorkResponse }
func (m StartWorkResponse) GetNonce() string          { return m.Nonce }

func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(append(ipc.CommonActions(), StartRequest{}, OpenSettings{})...)
}

func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(), Init{}, StartWorkResponse{})...)
}
