// Package createissue is the contract of the create Bitbucket issue screen.
package createissue

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	ActionSubmitIssueRequest ipc.ActionType = "submitIssueRequest"

	MessageInit           ipc.MessageType = "init"
	MessageSubmitResponse ipc.MessageType = "submitResponse"
)

type SubmitIssueRequest struct {
	Site        model.BitbucketSite `json:"site"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Kind        string              `json:"kind"`
	Priority    string              `json:"priority"`
	Nonce       string              `json:"nonce,omitempty"`
}

func (SubmitIssueRequest) ActionType() ipc.ActionType { return ActionSubmitIssueRequest }
func (a SubmitIssueRequest) GetNonce() string        { return a.Nonce }

// Init lists the repositories an issue can be filed against. Site is the
// preselected one.
type Init struct {
	Sites []model.BitbucketSite `json:"sites"`
	Site  *model.BitbucketSite  `json:"site,omitempty"`
}

func (Init) MessageType() ipc.MessageType { return MessageInit }

type SubmitResponse struct {
	Issue model.BitbucketIssue `json:"issue"`
	Nonce string               `json:"nonce,omitempty"`
}

func (SubmitResponse) MessageType() ipc.MessageType { return MessageSubmitResponse }
func (m SubmitResponse) GetNonce() string          { return m.Nonce }

func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(append(ipc.CommonActions(), SubmitIssueRequest{})...)
}

func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(), Init{}, SubmitResponse{})...)
}
