// Package bbissue is the contract of the Bitbucket issue viewer screen.
package bbissue

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	ActionUpdateStatusRequest ipc.ActionType = "updateStatusRequest"
	ActionAddCommentRequest   ipc.ActionType = "addCommentRequest"
	ActionFetchUsersRequest   ipc.ActionType = "fetchUsersRequest"
	ActionAssignRequest       ipc.ActionType = "assignRequest"
	ActionStartWork           ipc.ActionType = "startWork"
	ActionCreateJiraIssue     ipc.ActionType = "createJiraIssue"

	MessageInit                 ipc.MessageType = "init"
	MessageInitComments         ipc.MessageType = "initComments"
	MessageUpdateComments       ipc.MessageType = "updateComments"
	MessageUpdateStatusResponse ipc.MessageType = "updateStatusResponse"
	MessageUpdateAssignee       ipc.MessageType = "updateAssignee"
	MessageFetchUsersResponse   ipc.MessageType = "fetchUsersResponse"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Nonce  string `json:"nonce,omitempty"`
}

func (UpdateStatusRequest) ActionType() ipc.ActionType { return ActionUpdateStatusRequest }
func (a UpdateStatusRequest) GetNonce() string        { return a.Nonce }

type AddCommentRequest struct {
	Content string `json:"content"`
	Nonce   string `json:"nonce,omitempty"`
}

func (AddCommentRequest) ActionType() ipc.ActionType { return ActionAddCommentRequest }
func (a AddCommentRequest) GetNonce() string        { return a.Nonce }

// FetchUsersRequest is a cancellable typeahead lookup.
type FetchUsersRequest struct {
	Query    string `json:"query"`
	AbortKey string `json:"abortKey,omitempty"`
	Nonce    string `json:"nonce,omitempty"`
}

func (FetchUsersRequest) ActionType() ipc.ActionType { return ActionFetchUsersRequest }
func (a FetchUsersRequest) GetNonce() string        { return a.Nonce }

type AssignRequest struct {
	AccountID string `json:"accountId"`
	Nonce     string `json:"nonce,omitempty"`
}

func (AssignRequest) ActionType() ipc.ActionType { return ActionAssignRequest }
func (a AssignRequest) GetNonce() string        { return a.Nonce }

type StartWork struct{}

func (StartWork) ActionType() ipc.ActionType { return ActionStartWork }

type CreateJiraIssue struct{}

func (CreateJiraIssue) ActionType() ipc.ActionType { return ActionCreateJiraIssue }

type Init struct {
	Issue model.BitbucketIssue `json:"issue"`
}

func (Init) MessageType() ipc.MessageType { return MessageInit }

type InitComments struct {
	Comments []model.Comment `json:"comments"`
}

func (InitComments) MessageType() ipc.MessageType { return MessageInitComments }

type UpdateComments struct {
	Comments []model.Comment `json:"comments"`
	Nonce    string          `json:"nonce,omitempty"`
}

func (UpdateComments) MessageType() ipc.MessageType { return MessageUpdateComments }
func (m UpdateComments) GetNonce() string          { return m.Nonce }

type UpdateStatusResponse struct {
	Status string `json:"status"`
	Nonce  string `json:"nonce,omitempty"`
}

func (UpdateStatusResponse) MessageType() ipc.MessageType { return MessageUpdateStatusResponse }
func (m UpdateStatusResponse) GetNonce() string          { return m.Nonce }

type UpdateAssignee struct {
	Assignee *model.User `json:"assignee"`
	Nonce    string      `json:"nonce,omitempty"`
}

func (UpdateAssignee) MessageType() ipc.MessageType { return MessageUpdateAssignee }
func (m UpdateAssignee) GetNonce() string          { return m.Nonce }

type FetchUsersResponse struct {
	Users []model.User `json:"users"`
	Nonce string       `json:"nonce,omitempty"`
}

func (FetchUsersResponse) MessageType() ipc.MessageType { return MessageFetchUsersResponse }
func (m FetchUsersResponse) GetNonce() string          { return m.Nonce }

// Actions returns every action the screen accepts, common ones included.
func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(append(ipc.CommonActions(),
		UpdateStatusRequest{},
		AddCommentRequest{},
		FetchUsersRequest{},
		AssignRequest{},
		StartWork{},
		CreateJiraIssue{},
	)...)
}

// Messages returns every message the screen's UI accepts, common ones included.
func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(),
		Init{},
		InitComments{},
		UpdateComments{},
		UpdateStatusResponse{},
		UpdateAssignee{},
		FetchUsersResponse{},
	)...)
}
