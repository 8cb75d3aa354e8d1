// Package welcome is the contract of the welcome screen. It accepts only the
// common actions.
package welcome

import "github.com/kastheco/atlas/ipc"

const MessageInit ipc.MessageType = "init"

type Init struct{}

func (Init) MessageType() ipc.MessageType { return MessageInit }

func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(ipc.CommonActions()...)
}

func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(), Init{})...)
}
