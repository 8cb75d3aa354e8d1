// Package pipeline is the contract of the pipeline summary screen.
package pipeline

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/model"
)

const (
	ActionReRunPipeline    ipc.ActionType = "reRunPipeline"
	ActionFetchLogRange    ipc.ActionType = "fetchLogRange"
	ActionViewInWebBrowser ipc.ActionType = "viewInWebBrowser"

	MessageUpdate         ipc.MessageType = "update"
	MessageStepsUpdate    ipc.MessageType = "stepsUpdate"
	MessageLogRangeUpdate ipc.MessageType = "logRangeUpdate"
)

type ReRunPipeline struct{}

func (ReRunPipeline) ActionType() ipc.ActionType { return ActionReRunPipeline }

type FetchLogRange struct {
	StepID    string             `json:"stepId"`
	Reference model.LogReference `json:"reference"`
}

func (FetchLogRange) ActionType() ipc.ActionType { return ActionFetchLogRange }

type ViewInWebBrowser struct{}

func (ViewInWebBrowser) ActionType() ipc.ActionType { return ActionViewInWebBrowser }

type Update struct {
	Pipeline model.Pipeline `json:"pipeline"`
}

func (Update) MessageType() ipc.MessageType { return MessageUpdate }

type StepsUpdate struct {
	Steps []model.PipelineStep `json:"steps"`
}

func (StepsUpdate) MessageType() ipc.MessageType { return MessageStepsUpdate }

type LogRangeUpdate struct {
	StepID    string             `json:"stepId"`
	Reference model.LogReference `json:"reference"`
	Lines     []string           `json:"lines"`
}

func (LogRangeUpdate) MessageType() ipc.MessageType { return MessageLogRangeUpdate }

func Actions() *ipc.ActionRegistry {
	return ipc.NewActionRegistry(append(ipc.CommonActions(),
		ReRunPipeline{},
		FetchLogRange{},
		ViewInWebBrowser{},
	)...)
}

func Messages() *ipc.MessageRegistry {
	return ipc.NewMessageRegistry(append(ipc.CommonMessages(),
		Update{},
		StepsUpdate{},
		LogRangeUpdate{},
	)...)
}
