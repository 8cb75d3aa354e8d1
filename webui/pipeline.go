package webui

import (
	"slices"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/pipeline"
	"github.com/kastheco/atlas/model"
)

type PipelineState struct {
	Status
	Pipeline model.Pipeline
	Steps    []model.PipelineStep
}

func ReducePipeline(s PipelineState, a UIAction) PipelineState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		switch m := a.Message.(type) {
		case pipeline.Update:
			s.Pipeline = m.Pipeline
			s.IsLoading = false
		case pipeline.StepsUpdate:
			s.Steps = m.Steps
		case pipeline.LogRangeUpdate:
			s.Steps = withLogs(s.Steps, m)
		default:
			ipc.Unreachable(m)
		}
	default:
		ipc.Unreachable(a)
	}
	return s
}

// withLogs copies steps with m's lines set on the command it references.
// Unknown steps and commands are ignored.
func withLogs(steps []model.PipelineStep, m pipeline.LogRangeUpdate) []model.PipelineStep {
	i := slices.IndexFunc(steps, func(st model.PipelineStep) bool { return st.UUID == m.StepID })
	if i < 0 {
		return steps
	}
	step := steps[i]
	var cmds *[]model.PipelineCommand
	switch m.Reference.Stage {
	case "setup":
		cmds = &step.Setup
	case "script":
		cmds = &step.Script
	case "teardown":
		cmds = &step.Teardown
	default:
		return steps
	}
	if m.Reference.Index < 0 || m.Reference.Index >= len(*cmds) {
		return steps
	}
	*cmds = slices.Clone(*cmds)
	(*cmds)[m.Reference.Index].Logs = m.Lines

	out := slices.Clone(steps)
	out[i] = step
	return out
}

type PipelineClient struct {
	*Client
}

func (c PipelineClient) ReRun() error {
	c.markLoading()
	return c.Post(pipeline.ReRunPipeline{})
}

func (c PipelineClient) FetchLogRange(stepID string, ref model.LogReference) error {
	return c.Post(pipeline.FetchLogRange{StepID: stepID, Reference: ref})
}

func (c PipelineClient) ViewInWebBrowser() error {
	return c.Post(pipeline.ViewInWebBrowser{})
}
