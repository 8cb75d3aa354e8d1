package model

import "time"

// PipelineState is the lifecycle state of a pipeline or step.
type PipelineState struct {
	Name   string `json:"name"`
	Result string `json:"result,omitempty"`
	Stage  string `json:"stage,omitempty"`
}

// PipelineTarget is what a pipeline was run against.
type PipelineTarget struct {
	RefName    string `json:"ref_name"`
	RefType    string `json:"ref_type"`
	CommitHash string `json:"commit_hash"`
}

// Pipeline is one Bitbucket Pipelines run.
type Pipeline struct {
	UUID            string         `json:"uuid"`
	BuildNumber     int            `json:"build_number"`
	Site            BitbucketSite  `json:"site"`
	State           PipelineState  `json:"state"`
	Target          PipelineTarget `json:"target"`
	CreatedOn       time.Time      `json:"created_on"`
	CompletedOn     *time.Time     `json:"completed_on,omitempty"`
	DurationSeconds int            `json:"duration_in_seconds"`
	Creator         User           `json:"creator"`
}

// PipelineCommand is one command of a step with the log lines it produced.
type PipelineCommand struct {
	Name    string   `json:"name"`
	Command string   `json:"command"`
	Logs    []string `json:"logs,omitempty"`
}

// PipelineStep is one step of a pipeline.
type PipelineStep struct {
	UUID     string            `json:"uuid"`
	Name     string            `json:"name"`
	State    PipelineState     `json:"state"`
	Setup    []PipelineCommand `json:"setup_commands"`
	Script   []PipelineCommand `json:"script_commands"`
	Teardown []PipelineCommand `json:"teardown_commands"`
	Duration int               `json:"duration_in_seconds"`
}

// LogReference locates a command's log lines within a step: Stage is one of
// "setup", "script" or "teardown", Index the command position in that stage.
type LogReference struct {
	Stage string `json:"stage"`
	Index int    `json:"index"`
}

// Commands returns the commands of the given stage, or nil for an unknown one.
func (s PipelineStep) Commands(stage string) []PipelineCommand {
	switch stage {
	case "setup":
		return s.Setup
	case "script":
		return s.Script
	case "teardown":
		return s.Teardown
	}
	return nil
}
