package webview

import (
	"context"
	"fmt"
	"sync"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/pipeline"
	"github.com/kastheco/atlas/model"
)

// PipelineController drives the pipeline summary screen.
type PipelineController struct {
	screen
	api PipelineAPI

	mu       sync.Mutex
	pipeline model.Pipeline
}

func NewPipelineController(poster MessagePoster, api PipelineAPI, common *CommonHandler, p model.Pipeline) *PipelineController {
	return &PipelineController{screen: newScreen(poster, common), api: api, pipeline: p}
}

func (c *PipelineController) current() model.Pipeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipeline
}

func (c *PipelineController) Title() string {
	return fmt.Sprintf("Pipeline #%d", c.current().BuildNumber)
}

func (c *PipelineController) ScreenDetails() ScreenDetails {
	site := c.current().Site.Details
	return ScreenDetails{ID: ScreenPipelineSummary, Site: &site, Product: model.ProductBitbucket}
}

func (c *PipelineController) Update(factoryData any) {
	p, ok := factoryData.(model.Pipeline)
	if !ok {
		seedMismatch(ScreenPipelineSummary, factoryData)
		return
	}
	c.setPipeline(p)
	c.invalidate(context.Background())
}

func (c *PipelineController) setPipeline(p model.Pipeline) {
	c.mu.Lock()
	c.pipeline = p
	c.mu.Unlock()
}

func (c *PipelineController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), func(ctx context.Context) bool {
		p, err := c.api.GetPipeline(ctx, c.current())
		if err != nil {
			c.fail(err, "Error fetching pipeline", "")
			return false
		}
		c.setPipeline(p)
		c.post(pipeline.Update{Pipeline: p})

		steps, err := c.api.GetSteps(ctx, p)
		if err != nil {
			c.fail(err, "Error fetching pipeline steps", "")
			return true
		}
		c.post(pipeline.StepsUpdate{Steps: steps})
		return true
	})
}

func (c *PipelineController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	switch a := a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	case pipeline.ReRunPipeline:
		p, err := c.api.ReRun(ctx, c.current())
		if err != nil {
			c.fail(err, "Error re-running pipeline", "")
			return
		}
		c.setPipeline(p)
		c.post(pipeline.Update{Pipeline: p})
	case pipeline.FetchLogRange:
		lines, err := c.api.FetchLogRange(ctx, c.current(), a.StepID, a.Reference)
		if err != nil {
			c.fail(err, "Error fetching logs", "")
			return
		}
		c.post(pipeline.LogRangeUpdate{StepID: a.StepID, Reference: a.Reference, Lines: lines})
	case pipeline.ViewInWebBrowser:
		if err := c.api.ViewInWebBrowser(ctx, c.current()); err != nil {
			c.fail(err, "Error opening pipeline", "")
		}
	default:
		if !ipc.IsCommonAction(a) {
			ipc.Unreachable(a)
		}
		c.handleCommon(ctx, c.ScreenDetails(), a)
	}
}
