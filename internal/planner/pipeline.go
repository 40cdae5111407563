// Package planner sequences the multi-stage planning conversation with the
// model: decompose a goal, then derive timeline, resource estimate and
// critical path from the decomposition, plus on-demand adjustment and
// reporting stages.
//
// Stage outputs are extract.Results and may be degraded. A degraded result
// threads into the next stage's prompt verbatim rather than aborting the
// pipeline; only gateway failures abort, and those surface to the caller
// untouched so retry policy stays caller-owned.
package planner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ent0n29/planpilot/internal/extract"
	"github.com/ent0n29/planpilot/internal/llm"
	"github.com/ent0n29/planpilot/internal/observability"
)

// Stage names used for metrics and error context.
const (
	StageDecompose    = "decompose"
	StageTimeline     = "timeline"
	StageResources    = "resources"
	StageCriticalPath = "critical_path"
	StageAdjust       = "adjust"
	StageReport       = "report"
)

// PlanBundle is the full output of plan creation. Any member may be degraded;
// Quality on each result says which.
type PlanBundle struct {
	Plan         extract.Result `json:"project_plan"`
	Timeline     extract.Result `json:"timeline"`
	Resources    extract.Result `json:"resources"`
	CriticalPath extract.Result `json:"critical_path"`
}

type Pipeline struct {
	client  llm.Client
	metrics *observability.Metrics
	now     func() time.Time
}

func New(client llm.Client, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		client:  client,
		metrics: metrics,
		now:     time.Now,
	}
}

// CreatePlan runs decomposition, then the three derived stages concurrently.
// The three are independent of each other; each consumes the decomposition
// result as-is, degraded or not.
func (p *Pipeline) CreatePlan(ctx context.Context, goal string, constraints map[string]any) (PlanBundle, error) {
	planRes, err := p.runStage(ctx, StageDecompose, DecomposePrompt(goal, constraints))
	if err != nil {
		return PlanBundle{}, err
	}

	bundle := PlanBundle{Plan: planRes}
	startDate := p.now().UTC().Format("2006-01-02")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := p.runStage(gctx, StageTimeline, TimelinePrompt(planRes, startDate))
		bundle.Timeline = res
		return err
	})
	g.Go(func() error {
		res, err := p.runStage(gctx, StageResources, ResourcesPrompt(planRes))
		bundle.Resources = res
		return err
	})
	g.Go(func() error {
		res, err := p.runStage(gctx, StageCriticalPath, CriticalPathPrompt(planRes))
		bundle.CriticalPath = res
		return err
	})
	if err := g.Wait(); err != nil {
		return PlanBundle{}, err
	}
	return bundle, nil
}

// AdjustPlan applies a change request to an existing plan in one stage call.
// A degraded current plan is accepted and passed to the model as-is.
func (p *Pipeline) AdjustPlan(ctx context.Context, currentPlan extract.Result, adjustments map[string]any) (extract.Result, error) {
	return p.runStage(ctx, StageAdjust, AdjustPrompt(currentPlan, adjustments))
}

// StatusReport generates a markdown status report for a stored project.
func (p *Pipeline) StatusReport(ctx context.Context, project map[string]any, reportType string) (string, error) {
	spec := StatusReportPrompt(project, reportType)
	resp, err := p.complete(ctx, StageReport, spec)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// runStage is one stage: prompt in, raw text out, extraction always.
func (p *Pipeline) runStage(ctx context.Context, stage string, spec PromptSpec) (extract.Result, error) {
	resp, err := p.complete(ctx, stage, spec)
	if err != nil {
		return extract.Result{}, err
	}

	res := extract.Extract(resp.Text)
	p.metrics.ObserveExtraction(stage, string(res.Quality))
	return res, nil
}

func (p *Pipeline) complete(ctx context.Context, stage string, spec PromptSpec) (llm.Response, error) {
	started := time.Now()
	resp, err := p.client.Complete(ctx, llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: spec.Instructions}},
		MaxTokens: spec.MaxTokens,
	})
	p.metrics.ObserveStageLatency(stage, time.Since(started))
	if err != nil {
		p.metrics.ObserveGatewayCall(stage, "error")
		return llm.Response{}, fmt.Errorf("%s stage: %w", stage, err)
	}
	p.metrics.ObserveGatewayCall(stage, "ok")
	p.metrics.ObserveTokens(resp.InputTokens, resp.OutputTokens)
	return resp, nil
}
