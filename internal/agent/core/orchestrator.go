package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/agents"
	"github.com/mohammad-safakhou/oratriage/internal/agent/qa"
	"github.com/mohammad-safakhou/oratriage/internal/corpus"
	"github.com/mohammad-safakhou/oratriage/internal/evidence"
	"github.com/mohammad-safakhou/oratriage/internal/telemetry"
)

var orchestratorTracer trace.Tracer = otel.Tracer("oratriage/internal/agent/orchestrator")

// Options configures an Orchestrator.
type Options struct {
	TopK int
	// Strict is the deployment-wide exact-match toggle; a request can only narrow it.
	Strict bool
	// DefaultCorpusDir is used when a request names no corpus.
	DefaultCorpusDir string
}

// Orchestrator drives a troubleshooting run through its stages.
type Orchestrator struct {
	retriever   LocalRetriever
	analyzer    CauseAnalyzer
	writer      SolutionWriter
	collector   WebCollector
	checkpoints Checkpointer
	opts        Options
	logger      *zap.Logger
}

// NewOrchestrator wires the collaborators of a run. checkpoints may be nil.
func NewOrchestrator(retriever LocalRetriever, analyzer CauseAnalyzer, writer SolutionWriter, collector WebCollector, checkpoints Checkpointer, opts Options, logger *zap.Logger) *Orchestrator {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		retriever:   retriever,
		analyzer:    analyzer,
		writer:      writer,
		collector:   collector,
		checkpoints: checkpoints,
		opts:        opts,
		logger:      logger.Named("orchestrator"),
	}
}

// Run executes every stage in order and returns the final result.
// Only a missing index, an invalid request or a local retrieval failure is returned as an error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	state, err := o.initialState(req)
	if err != nil {
		telemetry.RecordRun("invalid")
		return Result{}, err
	}

	ctx, span := orchestratorTracer.Start(ctx, "troubleshoot.run",
		trace.WithAttributes(
			attribute.String("run.id", state.RunID),
			attribute.Bool("run.allow_web", state.AllowWeb),
			attribute.Bool("run.strict", state.Strict),
		))
	defer span.End()

	logger := o.logger.With(zap.String("run_id", state.RunID))
	logger.Info("run started", zap.String("query", state.Query), zap.String("db_dir", state.CorpusDir))

	for state.Stage != StageDone {
		current := state.Stage
		next, err := o.step(ctx, current, state)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			telemetry.RecordRun("error")
			logger.Error("run failed", zap.String("stage", string(current)), zap.Error(err))
			return Result{}, err
		}
		next.Stage = nextStage(current, next)
		o.checkpoint(ctx, logger, next)
		state = next
	}

	outcome := runOutcome(state)
	telemetry.RecordRun(outcome)
	span.SetAttributes(attribute.String("run.outcome", outcome))
	logger.Info("run finished",
		zap.String("outcome", outcome),
		zap.Int("local_refs", len(state.LocalRefs)),
		zap.Int("web_results", state.WebResultCount),
	)
	return state.Result(), nil
}

func (o *Orchestrator) initialState(req Request) (PipelineState, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return PipelineState{}, fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	dir := strings.TrimSpace(req.CorpusDir)
	if dir == "" {
		dir = o.opts.DefaultCorpusDir
	}
	if dir == "" {
		return PipelineState{}, fmt.Errorf("%w: corpus directory is required", ErrInvalidRequest)
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return PipelineState{
		RunID:     runID,
		Query:     query,
		CorpusDir: dir,
		AllowWeb:  req.AllowWeb,
		Strict:    req.Strict && o.opts.Strict,
		Locale:    agents.NormalizeLocale(req.Locale),
		Stage:     StageRetrieveLocal,
	}, nil
}

// nextStage is the transition function. Every edge moves forward, so no stage runs twice.
func nextStage(current Stage, s PipelineState) Stage {
	switch current {
	case StageRetrieveLocal:
		return StageFilterExact
	case StageFilterExact:
		return StageAnalyzeCauses
	case StageAnalyzeCauses:
		return StageDraftSolution
	case StageDraftSolution:
		return StageDecideWebNeed
	case StageDecideWebNeed:
		if s.NeedWeb {
			return StageWebFallback
		}
		return StageDone
	case StageWebFallback:
		if s.WebResultCount > 0 {
			return StageRedraftSolution
		}
		return StageDone
	default:
		return StageDone
	}
}

func (o *Orchestrator) step(ctx context.Context, stage Stage, s PipelineState) (PipelineState, error) {
	ctx, span := orchestratorTracer.Start(ctx, "troubleshoot."+string(stage))
	defer span.End()
	start := time.Now()
	defer func() { telemetry.ObserveStage(string(stage), time.Since(start)) }()

	switch stage {
	case StageRetrieveLocal:
		return o.retrieveLocal(ctx, s)
	case StageFilterExact:
		return o.filterExact(s), nil
	case StageAnalyzeCauses:
		return o.analyzeCauses(ctx, s), nil
	case StageDraftSolution:
		return o.draftSolution(ctx, s), nil
	case StageDecideWebNeed:
		return decideWebNeed(s), nil
	case StageWebFallback:
		return o.webFallback(ctx, s), nil
	case StageRedraftSolution:
		return o.redraftSolution(ctx, s), nil
	default:
		return s, fmt.Errorf("unknown stage %q", stage)
	}
}

func (o *Orchestrator) retrieveLocal(ctx context.Context, s PipelineState) (PipelineState, error) {
	docs, err := o.retriever.Retrieve(ctx, s.Query, s.CorpusDir, o.opts.TopK)
	if errors.Is(err, corpus.ErrIndexNotFound) {
		return s, fmt.Errorf("%w: %w", ErrMissingIndex, err)
	}
	if err != nil {
		return s, fmt.Errorf("retrieve local evidence: %w", err)
	}
	s.Candidates = docs
	return s, nil
}

func (o *Orchestrator) filterExact(s PipelineState) PipelineState {
	items := make([]evidence.Item, 0, len(s.Candidates))
	for _, d := range s.Candidates {
		items = append(items, evidence.LocalItem(d.Content, d.Metadata))
	}
	if s.Strict {
		items = evidence.Filter(items, evidence.ExtractCode(s.Query))
	}
	s.Candidates = nil
	if len(items) == 0 {
		s.LocalText, s.LocalRefs = "", nil
		return s
	}
	s.LocalText, s.LocalRefs = evidence.BuildLocal(items, 1)
	return s
}

func (o *Orchestrator) analyzeCauses(ctx context.Context, s PipelineState) PipelineState {
	a := o.analyzer.Analyze(ctx, s.Query, s.LocalText, s.Locale)
	switch a.Kind {
	case agents.KindOK:
	case agents.KindParseFailure, agents.KindServiceFailure:
		o.logger.Warn("causal analysis degraded", zap.String("run_id", s.RunID), zap.Stringer("kind", a.Kind))
	}
	s.Analysis = agents.GenericHint(a, s.Query, s.Locale)
	return s
}

func (o *Orchestrator) draftSolution(ctx context.Context, s PipelineState) PipelineState {
	d := o.writer.WriteSolution(ctx, agents.SolutionRequest{
		Query:        s.Query,
		Analysis:     s.Analysis,
		LocalContext: s.LocalText,
		Strict:       true,
		Locale:       s.Locale,
	})
	if d.Kind != agents.KindOK {
		o.logger.Warn("solution draft failed", zap.String("run_id", s.RunID), zap.Stringer("kind", d.Kind))
	}
	s.Solution = d.Markdown
	o.auditCitations(s)
	return s
}

func decideWebNeed(s PipelineState) PipelineState {
	s.NeedWeb = s.AllowWeb && strings.TrimSpace(s.LocalText) == ""
	return s
}

func (o *Orchestrator) webFallback(ctx context.Context, s PipelineState) PipelineState {
	coll := o.collector.Collect(ctx, s.Query, s.Strict)
	s.WebAttempted = true
	s.WebQueries = coll.Queries

	text, refs := evidence.BuildWeb(coll.Items, 1)
	if len(refs) == 0 {
		s.WebText = ""
		s.WebRefs = []evidence.WebReference{agents.PlaceholderWebReference(s.Locale)}
		s.WebNote = agents.NoWebResultNote(s.Locale)
		s.WebResultCount = 0
		return s
	}
	s.WebText, s.WebRefs = text, refs
	s.WebResultCount = len(refs)
	return s
}

func (o *Orchestrator) redraftSolution(ctx context.Context, s PipelineState) PipelineState {
	d := o.writer.WriteSolution(ctx, agents.SolutionRequest{
		Query:        s.Query,
		Analysis:     s.Analysis,
		LocalContext: s.LocalText,
		WebContext:   s.WebText,
		Strict:       false,
		Locale:       s.Locale,
	})
	if d.Kind == agents.KindOK && strings.TrimSpace(d.Markdown) != "" {
		s.Solution = d.Markdown
		o.auditCitations(s)
		return s
	}
	o.logger.Warn("assisted redraft unusable, keeping local draft", zap.String("run_id", s.RunID), zap.Stringer("kind", d.Kind))
	return s
}

// auditCitations reports guide lines that cite nothing or cite tags this run never emitted.
func (o *Orchestrator) auditCitations(s PipelineState) {
	if strings.TrimSpace(s.Solution) == "" {
		return
	}
	rep := qa.CheckCitations(s.Solution, s.LocalRefs, s.WebRefs)
	telemetry.RecordCitationIssues("unknown_tag", len(rep.UnknownTags))
	telemetry.RecordCitationIssues("uncited_line", len(rep.UncitedLines))
	if !rep.OK() {
		o.logger.Warn("guide citations incomplete",
			zap.String("run_id", s.RunID),
			zap.Strings("unknown_tags", rep.UnknownTags),
			zap.Int("uncited_lines", len(rep.UncitedLines)),
		)
	}
}

func (o *Orchestrator) checkpoint(ctx context.Context, logger *zap.Logger, s PipelineState) {
	if o.checkpoints == nil {
		return
	}
	snapshot, err := json.Marshal(s)
	if err != nil {
		logger.Warn("encode checkpoint", zap.Error(err))
		return
	}
	if err := o.checkpoints.Save(ctx, s.RunID, snapshot); err != nil {
		logger.Warn("save checkpoint", zap.String("stage", string(s.Stage)), zap.Error(err))
	}
}

func runOutcome(s PipelineState) string {
	switch {
	case !s.WebAttempted && s.LocalText != "":
		return "local"
	case !s.WebAttempted:
		return "no_evidence"
	case s.WebResultCount > 0:
		return "web"
	default:
		return "web_empty"
	}
}
