package core

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/oratriage/agents"
	"github.com/mohammad-safakhou/oratriage/internal/corpus"
	"github.com/mohammad-safakhou/oratriage/internal/evidence"
	"github.com/mohammad-safakhou/oratriage/tools/web_search/models"
)

var (
	// ErrMissingIndex is returned when the requested corpus has not been ingested.
	ErrMissingIndex = errors.New("local corpus index not found")
	// ErrInvalidRequest is returned for requests that cannot start a run.
	ErrInvalidRequest = errors.New("invalid troubleshooting request")
)

// Stage names one step of a troubleshooting run.
type Stage string

const (
	StageRetrieveLocal   Stage = "retrieve_local"
	StageFilterExact     Stage = "filter_exact"
	StageAnalyzeCauses   Stage = "analyze_causes"
	StageDraftSolution   Stage = "draft_solution"
	StageDecideWebNeed   Stage = "decide_web_need"
	StageWebFallback     Stage = "web_fallback"
	StageRedraftSolution Stage = "redraft_solution"
	StageDone            Stage = "done"
)

// DefaultTopK is the number of local candidates retrieved per run.
const DefaultTopK = 10

// Request starts a troubleshooting run.
type Request struct {
	Query     string
	CorpusDir string
	Strict    bool
	AllowWeb  bool
	Locale    string
	// RunID is generated when empty.
	RunID string
}

// Result is what a finished run returns to its caller.
type Result struct {
	RunID                string                    `json:"run_id"`
	Causes               agents.Analysis           `json:"causes"`
	SolutionMarkdown     string                    `json:"solution_markdown"`
	RetrievedText        string                    `json:"retrieved_text"`
	References           []evidence.LocalReference `json:"references"`
	WebSources           []evidence.WebReference   `json:"web_sources"`
	WebRefs              []evidence.WebReference   `json:"web_refs"`
	WebFallbackAttempted bool                      `json:"web_fallback_attempted"`
	WebResultCount       int                       `json:"web_result_count"`
	NeedWeb              bool                      `json:"need_web"`
	WebNote              string                    `json:"web_note,omitempty"`
}

// PipelineState is owned by a single run and handed from stage to stage by value.
type PipelineState struct {
	RunID     string `json:"run_id"`
	Query     string `json:"query"`
	CorpusDir string `json:"db_dir"`
	AllowWeb  bool   `json:"allow_web"`
	Strict    bool   `json:"strict"`
	Locale    string `json:"locale"`
	Stage     Stage  `json:"stage"`

	Candidates []corpus.Document         `json:"-"`
	LocalText  string                    `json:"retrieved_text"`
	LocalRefs  []evidence.LocalReference `json:"references"`

	Analysis agents.Analysis `json:"causes"`
	Solution string          `json:"solution_markdown"`

	WebText        string                  `json:"web_context"`
	WebRefs        []evidence.WebReference `json:"web_refs"`
	WebNote        string                  `json:"web_note,omitempty"`
	WebQueries     []string                `json:"web_queries,omitempty"`
	WebAttempted   bool                    `json:"web_fallback_attempted"`
	WebResultCount int                     `json:"web_result_count"`
	NeedWeb        bool                    `json:"need_web"`
}

// Result projects the state onto the caller-facing result.
func (s PipelineState) Result() Result {
	refs := s.LocalRefs
	if refs == nil {
		refs = []evidence.LocalReference{}
	}
	web := s.WebRefs
	if web == nil {
		web = []evidence.WebReference{}
	}
	causes := s.Analysis
	if causes.Causes == nil {
		causes.Causes = []string{}
	}
	return Result{
		RunID:                s.RunID,
		Causes:               causes,
		SolutionMarkdown:     s.Solution,
		RetrievedText:        s.LocalText,
		References:           refs,
		WebSources:           web,
		WebRefs:              web,
		WebFallbackAttempted: s.WebAttempted,
		WebResultCount:       s.WebResultCount,
		NeedWeb:              s.NeedWeb,
		WebNote:              s.WebNote,
	}
}

// LocalRetriever searches an ingested corpus.
type LocalRetriever interface {
	Retrieve(ctx context.Context, query, dir string, k int) ([]corpus.Document, error)
}

// CauseAnalyzer produces root causes from local evidence.
type CauseAnalyzer interface {
	Analyze(ctx context.Context, query, localContext, locale string) agents.Analysis
}

// SolutionWriter drafts citation-tagged guidance.
type SolutionWriter interface {
	WriteSolution(ctx context.Context, req agents.SolutionRequest) agents.Draft
}

// WebCollector gathers web evidence for a query.
type WebCollector interface {
	Collect(ctx context.Context, query string, strict bool) Collection
}

// Searcher is the backend chain as seen by the collector.
type Searcher interface {
	Search(ctx context.Context, q string, max int, region string) []models.Result
}

// Fetcher returns readable page text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, bool)
}

// Checkpointer persists state snapshots keyed by run id.
type Checkpointer interface {
	Save(ctx context.Context, runID string, snapshot []byte) error
}
