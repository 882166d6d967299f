package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/internal/helpers"
	"github.com/mohammad-safakhou/oratriage/provider"
	"github.com/mohammad-safakhou/oratriage/provider/models"
)

//go:embed analysis_schema.json
var analysisSchemaJSON string

// MaxAnalysisContext caps the local context handed to the analyzer, in runes.
const MaxAnalysisContext = 8000

var (
	compileOnce    sync.Once
	analysisSchema *jsonschema.Schema
	compileErr     error
)

// AnalysisSchema returns the compiled JSON Schema for analyzer replies.
func AnalysisSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("analysis_schema.json", strings.NewReader(analysisSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("analysis_schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile analysis schema: %w", err)
			return
		}
		analysisSchema = schema
	})
	return analysisSchema, compileErr
}

// DecodeAnalysis extracts, validates and decodes an analyzer reply.
func DecodeAnalysis(reply string) (Analysis, error) {
	raw, err := helpers.ExtractJSON(reply)
	if err != nil {
		return Analysis{}, err
	}
	schema, err := AnalysisSchema()
	if err != nil {
		return Analysis{}, err
	}
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Analysis{}, fmt.Errorf("analysis is not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Analysis{}, fmt.Errorf("analysis does not match schema: %w", err)
	}
	var out Analysis
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	if out.Causes == nil {
		out.Causes = []string{}
	}
	out.Kind = KindOK
	return out, nil
}

// Analyzer asks the model for root causes grounded in local evidence.
type Analyzer struct {
	llm    provider.Provider
	logger *zap.Logger
}

func NewAnalyzer(llm provider.Provider, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{llm: llm, logger: logger.Named("analyzer")}
}

// Analyze never fails; a broken reply or transport error yields the degraded payload.
func (a *Analyzer) Analyze(ctx context.Context, query, localContext, locale string) Analysis {
	locale = NormalizeLocale(locale)
	user := "User error:\n" + query + "\n\n" +
		"Retrieved Oracle snippets (may be empty):\n" + truncate(localContext, MaxAnalysisContext) + "\n"
	msgs := []models.Message{
		{Role: "system", Content: analyzerSystemPrompt(locale)},
		{Role: "user", Content: user},
	}
	reply, err := a.llm.Complete(ctx, msgs, models.CompletionOptions{Temperature: 0, JSON: true})
	if err != nil {
		a.logger.Warn("analysis request failed", zap.Error(err))
		return degraded(KindServiceFailure)
	}
	out, err := DecodeAnalysis(reply)
	if err != nil {
		a.logger.Warn("analysis reply rejected", zap.Error(err))
		return degraded(KindParseFailure)
	}
	return out
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
