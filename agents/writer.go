package agents

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/provider"
	"github.com/mohammad-safakhou/oratriage/provider/models"
)

// SolutionRequest carries everything the guidance writer sees.
type SolutionRequest struct {
	Query        string
	Analysis     Analysis
	LocalContext string
	WebContext   string
	Strict       bool
	Locale       string
}

// Draft is a generated guide.
type Draft struct {
	Markdown string
	Kind     Kind
}

// Writer drafts citation-tagged Markdown guidance.
type Writer struct {
	llm    provider.Provider
	logger *zap.Logger
}

func NewWriter(llm provider.Provider, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{llm: llm, logger: logger.Named("writer")}
}

// WriteSolution returns an empty draft with KindServiceFailure when the model is unreachable.
func (w *Writer) WriteSolution(ctx context.Context, req SolutionRequest) Draft {
	locale := NormalizeLocale(req.Locale)
	hasWeb := strings.TrimSpace(req.WebContext) != ""

	temperature := 0.2
	if strictPrompt(req.Strict, hasWeb) {
		temperature = 0.1
	}
	msgs := []models.Message{
		{Role: "system", Content: writerSystemPrompt(req.Strict, hasWeb, locale)},
		{Role: "user", Content: solutionUserPrompt(req, locale, hasWeb)},
	}
	reply, err := w.llm.Complete(ctx, msgs, models.CompletionOptions{Temperature: temperature})
	if err != nil {
		w.logger.Warn("solution request failed", zap.Error(err), zap.Bool("assisted", hasWeb))
		return Draft{Kind: KindServiceFailure}
	}
	return Draft{Markdown: strings.TrimSpace(reply), Kind: KindOK}
}

func solutionUserPrompt(req SolutionRequest, locale string, hasWeb bool) string {
	causes, _ := json.Marshal(req.Analysis)

	local := req.LocalContext
	if strings.TrimSpace(local) == "" {
		local = "(empty)"
	}
	var b strings.Builder
	if locale == LocaleKO {
		b.WriteString(languageHintKO)
	} else {
		b.WriteString(languageHintEN)
	}
	b.WriteString("\n\nUser input:\n")
	b.WriteString(req.Query)
	b.WriteString("\n\nCauses JSON:")
	b.Write(causes)
	b.WriteString("\n\nLocal context:\n")
	b.WriteString(local)
	b.WriteString("\n")
	if hasWeb {
		b.WriteString("\n---\nWeb context:\n")
		b.WriteString(req.WebContext)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if locale == LocaleKO {
		b.WriteString(sectionsInstructionKO)
	} else {
		b.WriteString(sectionsInstruction)
	}
	return b.String()
}
