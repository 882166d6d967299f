package core

import (
	"fmt"
	"strings"
)

// Edge is one transition of the run state machine.
type Edge struct {
	From  Stage
	To    Stage
	Label string
}

// Edges lists every transition nextStage can take.
func Edges() []Edge {
	return []Edge{
		{From: StageRetrieveLocal, To: StageFilterExact},
		{From: StageFilterExact, To: StageAnalyzeCauses},
		{From: StageAnalyzeCauses, To: StageDraftSolution},
		{From: StageDraftSolution, To: StageDecideWebNeed},
		{From: StageDecideWebNeed, To: StageWebFallback, Label: "need web"},
		{From: StageDecideWebNeed, To: StageDone, Label: "local evidence or web disabled"},
		{From: StageWebFallback, To: StageRedraftSolution, Label: "results"},
		{From: StageWebFallback, To: StageDone, Label: "no results"},
		{From: StageRedraftSolution, To: StageDone},
	}
}

// RenderGraph renders the state machine as a Mermaid flowchart.
func RenderGraph() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, e := range Edges() {
		if e.Label == "" {
			fmt.Fprintf(&b, "    %s --> %s\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&b, "    %s -- %s --> %s\n", e.From, e.Label, e.To)
	}
	return b.String()
}
