package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordersIncrementVectors(t *testing.T) {
	before := testutil.ToFloat64(webBackendRequestsTotal.WithLabelValues("brave", "error"))
	RecordBackend("brave", "error")
	assert.Equal(t, before+1, testutil.ToFloat64(webBackendRequestsTotal.WithLabelValues("brave", "error")))

	before = testutil.ToFloat64(webTierAcceptedTotal.WithLabelValues("secondary"))
	RecordTierAccepted("secondary", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(webTierAcceptedTotal.WithLabelValues("secondary")))

	before = testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("web_empty"))
	RecordRun("web_empty")
	assert.Equal(t, before+1, testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("web_empty")))

	before = testutil.ToFloat64(solutionCitationIssuesTotal.WithLabelValues("uncited_line"))
	RecordCitationIssues("uncited_line", 2)
	RecordCitationIssues("uncited_line", 0)
	assert.Equal(t, before+2, testutil.ToFloat64(solutionCitationIssuesTotal.WithLabelValues("uncited_line")))

	ObserveStage("retrieve_local", 20*time.Millisecond)
	RecordFetch("readability", "ok")
}

func TestSetupTracingWithoutEndpointIsNoop(t *testing.T) {
	tracing, tracer, err := SetupTracing(context.Background(), "oratriage", "test", "")
	require.NoError(t, err)
	require.NotNil(t, tracer)
	_, span := tracer.Start(context.Background(), "noop")
	span.End()
	assert.NoError(t, tracing.Shutdown(context.Background()))
}
