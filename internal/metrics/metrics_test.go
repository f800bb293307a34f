// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswersTotal(t *testing.T) {
	before := testutil.ToFloat64(AnswersTotal.WithLabelValues(OutcomeDone))
	AnswersTotal.WithLabelValues(OutcomeDone).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AnswersTotal.WithLabelValues(OutcomeDone)))
}

func TestStageDurationRegistered(t *testing.T) {
	StageDuration.WithLabelValues("search").Observe(0.2)
	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "wikichat_pipeline_stage_duration_seconds")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}

func TestTokensStreamed(t *testing.T) {
	TokensStreamed.WithLabelValues("metrics-test-model").Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(TokensStreamed.WithLabelValues("metrics-test-model")))
}
