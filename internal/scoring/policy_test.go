package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr string
	}{
		{"zero value", func(p *Policy) { *p = Policy{} }, "at least 2 statements"},
		{"low above high", func(p *Policy) { p.HealthyVarianceLow = 2.5 }, "low <= high < max"},
		{"max not above high", func(p *Policy) { p.MaxVariance = p.HealthyVarianceHigh }, "low <= high < max"},
		{"zero low", func(p *Policy) { p.HealthyVarianceLow = 0 }, "low <= high < max"},
		{"negative gap", func(p *Policy) { p.SecondaryGap = -1 }, "secondary gap"},
		{"slow below fast", func(p *Policy) { p.SlowResponseMs = 1000 }, "must exceed fast"},
		{"negative timing cv", func(p *Policy) { p.InconsistentTimingCV = -0.1 }, "timing consistency"},
		{"single timed response", func(p *Policy) { p.TimingMinResponses = 1 }, "timing consistency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPolicy_SlowThresholdCanBeDisabled(t *testing.T) {
	p := DefaultPolicy()
	p.SlowResponseMs = 0
	assert.NoError(t, p.Validate())
}
