package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultWheelOutcomesSumToOne(t *testing.T) {
	var sum float64
	for _, o := range DefaultWheelOutcomes {
		assert.Greater(t, o.Probability, 0.0, "outcome %q", o.Label)
		switch o.Type {
		case WheelRewardEntries:
			assert.Greater(t, o.Entries, int64(0), "outcome %q", o.Label)
		case WheelRewardCash:
			assert.Greater(t, o.Cash, 0.0, "outcome %q", o.Label)
		}
		sum += o.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
