package committee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byzantine-generals/omsim/consensus/om/model"
)

// TestMaxTraitors tests that MaxTraitors is the largest t satisfying n > 3t.
func TestMaxTraitors(t *testing.T) {
	for n := 1; n <= 302; n++ {
		maxTraitors := MaxTraitors(n)
		assert.True(t, n > 3*maxTraitors)
		assert.False(t, n > 3*(maxTraitors+1))
		assert.NoError(t, CheckSafety(n, maxTraitors))
		assert.Error(t, CheckSafety(n, maxTraitors+1))
		assert.GreaterOrEqual(t, n, MinGenerals(maxTraitors))
	}
	assert.Equal(t, 0, MaxTraitors(0))
}

func TestCheckSafety(t *testing.T) {
	cases := []struct {
		name     string
		generals int
		traitors int
		ok       bool
	}{
		{"no traitors", 1, 0, true},
		{"minimal", 4, 1, true},
		{"boundary", 3, 1, false},
		{"two traitors", 7, 2, true},
		{"two traitors boundary", 6, 2, false},
		{"no generals", 0, 0, false},
		{"negative traitors", 4, -1, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := CheckSafety(c.generals, c.traitors)
			if c.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, model.IsPreconditionViolationError(err))
		})
	}
}
