package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-line-optimizer/internal/optimizer"
	"racing-line-optimizer/internal/physics"
)

func TestLoadKeepsDefaults(t *testing.T) {
	v := viper.New()
	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
smoothing: 2
solver:
  rounds: 8
two_step:
  max_iterations: 7
`)))
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 2.0, s.Smoothing)
	assert.Equal(t, 8, s.Solver.Rounds)
	assert.Equal(t, physics.DefaultSolverConfig().Damping, s.Solver.Damping)
	assert.Equal(t, 7, s.TwoStep.MaxIterations)
	assert.Equal(t, optimizer.TwoStep.Limits().Threshold, s.TwoStep.Threshold)
	assert.Equal(t, optimizer.LateApex.Limits(), s.LateApex)
	assert.Len(t, s.Options(optimizer.TwoStep), 3)
}
