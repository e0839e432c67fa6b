package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultShipsAllDifficulties(t *testing.T) {
	cfg := Default()
	for _, d := range []Difficulty{Easy, Normal, Hard} {
		p, ok := cfg.Difficulties[string(d)]
		require.True(t, ok, "missing difficulty %s", d)
		assert.Positive(t, p.Population)
		assert.Positive(t, p.Budget)
		assert.Positive(t, p.MaxIncome)
		assert.Negative(t, p.LowerBoundBankruptcy)
	}
	assert.NoError(t, cfg.validate())
}

func TestProfileResolutionIsCaseInsensitive(t *testing.T) {
	cfg := Default()

	p, err := cfg.Profile("normal")
	require.NoError(t, err)
	assert.Equal(t, 8_000_000, p.Population)
	assert.Equal(t, int64(2_000_000_000), p.Budget)

	_, err = cfg.Profile("IMPOSSIBLE")
	assert.Error(t, err)
}

func TestHarderProfilesAreTighter(t *testing.T) {
	cfg := Default()
	easy, err := cfg.Profile(Easy)
	require.NoError(t, err)
	hard, err := cfg.Profile(Hard)
	require.NoError(t, err)

	assert.Greater(t, easy.Budget, hard.Budget)
	assert.Greater(t, easy.MaxIncome, hard.MaxIncome)
	assert.Less(t, easy.InitialInfectedPortion, hard.InitialInfectedPortion)
	assert.Less(t, easy.BasicInteractionRate, hard.BasicInteractionRate)
}

func TestLoadOverridesNamedProfilesOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	yaml := `
difficulties:
  normal:
    population: 1000000
    portion_of_police: 0.02
    portion_of_healthworkers: 0.02
    initial_infected_portion: 0.001
    happiness: 50
    basic_interaction_rate: 0.1
    max_interaction_variance: 0.2
    avg_salary_po: 100
    avg_salary_hw: 90
    avg_price_test_kit: 10
    avg_price_vaccination: 20
    budget: 500000000
    max_income: 10000000
    lower_bound_bankruptcy: -100000000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	normal, err := cfg.Profile(Normal)
	require.NoError(t, err)
	assert.Equal(t, 1_000_000, normal.Population)
	assert.Equal(t, int64(500_000_000), normal.Budget)

	easy, err := cfg.Profile(Easy)
	require.NoError(t, err)
	assert.Equal(t, 3_000_000_000, int(easy.Budget), "untouched profiles keep their defaults")
}

func TestLoadRejectsInvalidProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	yaml := `
difficulties:
  normal:
    population: -5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsOversizedWorkforce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workforce.yaml")
	yaml := `
difficulties:
  hard:
    population: 1000
    portion_of_police: 0.6
    portion_of_healthworkers: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
