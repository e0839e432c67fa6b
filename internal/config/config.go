// Package config loads difficulty profiles for the simulation. Profiles ship
// with compiled-in defaults for EASY, NORMAL and HARD and can be overridden
// from a YAML file for balance tuning.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
)

// Difficulty selects one of the shipped profiles.
type Difficulty string

const (
	Easy   Difficulty = "EASY"
	Normal Difficulty = "NORMAL"
	Hard   Difficulty = "HARD"
)

// Profile is the YAML shape of one difficulty configuration record.
type Profile struct {
	Population             int     `yaml:"population"`
	PortionOfPolice        float64 `yaml:"portion_of_police"`
	PortionOfHealthWorkers float64 `yaml:"portion_of_healthworkers"`
	InitialInfectedPortion float64 `yaml:"initial_infected_portion"`

	Happiness              float64 `yaml:"happiness"`
	HappinessRate          float64 `yaml:"happiness_rate"`
	Compliance             float64 `yaml:"compliance"`
	BasicInteractionRate   float64 `yaml:"basic_interaction_rate"`
	MaxInteractionVariance float64 `yaml:"max_interaction_variance"`

	AvgSalaryPO         int64 `yaml:"avg_salary_po"`
	AvgSalaryHW         int64 `yaml:"avg_salary_hw"`
	AvgPriceTestKit     int64 `yaml:"avg_price_test_kit"`
	AvgPriceVaccination int64 `yaml:"avg_price_vaccination"`

	Budget               int64 `yaml:"budget"`
	MaxIncome            int64 `yaml:"max_income"`
	Income               int64 `yaml:"income"`
	LowerBoundBankruptcy int64 `yaml:"lower_bound_bankruptcy"`
}

// Config holds all difficulty profiles keyed by name.
type Config struct {
	Difficulties map[string]Profile `yaml:"difficulties"`
}

// Default returns the compiled-in balance values.
func Default() Config {
	return Config{
		Difficulties: map[string]Profile{
			string(Easy): {
				Population:             8_000_000,
				PortionOfPolice:        0.012,
				PortionOfHealthWorkers: 0.010,
				InitialInfectedPortion: 0.0003,
				Happiness:              80,
				HappinessRate:          0.1,
				Compliance:             75,
				BasicInteractionRate:   0.20,
				MaxInteractionVariance: 0.25,
				AvgSalaryPO:            140,
				AvgSalaryHW:            110,
				AvgPriceTestKit:        35,
				AvgPriceVaccination:    50,
				Budget:                 3_000_000_000,
				MaxIncome:              50_000_000,
				Income:                 0,
				LowerBoundBankruptcy:   -800_000_000,
			},
			string(Normal): {
				Population:             8_000_000,
				PortionOfPolice:        0.010,
				PortionOfHealthWorkers: 0.008,
				InitialInfectedPortion: 0.0005,
				Happiness:              70,
				HappinessRate:          0,
				Compliance:             65,
				BasicInteractionRate:   0.25,
				MaxInteractionVariance: 0.30,
				AvgSalaryPO:            150,
				AvgSalaryHW:            120,
				AvgPriceTestKit:        40,
				AvgPriceVaccination:    60,
				Budget:                 2_000_000_000,
				MaxIncome:              40_000_000,
				Income:                 0,
				LowerBoundBankruptcy:   -500_000_000,
			},
			string(Hard): {
				Population:             8_000_000,
				PortionOfPolice:        0.008,
				PortionOfHealthWorkers: 0.006,
				InitialInfectedPortion: 0.0010,
				Happiness:              60,
				HappinessRate:          -0.1,
				Compliance:             55,
				BasicInteractionRate:   0.30,
				MaxInteractionVariance: 0.35,
				AvgSalaryPO:            165,
				AvgSalaryHW:            135,
				AvgPriceTestKit:        50,
				AvgPriceVaccination:    75,
				Budget:                 1_200_000_000,
				MaxIncome:              30_000_000,
				Income:                 0,
				LowerBoundBankruptcy:   -300_000_000,
			},
		},
	}
}

// Load reads profiles from a YAML file. Profiles present in the file replace
// the defaults; missing ones keep their compiled-in values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	for name, p := range override.Difficulties {
		cfg.Difficulties[strings.ToUpper(name)] = p
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	for name, p := range c.Difficulties {
		if p.Population <= 0 {
			return fmt.Errorf("difficulty %s: population must be positive", name)
		}
		if p.PortionOfPolice < 0 || p.PortionOfHealthWorkers < 0 || p.InitialInfectedPortion < 0 {
			return fmt.Errorf("difficulty %s: portions must not be negative", name)
		}
		if p.PortionOfPolice+p.PortionOfHealthWorkers >= 1 {
			return fmt.Errorf("difficulty %s: police and health worker portions exceed the population", name)
		}
		if p.BasicInteractionRate < 0 {
			return fmt.Errorf("difficulty %s: interaction rate must not be negative", name)
		}
	}
	return nil
}

// Profile resolves a difficulty into the record the statistics store
// consumes at construction.
func (c Config) Profile(d Difficulty) (stats.Profile, error) {
	p, ok := c.Difficulties[strings.ToUpper(string(d))]
	if !ok {
		return stats.Profile{}, fmt.Errorf("unknown difficulty %q", d)
	}
	return stats.Profile{
		Population:             p.Population,
		PortionOfPolice:        p.PortionOfPolice,
		PortionOfHealthWorkers: p.PortionOfHealthWorkers,
		InitialInfectedPortion: p.InitialInfectedPortion,
		Happiness:              p.Happiness,
		HappinessRate:          p.HappinessRate,
		Compliance:             p.Compliance,
		BasicInteractionRate:   p.BasicInteractionRate,
		MaxInteractionVariance: p.MaxInteractionVariance,
		AvgSalaryPO:            p.AvgSalaryPO,
		AvgSalaryHW:            p.AvgSalaryHW,
		AvgPriceTestKit:        p.AvgPriceTestKit,
		AvgPriceVaccination:    p.AvgPriceVaccination,
		Budget:                 p.Budget,
		MaxIncome:              p.MaxIncome,
		Income:                 p.Income,
		LowerBoundBankruptcy:   p.LowerBoundBankruptcy,
	}, nil
}
