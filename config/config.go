// Package config loads contact solver configuration from disk.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// SolverConfig contains the parameters needed to construct a contact solver:
// the sole footprint vertices, the Coulomb friction coefficient and the
// number of actuated degrees of freedom of the robot.
type SolverConfig struct {
	Footprint           [][]float64 `json:"footprint"`
	FrictionCoefficient float64     `json:"friction_coefficient"`
	ActuatedDOF         int         `json:"actuated_dof"`
}

// LoadSolverConfig loads a solver configuration from a json file.
func LoadSolverConfig(path string) (*SolverConfig, error) {
	var cfg SolverConfig
	configFile, err := os.Open(path) //nolint:gosec
	defer utils.UncheckedErrorFunc(configFile.Close)
	if err != nil {
		return nil, err
	}
	jsonParser := json.NewDecoder(configFile)
	if err := jsonParser.Decode(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against the solver's construction rules.
func (c *SolverConfig) Validate() error {
	if len(c.Footprint) != 4 {
		return errors.Errorf("footprint must contain exactly 4 vertices, got %d", len(c.Footprint))
	}
	for i, v := range c.Footprint {
		if len(v) != 3 {
			return errors.Errorf("footprint vertex %d must have 3 coordinates, got %d", i, len(v))
		}
	}
	if c.FrictionCoefficient <= 0 {
		return errors.Errorf("friction coefficient must be positive, got %f", c.FrictionCoefficient)
	}
	if c.ActuatedDOF <= 0 {
		return errors.Errorf("actuated degrees of freedom must be positive, got %d", c.ActuatedDOF)
	}
	return nil
}
