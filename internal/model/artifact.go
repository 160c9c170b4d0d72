package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/footyliveliness/api/internal/models"
)

// Artifact is the serialized scaler and linear model trained offline
type Artifact struct {
	Name      string  `yaml:"name" json:"name"`
	Version   string  `yaml:"version" json:"version"`
	Target    string  `yaml:"target" json:"target"`
	Intercept float64 `yaml:"intercept" json:"intercept"`

	Clip struct {
		Min float64 `yaml:"min" json:"min"`
		Max float64 `yaml:"max" json:"max"`
	} `yaml:"clip" json:"clip"`

	Features []FeatureParam `yaml:"features" json:"features"`

	Training struct {
		Season  string  `yaml:"season" json:"season"`
		Samples int     `yaml:"samples" json:"samples"`
		Alpha   float64 `yaml:"alpha" json:"alpha"`
		L1Ratio float64 `yaml:"l1_ratio" json:"l1_ratio"`
	} `yaml:"training" json:"training"`

	Performance models.ModelPerformance `yaml:"performance" json:"performance"`
}

// FeatureParam holds the scaler statistics and coefficient of one column
type FeatureParam struct {
	Name  string  `yaml:"name" json:"name"`
	Mean  float64 `yaml:"mean" json:"mean"`
	Scale float64 `yaml:"scale" json:"scale"`
	Coef  float64 `yaml:"coef" json:"coef"`
}

// LoadArtifact reads a YAML or JSON artifact, chosen by file extension.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var a Artifact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the artifact is usable for prediction
func (a *Artifact) Validate() error {
	if len(a.Features) == 0 {
		return errors.New("artifact has no features")
	}
	if a.Clip.Min >= a.Clip.Max {
		return fmt.Errorf("clip range [%g, %g] is missing or empty", a.Clip.Min, a.Clip.Max)
	}
	seen := make(map[string]struct{}, len(a.Features))
	for i, f := range a.Features {
		if f.Name == "" {
			return fmt.Errorf("feature %d has no name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate feature %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Scale < 0 {
			return fmt.Errorf("feature %q has negative scale", f.Name)
		}
	}
	return nil
}

// FeatureNames returns the column order the model expects
func (a *Artifact) FeatureNames() []string {
	names := make([]string, len(a.Features))
	for i, f := range a.Features {
		names[i] = f.Name
	}
	return names
}
