// Package automation runs scripted batches of pipeline operations described
// in YAML scenario files.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/imageio"
	"github.com/san-kum/chaoscrypt/internal/imagestats"
	"github.com/san-kum/chaoscrypt/internal/logging"
	"github.com/san-kum/chaoscrypt/internal/pipeline"
	"github.com/san-kum/chaoscrypt/internal/seed"
	"github.com/san-kum/chaoscrypt/internal/storage"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

const (
	CommandDerive   = "derive"
	CommandEncrypt  = "encrypt"
	CommandDecrypt  = "decrypt"
	CommandAnalyze  = "analyze"
	CommandLyapunov = "lyapunov"
)

// Scenario defines a scripted sequence of operations.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single operation. Input and Output are PNG paths for the image
// commands; Rounds falls back to the pipeline configuration when zero.
type Step struct {
	Name     string `yaml:"name"`
	Command  string `yaml:"command"`
	Seed     string `yaml:"seed"`
	Defaults bool   `yaml:"defaults"`
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Rounds   int    `yaml:"rounds"`
	Save     bool   `yaml:"save"`
}

// StepResult records what a step produced.
type StepResult struct {
	Name        string              `json:"name"`
	Command     string              `json:"command"`
	Fingerprint string              `json:"fingerprint,omitempty"`
	Spectra     []analysis.Spectrum `json:"spectra,omitempty"`
	Report      *imagestats.Report  `json:"report,omitempty"`
	RunID       string              `json:"run_id,omitempty"`
	Elapsed     time.Duration       `json:"elapsed"`
}

// LoadScenario loads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: scenario has no steps", dynamo.ErrInvalidInput)
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.label(), err)
		}
	}
	return nil
}

func (st Step) label() string {
	if st.Name != "" {
		return st.Name
	}
	return st.Command
}

func (st Step) validate() error {
	switch st.Command {
	case CommandDerive:
	case CommandEncrypt, CommandDecrypt:
		if st.Input == "" || st.Output == "" {
			return fmt.Errorf("%w: %s needs input and output", dynamo.ErrInvalidInput, st.Command)
		}
	case CommandAnalyze:
		if st.Input == "" {
			return fmt.Errorf("%w: analyze needs an input", dynamo.ErrInvalidInput)
		}
	case CommandLyapunov:
		if st.Defaults {
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown command %q", dynamo.ErrInvalidInput, st.Command)
	}
	if st.Seed == "" {
		return fmt.Errorf("%w: %s needs a seed", dynamo.ErrInvalidInput, st.Command)
	}
	if st.Rounds < 0 {
		return fmt.Errorf("%w: negative rounds", dynamo.ErrInvalidInput)
	}
	return nil
}

// Runner executes scenarios against a pipeline. A nil store disables Save.
type Runner struct {
	pipeline *pipeline.Pipeline
	store    *storage.Store
	logger   *slog.Logger
}

func NewRunner(p *pipeline.Pipeline, store *storage.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{pipeline: p, store: store, logger: logger}
}

// Run executes every step in order and stops at the first failure,
// returning the results of the steps that completed.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		r.logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "command", step.Command)

		start := time.Now()
		res, err := r.runStep(ctx, step)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.label(), err)
		}
		res.Name = step.label()
		res.Command = step.Command
		res.Elapsed = time.Since(start)
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) rounds(st Step) int {
	if st.Rounds > 0 {
		return st.Rounds
	}
	return r.pipeline.Config().Cipher.Rounds
}

func (r *Runner) runStep(ctx context.Context, st Step) (StepResult, error) {
	var res StepResult

	if st.Command == CommandLyapunov {
		specs := systems.Defaults()
		if !st.Defaults {
			exp, err := seed.ExpandContext(ctx, st.Seed, r.pipeline.Config().SeedOptions())
			if err != nil {
				return res, err
			}
			specs = exp.Specs
		}
		spectra, err := r.pipeline.ComputeLyapunov(ctx, specs)
		if err != nil {
			return res, err
		}
		res.Spectra = spectra[:]
		if st.Save && r.store != nil {
			meta := storage.RunMetadata{Command: CommandLyapunov, Sim: r.pipeline.Config().MaterialSim(), Spectra: res.Spectra}
			for _, spec := range specs {
				meta.Systems = append(meta.Systems, spec.Info())
			}
			res.RunID, err = r.store.Save(meta, nil)
		}
		return res, err
	}

	d, err := r.pipeline.Derive(ctx, st.Seed)
	if err != nil {
		return res, err
	}
	m := d.Material
	res.Fingerprint = m.FingerprintHex()
	if st.Save && r.store != nil {
		if res.RunID, err = r.store.Save(r.pipeline.RunMetadata(st.Command, d, nil), d.Trajectories()); err != nil {
			return res, err
		}
	}
	if st.Command == CommandDerive {
		return res, nil
	}

	px, shape, err := imageio.ReadPNG(st.Input)
	if err != nil {
		return res, err
	}
	rounds := r.rounds(st)

	switch st.Command {
	case CommandEncrypt:
		out, err := r.pipeline.EncryptImage(ctx, px, shape, rounds, m)
		if err != nil {
			return res, err
		}
		return res, imageio.WritePNG(st.Output, out, shape)
	case CommandDecrypt:
		out, err := r.pipeline.DecryptImage(ctx, px, shape, rounds, m)
		if err != nil {
			return res, err
		}
		return res, imageio.WritePNG(st.Output, out, shape)
	}

	enc, err := r.pipeline.EncryptImage(ctx, px, shape, rounds, m)
	if err != nil {
		return res, err
	}
	dec, err := r.pipeline.DecryptImage(ctx, enc, shape, rounds, m)
	if err != nil {
		return res, err
	}
	if res.Report, err = r.pipeline.Analyze(ctx, px, enc, dec, shape, rounds, m); err != nil {
		return res, err
	}
	if st.Output != "" {
		err = imageio.WritePNG(st.Output, enc, shape)
	}
	return res, err
}
