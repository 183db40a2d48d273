// Package pipeline wires seed expansion, simulation, key derivation, the
// cipher and the analyzer into the operations the CLI exposes. It is the
// only layer that logs and records telemetry.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/config"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/imagestats"
	"github.com/san-kum/chaoscrypt/internal/keygen"
	"github.com/san-kum/chaoscrypt/internal/logging"
	"github.com/san-kum/chaoscrypt/internal/metrics"
	"github.com/san-kum/chaoscrypt/internal/seed"
	"github.com/san-kum/chaoscrypt/internal/sim"
	"github.com/san-kum/chaoscrypt/internal/storage"
	"github.com/san-kum/chaoscrypt/internal/systems"
	"github.com/san-kum/chaoscrypt/internal/telemetry"
)

type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *telemetry.Metrics
}

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithTelemetry(m *telemetry.Metrics) Option {
	return func(p *Pipeline) { p.telemetry = m }
}

// New validates cfg and returns a pipeline bound to a copy of it.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg.Clone(), logger: logging.Discard()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pipeline) Config() *config.Config { return p.cfg.Clone() }

func (p *Pipeline) observe(op string, start time.Time, err error) {
	if p.telemetry != nil {
		p.telemetry.ObserveOperation(op, start, err)
	}
	if err != nil {
		p.logger.Error(op+" failed", "error", err, "elapsed", time.Since(start))
	}
}

// Derivation is the full record of one seed derivation.
type Derivation struct {
	Material  *keygen.Material
	Expansion seed.Expansion
	Results   [systems.Count]*sim.Result
}

// Derive expands seed, integrates the three systems concurrently and
// derives keys and S-boxes from their trajectories.
func (p *Pipeline) Derive(ctx context.Context, s string) (d *Derivation, err error) {
	start := time.Now()
	defer func() { p.observe("derive", start, err) }()

	if s == "" {
		return nil, fmt.Errorf("%w: seed must not be empty", dynamo.ErrInvalidInput)
	}

	exp, err := seed.ExpandContext(ctx, s, p.cfg.SeedOptions())
	if err != nil {
		return nil, fmt.Errorf("expand seed: %w", err)
	}
	for _, kind := range systems.Kinds {
		if exp.Fallback[kind] {
			p.logger.Warn("seed candidates rejected, using defaults", "system", kind.String(), "attempts", exp.Attempts[kind])
		}
		if p.telemetry != nil {
			p.telemetry.SetScreenAttempts(kind.String(), exp.Attempts[kind])
		}
	}

	bound := p.cfg.Screen.Bound
	results, err := sim.RunAll(ctx, exp.Specs, p.cfg.MaterialSim(), func(_ systems.Kind, s *sim.Simulator) {
		for _, m := range metrics.Standard(bound) {
			s.AddMetric(m)
		}
	})
	if err != nil {
		return nil, err
	}

	var trajs [systems.Count]*dynamo.Trajectory
	for i, r := range results {
		trajs[i] = r.Trajectory
	}
	mat, err := keygen.NewMaterial(exp.Specs, trajs, p.cfg.KeygenOptions())
	if err != nil {
		return nil, err
	}

	for _, kind := range systems.Kinds {
		bits := mat.Bitstreams[kind]
		balance := float64(bits.Ones()) / float64(len(bits))
		if p.telemetry != nil {
			p.telemetry.SetBitBalance(kind.String(), balance)
		}
		p.logger.Debug("derived system material",
			"system", kind.String(),
			"bits", len(bits),
			"balance", balance,
			"elapsed", results[kind].Elapsed)
	}
	p.logger.Info("material derived", "fingerprint", mat.FingerprintHex(), "elapsed", time.Since(start))

	return &Derivation{Material: mat, Expansion: exp, Results: results}, nil
}

// DeriveMaterial is Derive without the simulation record.
func (p *Pipeline) DeriveMaterial(ctx context.Context, s string) (*keygen.Material, error) {
	d, err := p.Derive(ctx, s)
	if err != nil {
		return nil, err
	}
	return d.Material, nil
}

func (p *Pipeline) EncryptImage(ctx context.Context, pixels []byte, shape cipher.Shape, rounds int, m *keygen.Material) (out []byte, err error) {
	start := time.Now()
	defer func() { p.observe("encrypt", start, err) }()

	sched, err := cipher.FromMaterial(m)
	if err != nil {
		return nil, err
	}
	if out, err = sched.Encrypt(ctx, pixels, shape, rounds); err != nil {
		return nil, err
	}
	if p.telemetry != nil {
		p.telemetry.AddBytes("encrypt", len(out))
	}
	p.logger.Info("image encrypted", "shape", shape.String(), "rounds", rounds, "bytes", len(out), "elapsed", time.Since(start))
	return out, nil
}

func (p *Pipeline) DecryptImage(ctx context.Context, data []byte, shape cipher.Shape, rounds int, m *keygen.Material) (out []byte, err error) {
	start := time.Now()
	defer func() { p.observe("decrypt", start, err) }()

	sched, err := cipher.FromMaterial(m)
	if err != nil {
		return nil, err
	}
	if out, err = sched.Decrypt(ctx, data, shape, rounds); err != nil {
		return nil, err
	}
	if p.telemetry != nil {
		p.telemetry.AddBytes("decrypt", len(out))
	}
	p.logger.Info("image decrypted", "shape", shape.String(), "rounds", rounds, "bytes", len(out), "elapsed", time.Since(start))
	return out, nil
}

// ComputeLyapunov estimates the spectrum of each system concurrently.
func (p *Pipeline) ComputeLyapunov(ctx context.Context, specs [systems.Count]systems.Spec) (out [systems.Count]analysis.Spectrum, err error) {
	start := time.Now()
	defer func() { p.observe("lyapunov", start, err) }()

	g, gctx := errgroup.WithContext(ctx)
	for i := range specs {
		g.Go(func() error {
			sp, err := analysis.EstimateSpectrum(gctx, specs[i], p.cfg.Lyapunov)
			if err != nil {
				return err
			}
			out[i] = sp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	for _, sp := range out {
		if p.telemetry != nil {
			for rank, v := range sp.Sorted {
				p.telemetry.SetExponent(sp.System, strconv.Itoa(rank+1), v)
			}
		}
		p.logger.Info("lyapunov spectrum",
			"system", sp.System,
			"exponents", sp.Sorted,
			"positive", sp.Positive,
			"hyperchaotic", sp.Hyperchaotic)
	}
	return out, nil
}

// separationD0 is the perturbation used by the separation estimate.
const separationD0 = 1e-8

// CrossCheckLyapunov estimates the largest exponent of each system with the
// trajectory separation method, independently of the tangent dynamics used
// by ComputeLyapunov.
func (p *Pipeline) CrossCheckLyapunov(ctx context.Context, specs [systems.Count]systems.Spec) (out [systems.Count]float64, err error) {
	start := time.Now()
	defer func() { p.observe("lyapunov_cross_check", start, err) }()

	g, gctx := errgroup.WithContext(ctx)
	for i := range specs {
		g.Go(func() error {
			l1, err := analysis.LargestExponent(gctx, specs[i], p.cfg.Lyapunov, separationD0)
			if err != nil {
				return err
			}
			out[i] = l1
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	for i, l1 := range out {
		p.logger.Info("separation exponent", "system", specs[i].Kind().String(), "lambda1", l1)
	}
	return out, nil
}

// Analyze builds the statistical report for an encryption under m.
func (p *Pipeline) Analyze(ctx context.Context, original, encrypted, decrypted []byte, shape cipher.Shape, rounds int, m *keygen.Material) (r *imagestats.Report, err error) {
	start := time.Now()
	defer func() { p.observe("analyze", start, err) }()

	sched, err := cipher.FromMaterial(m)
	if err != nil {
		return nil, err
	}
	r, err = imagestats.Analyze(ctx, original, encrypted, decrypted, shape, rounds, sched, m.Specs, p.cfg.AnalysisOptions())
	if err != nil {
		return nil, err
	}
	p.logger.Info("analysis complete",
		"shape", shape.String(),
		"rounds", rounds,
		"entropy_original", r.Original.Entropy.Overall,
		"entropy_encrypted", r.Encrypted.Entropy.Overall,
		"elapsed", time.Since(start))
	return r, nil
}

// RunMetadata describes d for persistence. spectra may be nil.
func (p *Pipeline) RunMetadata(command string, d *Derivation, spectra []analysis.Spectrum) storage.RunMetadata {
	meta := storage.RunMetadata{
		Command:     command,
		Fingerprint: d.Material.FingerprintHex(),
		Sim:         p.cfg.MaterialSim(),
		Metrics:     make(map[string]map[string]float64, systems.Count),
		Spectra:     spectra,
	}
	for _, kind := range systems.Kinds {
		meta.Systems = append(meta.Systems, d.Material.Specs[kind].Info())
		if r := d.Results[kind]; r != nil {
			meta.Metrics[kind.String()] = r.Metrics
		}
	}
	return meta
}

// Trajectories returns the sampled runs of d in system order.
func (d *Derivation) Trajectories() []*dynamo.Trajectory {
	out := make([]*dynamo.Trajectory, 0, systems.Count)
	for _, t := range d.Material.Trajectories {
		out = append(out, t)
	}
	return out
}
