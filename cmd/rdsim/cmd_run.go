package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/rdiff/config"
	"github.com/katalvlaran/rdiff/export"
	"github.com/katalvlaran/rdiff/logging"
	"github.com/katalvlaran/rdiff/mesh"
	"github.com/katalvlaran/rdiff/mtx"
	"github.com/katalvlaran/rdiff/reaction"
	"github.com/katalvlaran/rdiff/sparse"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation until steady state or the step budget",
		Long: `Load S, D and the mesh, seed N inside the fill zone and step until
‖N − N_prev‖₂ drops below convergence_tol or max_steps is reached.

Flags override the configuration file and RDIFF_* variables.

Examples:
  rdsim run --config run.yaml
  rdsim run --stiffness S.mtx --damping D.mtx --mesh mesh.dat --csv N.csv
  rdsim run --config run.yaml --db runs.db --fields --every 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)
			if err := cfg.ValidateInputs(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			return runSimulation(cmd, cfg)
		},
	}

	cmd.Flags().String("stiffness", "", "Matrix Market file of the stiffness matrix S")
	cmd.Flags().String("damping", "", "Matrix Market file of the damping matrix D")
	cmd.Flags().String("mesh", "", "Node coordinate file")
	cmd.Flags().Int("max-steps", 0, "Step budget")
	cmd.Flags().Float64("dt", 0, "Timestep size")
	cmd.Flags().String("csv", "", "Write recorded fields to this CSV file")
	cmd.Flags().String("db", "", "Record run history into this SQLite database")
	cmd.Flags().Int("every", 0, "Record one step out of every k")
	cmd.Flags().Bool("fields", false, "Store full fields in the database")
	cmd.Flags().Bool("fill-p", false, "Seed P with the fill value as well")

	return cmd
}

// applyRunFlags copies explicitly set flags into cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("stiffness") {
		cfg.Inputs.Stiffness, _ = f.GetString("stiffness")
	}
	if f.Changed("damping") {
		cfg.Inputs.Damping, _ = f.GetString("damping")
	}
	if f.Changed("mesh") {
		cfg.Inputs.Mesh, _ = f.GetString("mesh")
	}
	if f.Changed("max-steps") {
		cfg.Simulation.MaxSteps, _ = f.GetInt("max-steps")
	}
	if f.Changed("dt") {
		cfg.Simulation.Dt, _ = f.GetFloat64("dt")
	}
	if f.Changed("csv") {
		cfg.Output.CSV, _ = f.GetString("csv")
	}
	if f.Changed("db") {
		cfg.Output.SQLite, _ = f.GetString("db")
	}
	if f.Changed("every") {
		cfg.Output.Every, _ = f.GetInt("every")
	}
	if f.Changed("fields") {
		cfg.Output.StoreFields, _ = f.GetBool("fields")
	}
	if f.Changed("fill-p") {
		cfg.Fill.FillP, _ = f.GetBool("fill-p")
	}
}

// inputs are the loaded FEM data of a run.
type inputs struct {
	mesh      *mesh.Mesh
	stiffness *sparse.Matrix
	damping   *sparse.Matrix
}

func loadInputs(cfg *config.Config, log *slog.Logger) (*inputs, error) {
	hint, err := cfg.ReadType()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := mesh.Load(cfg.Inputs.Mesh)
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh: %w", err)
	}
	S, err := mtx.Load(cfg.Inputs.Stiffness, hint)
	if err != nil {
		return nil, fmt.Errorf("failed to load stiffness: %w", err)
	}
	D, err := mtx.Load(cfg.Inputs.Damping, hint)
	if err != nil {
		return nil, fmt.Errorf("failed to load damping: %w", err)
	}

	lo, hi := m.Bounds()
	log.Info("inputs loaded",
		"nodes", m.Len(),
		"stiffness_nnz", S.NNZ(),
		"damping_nnz", D.NNZ(),
		"bounds", fmt.Sprintf("(%g,%g)-(%g,%g)", lo.X, lo.Y, hi.X, hi.Y),
		"duration", time.Since(start))
	if log.Enabled(context.Background(), logging.LevelTrace) {
		log.Log(context.Background(), logging.LevelTrace, "stiffness stats", "stats", S.Stats())
		log.Log(context.Background(), logging.LevelTrace, "damping stats", "stats", D.Stats())
	}

	return &inputs{mesh: m, stiffness: S, damping: D}, nil
}

// sinks are the observers built from the output section.
type sinks struct {
	observers export.Multi
	csv       *export.CSVSink
	db        *export.SQLiteSink
}

func openSinks(ctx context.Context, cfg *config.Config, nodes int, log *slog.Logger) (*sinks, error) {
	s := &sinks{}
	every := max(cfg.Output.Every, 1)

	if cfg.Output.CSV != "" {
		opts := []export.CSVOption{export.WithCSVEvery(every)}
		if cfg.Output.IncludeP {
			opts = append(opts, export.WithP())
		}
		c, err := export.CreateCSV(cfg.Output.CSV, opts...)
		if err != nil {
			return nil, err
		}
		s.csv = c
		s.observers = append(s.observers, c)
	}
	if cfg.Output.SQLite != "" {
		opts := []export.SQLiteOption{export.WithSQLiteEvery(every)}
		if cfg.Output.StoreFields {
			opts = append(opts, export.WithFields())
		}
		db, err := export.OpenSQLite(ctx, cfg.Output.SQLite, nodes, cfg.Params(), opts...)
		if err != nil {
			s.close(log)
			return nil, err
		}
		s.db = db
		s.observers = append(s.observers, db)
		log.Info("recording run", "db", cfg.Output.SQLite, "run_id", db.RunID())
	}
	if cfg.Output.ProgressEvery > 0 {
		s.observers = append(s.observers, export.NewLogSink(log, cfg.Output.ProgressEvery))
	}

	return s, nil
}

func (s *sinks) finish(o reaction.Outcome, log *slog.Logger) {
	if s.db != nil {
		if err := s.db.Finish(o); err != nil {
			log.Error("failed to record outcome", "err", err)
		}
	}
}

func (s *sinks) close(log *slog.Logger) {
	if s.csv != nil {
		if err := s.csv.Close(); err != nil {
			log.Error("failed to close csv", "err", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("failed to close database", "err", err)
		}
	}
}

// runSummary is the JSON form of a finished run.
type runSummary struct {
	State     string   `json:"state"`
	Steps     int      `json:"steps"`
	SimTime   float64  `json:"sim_time"`
	ElapsedMS float64  `json:"elapsed_ms"`
	Delta     *float64 `json:"delta"`
	NMass     float64  `json:"n_mass"`
	PMass     float64  `json:"p_mass"`
	RunID     int64    `json:"run_id,omitempty"`
}

func runSimulation(cmd *cobra.Command, cfg *config.Config) error {
	log := newLogger(cfg, cmd.ErrOrStderr())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			log.Warn("signal received, stopping after the current step", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	in, err := loadInputs(cfg, log)
	if err != nil {
		return err
	}
	zone, err := cfg.Zone()
	if err != nil {
		return err
	}

	// Sinks use the parent context so the outcome can be recorded after a signal.
	out, err := openSinks(cmd.Context(), cfg, in.mesh.Len(), log)
	if err != nil {
		return err
	}
	defer out.close(log)

	st, err := reaction.Initialize(in.mesh, in.stiffness, in.damping, cfg.Params(), zone,
		reaction.WithObserver(out.observers),
		reaction.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	outcome, runErr := st.Run(ctx, cfg.Simulation.MaxSteps)
	out.finish(outcome, log)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("interrupted after %d steps: %w", outcome.Steps, runErr)
		}
		return runErr
	}

	sum := summarize(outcome, st, out)
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return writeJSON(cmd.OutOrStdout(), sum)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "state:      %s\n", sum.State)
	fmt.Fprintf(w, "steps:      %d\n", sum.Steps)
	fmt.Fprintf(w, "sim time:   %g\n", sum.SimTime)
	fmt.Fprintf(w, "elapsed:    %v\n", outcome.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "delta:      %g\n", outcome.Delta)
	fmt.Fprintf(w, "mass N / P: %g / %g\n", sum.NMass, sum.PMass)
	if sum.RunID != 0 {
		fmt.Fprintf(w, "run id:     %d\n", sum.RunID)
	}

	return nil
}

func summarize(o reaction.Outcome, st *reaction.Stepper, s *sinks) runSummary {
	sum := runSummary{
		State:     o.State.String(),
		Steps:     o.Steps,
		SimTime:   o.SimTime,
		ElapsedMS: float64(o.Elapsed.Microseconds()) / 1e3,
		Delta:     jsonFloat(o.Delta),
		NMass:     floats.Sum(st.N()),
		PMass:     floats.Sum(st.P()),
	}
	if s.db != nil {
		sum.RunID = s.db.RunID()
	}

	return sum
}
