package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"fibertrack/pkg/config"
	"fibertrack/pkg/particles"
	"fibertrack/pkg/reconstruction"
)

// buildOptions holds the flags of the build command
type buildOptions struct {
	configPath      string
	particleFile    string
	minFiberLength  float64
	particleSpacing []float64

	// set when the corresponding flag was given explicitly
	minLengthSet bool
	spacingSet   bool
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build [particle-file]",
		Short: "Reconstruct fibers from a particle buffer",
		Long: `Reads a raw particle buffer (little-endian float32, ten values per particle),
links the particles into fibers and reports the fibers that reach the minimum length.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.particleFile = args[0]
			}
			opts.minLengthSet = cmd.Flags().Changed("min-length")
			opts.spacingSet = cmd.Flags().Changed("spacing")
			return runBuild(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().Float64VarP(&opts.minFiberLength, "min-length", "l", 0, "minimum fiber length in physical units (overrides config)")
	cmd.Flags().Float64SliceVar(&opts.particleSpacing, "spacing", nil, "particle spacing x,y,z (overrides config)")

	return cmd
}

// runBuild loads the configuration, reconstructs the fibers and writes a summary to w
func runBuild(ctx context.Context, opts buildOptions, w io.Writer) error {
	logger := loggerFromContext(ctx)

	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	if cfg.Output.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if opts.particleFile != "" {
		cfg.Input.ParticleFile = opts.particleFile
	}
	if opts.minLengthSet {
		cfg.Reconstruction.MinFiberLength = opts.minFiberLength
	}
	if opts.spacingSet {
		if len(opts.particleSpacing) != 3 {
			return errors.Wrapf(config.ErrInvalidConfig, "--spacing needs 3 values, got %d", len(opts.particleSpacing))
		}
		copy(cfg.Reconstruction.ParticleSpacing[:], opts.particleSpacing)
	}
	if cfg.Input.ParticleFile == "" {
		return errors.Wrap(config.ErrInvalidConfig, "no particle file given")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	geom, err := cfg.ImageGeometry()
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	buf, n, err := particles.ReadFile(cfg.Input.ParticleFile)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d particles", n))

	if err := ctx.Err(); err != nil {
		return err
	}

	store, err := reconstruction.NewStore(buf, n, cfg.Reconstruction.ParticleSpacing)
	if err != nil {
		return err
	}
	if dropped := store.NormalizedLinks(); dropped > 0 {
		logger.Warn("dropped links pointing outside the particle set", "links", dropped)
	}

	prog = newProgress(logger)
	builder := reconstruction.NewFiberBuilder(store, geom)
	builder.SetLogger(logger)
	pd, err := builder.Reconstruct(cfg.Reconstruction.MinFiberLength)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Reconstructed %d fibers", pd.NumFibers()))

	writeSummary(w, reconstruction.ComputeMetrics(pd), cfg.Reconstruction.MinFiberLength)
	return nil
}

// writeSummary prints the reconstruction metrics in a fixed layout
func writeSummary(w io.Writer, m reconstruction.Metrics, minLength float64) {
	fmt.Fprintf(w, "Fibers:            %d (min length %.2f)\n", m.Fibers, minLength)
	fmt.Fprintf(w, "Pool points:       %d (%d referenced, %d orphaned)\n", m.PoolPoints, m.ReferencedPoints, m.OrphanedPoints)
	fmt.Fprintf(w, "Total length:      %.3f\n", m.TotalLength)
	fmt.Fprintf(w, "Fiber length:      mean %.3f, std %.3f, min %.3f, max %.3f\n",
		m.MeanLength, m.StdDevLength, m.MinLength, m.MaxLength)
	fmt.Fprintf(w, "Points per fiber:  %.2f\n", m.MeanPoints)
}
