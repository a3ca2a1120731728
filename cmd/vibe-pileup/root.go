package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-pileup/internal/pileup"
	"github.com/inodb/vibe-pileup/internal/quality"
)

// rootOptions holds the flags shared by all subcommands.
type rootOptions struct {
	qualityEncoding string
	minBaseQuality  int
	noQualities     bool
	samples         []int

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "vibe-pileup",
		Short: "Parse and summarize samtools (m)pileup files",
		Long: `vibe-pileup parses samtools (m)pileup files into per-sample base
tallies, and can summarize them or convert them to sync, tab, or DuckDB
output.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cmd); err != nil {
				return err
			}
			logger, err := newLogger(viper.GetString("log-level"))
			if err != nil {
				return err
			}
			opts.logger = logger
			opts.qualityEncoding = viper.GetString("quality-encoding")
			opts.minBaseQuality = viper.GetInt("min-base-quality")
			opts.noQualities = viper.GetBool("no-qualities")
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("quality-encoding", "sanger",
		"Phred quality encoding: sanger, illumina-1.3, illumina-1.5, illumina-1.8, solexa")
	pf.Int("min-base-quality", 0, "Minimum phred score for a base to be tallied")
	pf.Bool("no-qualities", false, "Input has no quality string columns")
	pf.IntSliceVar(&opts.samples, "sample", nil,
		"Sample indices to keep (repeatable; default: all samples)")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newConvertCmd(opts))
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig merges ~/.vibe-pileup.yaml under the command-line flags.
func initConfig(cmd *cobra.Command) error {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".vibe-pileup")
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}
	return viper.BindPFlags(cmd.Flags())
}

// newLogger builds the CLI logger, writing to stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// newReader builds a pileup reader from the resolved options.
func (opts *rootOptions) newReader() (*pileup.Reader, error) {
	enc, err := quality.ParseEncoding(opts.qualityEncoding)
	if err != nil {
		return nil, err
	}
	if opts.minBaseQuality < 0 || opts.minBaseQuality > 255 {
		return nil, fmt.Errorf("min-base-quality %d out of range", opts.minBaseQuality)
	}
	r := pileup.NewReader()
	r.QualityEncoding = enc
	r.MinPhredScore = uint8(opts.minBaseQuality)
	r.WithQualityString = !opts.noQualities
	return r, nil
}

// newIterator opens the input and builds an iterator honoring --sample.
func (opts *rootOptions) newIterator(path string) (*pileup.Iterator, func() error, error) {
	r, err := opts.newReader()
	if err != nil {
		return nil, nil, err
	}
	src, closeFn, name, err := openInput(path)
	if err != nil {
		return nil, nil, err
	}
	var it *pileup.Iterator
	if len(opts.samples) > 0 {
		it, err = pileup.NewIteratorIndices(src, name, opts.samples, r)
	} else {
		it, err = pileup.NewIterator(src, name, r)
	}
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return it, closeFn, nil
}

// defaultOutputPath derives an output path from the input by swapping the
// extension, e.g. sample.pileup -> sample.sync.
func defaultOutputPath(input, ext string) string {
	if input == "-" {
		return ""
	}
	base := input
	if e := filepath.Ext(base); e == ".gz" {
		base = base[:len(base)-len(e)]
	}
	if e := filepath.Ext(base); e != "" {
		base = base[:len(base)-len(e)]
	}
	return base + ext
}
