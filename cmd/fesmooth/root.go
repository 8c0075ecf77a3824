// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/fesmooth/optdata"
	"github.com/katalvlaran/fesmooth/selector"
)

const (
	envPrefix      = "FESMOOTH"
	configFileName = "fesmooth"
	configFileType = "yaml"

	keyCriterion     = "criterion"
	keyDOF           = "dof_evaluation"
	keyInitialLambda = "initial_lambda"
	keyLambdas       = "lambdas"
	keyTolerance     = "tolerance"
	keyMaxIter       = "max_iter"
	keySeed          = "seed"
	keyProbes        = "probes"
	keyParallel      = "parallel"
	keyVerbose       = "verbose"
)

// app carries per-invocation state between cobra hooks.
type app struct {
	v          *viper.Viper
	logger     *zap.Logger
	configPath string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:          "fesmooth <problem.yaml>",
		Short:        "Select the smoothing parameter of a finite-element regression by GCV",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			return a.buildLogger()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd, args[0])
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "CLI defaults file (default ./fesmooth.yaml)")
	f.BoolP("verbose", "v", false, "log every evaluation at debug level")

	f = cmd.Flags()
	f.String("criterion", "", "search strategy: batch, newton or newton_fd")
	f.String("dof", "", "degrees-of-freedom evaluation: exact or stochastic")
	f.Float64("initial-lambda", 0, "Newton starting λ (default: trace ratio)")
	f.StringSlice("lambdas", nil, "batch grid, comma separated")
	f.Float64("tolerance", 0, "relative step tolerance")
	f.Int("max-iter", 0, "Newton iteration bound")
	f.Int64("seed", 0, "stochastic probe seed")
	f.Int("probes", 0, "number of stochastic probes")
	f.Bool("parallel", false, "evaluate the batch grid concurrently")

	for key, flag := range map[string]string{
		keyCriterion:     "criterion",
		keyDOF:           "dof",
		keyInitialLambda: "initial-lambda",
		keyLambdas:       "lambdas",
		keyTolerance:     "tolerance",
		keyMaxIter:       "max-iter",
		keySeed:          "seed",
		keyProbes:        "probes",
		keyParallel:      "parallel",
	} {
		_ = a.v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
	_ = a.v.BindPFlag(keyVerbose, cmd.PersistentFlags().Lookup("verbose"))

	cmd.AddCommand(newDefaultsCmd())

	return cmd
}

// loadConfig wires the environment and the optional defaults file into viper.
// A missing defaults file is not an error.
func (a *app) loadConfig() error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.configPath != "" {
		a.v.SetConfigFile(a.configPath)
	} else {
		a.v.SetConfigName(configFileName)
		a.v.SetConfigType(configFileType)
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

func (a *app) buildLogger() error {
	cfg := zap.NewProductionConfig()
	if a.v.GetBool(keyVerbose) {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = l

	return nil
}

// run loads the problem, applies overrides, selects λ and prints the report.
func (a *app) run(ctx context.Context, cmd *cobra.Command, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := loadProblem(path)
	if err != nil {
		return err
	}
	cfg, err := a.overrides(p.Optimization)
	if err != nil {
		return err
	}
	data, model, err := p.build(a.logger)
	if err != nil {
		return err
	}

	sol, err := selector.Run(ctx, data, model, cfg, selector.WithLogger(a.logger))
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(newReport(sol))
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)

	return err
}

// overrides applies every flag, environment variable or defaults-file key
// that was explicitly set on top of cfg.
func (a *app) overrides(cfg optdata.Config) (optdata.Config, error) {
	v := a.v
	var err error
	if v.IsSet(keyCriterion) {
		if cfg.Criterion, err = optdata.ParseCriterion(v.GetString(keyCriterion)); err != nil {
			return cfg, err
		}
	}
	if v.IsSet(keyDOF) {
		if cfg.DOF, err = optdata.ParseDOFEvaluation(v.GetString(keyDOF)); err != nil {
			return cfg, err
		}
	}
	if v.IsSet(keyInitialLambda) {
		cfg.InitialLambda = v.GetFloat64(keyInitialLambda)
	}
	if v.IsSet(keyLambdas) {
		if cfg.Lambdas, err = parseGrid(v.GetStringSlice(keyLambdas)); err != nil {
			return cfg, err
		}
	}
	if v.IsSet(keyTolerance) {
		cfg.Tolerance = v.GetFloat64(keyTolerance)
	}
	if v.IsSet(keyMaxIter) {
		cfg.MaxIter = v.GetInt(keyMaxIter)
	}
	if v.IsSet(keySeed) {
		cfg.Seed = v.GetInt64(keySeed)
	}
	if v.IsSet(keyProbes) {
		cfg.Probes = v.GetInt(keyProbes)
	}
	if v.IsSet(keyParallel) {
		cfg.Parallel = v.GetBool(keyParallel)
	}

	return cfg, nil
}

// parseGrid accepts "0.1,1" as well as repeated values.
func parseGrid(items []string) ([]float64, error) {
	var grid []float64
	for _, item := range items {
		for _, s := range strings.Split(item, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			l, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("lambdas: %w", err)
			}
			grid = append(grid, l)
		}
	}

	return grid, nil
}

// newDefaultsCmd prints the default optimization block.
func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default optimization block as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := optdata.DefaultConfig().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
