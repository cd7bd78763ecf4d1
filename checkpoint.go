package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/layouteval/agent"
	"github.com/samuelfneumann/layouteval/environment/envconfig"
	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
	"github.com/samuelfneumann/layouteval/initwfn"
)

// checkpointFlags holds the flags of the checkpoint init command
type checkpointFlags struct {
	checkpoints string
	layoutDir   string
	agentType   string
	hidden      []int
	activation  string
	init        string
	initConfig  string
	gain        float64
	value       bool
	force       bool
}

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage the parameter sets agents are loaded from",
	}

	f := &checkpointFlags{}
	initCmd := &cobra.Command{
		Use:   "init layouts...",
		Short: "Create freshly initialized parameter sets for layouts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckpointInit(f, args)
		},
	}

	flags := initCmd.Flags()
	flags.StringVar(&f.checkpoints, "checkpoints",
		envDefault(checkpointsEnv, "checkpoints"), "root directory of parameter sets")
	flags.StringVar(&f.layoutDir, "layout-dir", "", "directory of layout files")
	flags.StringVar(&f.agentType, "agent", "linear", "agent architecture: linear or mlp")
	flags.IntSliceVar(&f.hidden, "hidden", nil, "hidden layer sizes of mlp agents")
	flags.StringVar(&f.activation, "activation", checkpointer.ReLU,
		"hidden activation of mlp agents")
	flags.StringVar(&f.init, "init", string(initwfn.GlorotU),
		"weight initializer: GlorotU, GlorotN, HeU, HeN, Gaussian or Zeroes")
	flags.Float64Var(&f.gain, "gain", 1.0, "initializer gain or standard deviation")
	flags.StringVar(&f.initConfig, "init-config", "",
		"JSON file describing the weight initializer, overrides --init and --gain")
	flags.BoolVar(&f.value, "value", false, "add a state-value head")
	flags.BoolVar(&f.force, "force", false, "overwrite existing parameter sets")

	cmd.AddCommand(initCmd)
	return cmd
}

func runCheckpointInit(f *checkpointFlags, layouts []string) error {
	c := agent.Config{Type: agentType(f.agentType), Hidden: f.hidden,
		Activation: f.activation}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("checkpoint init: %w", err)
	}

	initFn, err := f.initializer()
	if err != nil {
		return fmt.Errorf("checkpoint init: %v", err)
	}

	envConfig := envconfig.Default()
	envConfig.LayoutDir = f.layoutDir

	for _, layout := range layouts {
		path := checkpointer.Path(f.checkpoints, layout)
		if _, err := os.Stat(path); err == nil && !f.force {
			return fmt.Errorf("checkpoint init: %v already exists", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checkpoint init: %v", err)
		}

		e, err := envConfig.Create(layout)
		if err != nil {
			return fmt.Errorf("checkpoint init: %v", err)
		}

		p, err := checkpointer.New(layout, e.ObservationDim(), e.ActionCount(),
			c.Hidden, c.Activation, f.value, initFn)
		if err != nil {
			return fmt.Errorf("checkpoint init: %v", err)
		}
		if err := p.Save(path); err != nil {
			return fmt.Errorf("checkpoint init: %v", err)
		}

		slog.Info("created parameter set", "layout", layout, "path", path,
			"init", initFn)
	}
	return nil
}

// initializer returns the weight initializer described by the flags
func (f *checkpointFlags) initializer() (*initwfn.InitWFn, error) {
	if f.initConfig != "" {
		return initwfn.Load(f.initConfig)
	}
	return initwfn.New(initwfn.Type(f.init), f.gain)
}

// agentType parses an agent architecture name
func agentType(s string) agent.Type {
	return agent.Type(strings.ToLower(s))
}
