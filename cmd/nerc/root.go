package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/nerc/internal/logging"
	"github.com/cognicore/nerc/pkg/nerc/config"
	"github.com/cognicore/nerc/pkg/nerc/corpus"
)

// app carries the settings shared by every subcommand
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "nerc",
		Short: "Named entity corpus tooling",
		Long: `nerc reads BIO-annotated corpora, reports their entities and
extracts per-token training events into an event store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.nerc.yaml)")
	pf.StringP("params", "p", "", "parameters file")
	pf.StringP("lang", "l", "", "corpus language, overrides the parameters file")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("db", "nerc-events.db", "event store path")
	for _, name := range []string{"params", "lang", "log-level", "log-format", "db"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	rootCmd.AddCommand(
		newEventsCmd(a),
		newSpansCmd(a),
		newStatsCmd(a),
		newRunsCmd(a),
	)
	return rootCmd
}

// initConfig reads in config file and ENV variables if set
func (a *app) initConfig() error {
	a.v.SetEnvPrefix("NERC")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		path, err := homedir.Expand(a.cfgFile)
		if err != nil {
			return err
		}
		a.v.SetConfigFile(path)
		return a.v.ReadInConfig()
	}

	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	a.v.AddConfigPath(home)
	a.v.SetConfigName(".nerc")
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func (a *app) logger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := logging.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(a.v.GetString("log-format"))
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), level, format), nil
}

// path expands a leading ~ in a path setting
func (a *app) path(key string) (string, error) {
	p := a.v.GetString(key)
	if p == "" {
		return "", nil
	}
	return homedir.Expand(p)
}

func (a *app) components() (*config.Components, error) {
	params, err := a.path("params")
	if err != nil {
		return nil, err
	}
	loader := config.Loader{
		ParamsPath: params,
		Language:   a.v.GetString("lang"),
	}
	return loader.Load()
}

// corpora returns the corpus files named on the command line, falling back
// to fallback (a path from the parameters file)
func corpora(args []string, fallback string) ([]string, error) {
	if len(args) == 0 {
		if fallback == "" {
			return nil, fmt.Errorf("no corpus given and no train_set in the parameters file")
		}
		args = []string{fallback}
	}
	paths := make([]string, len(args))
	for i, arg := range args {
		p, err := homedir.Expand(arg)
		if err != nil {
			return nil, err
		}
		paths[i] = filepath.Clean(p)
	}
	return paths, nil
}

// readCorpus opens path and reads all of its samples
func readCorpus(path string, opts corpus.Options) ([]corpus.Sample, error) {
	src, err := corpus.OpenFile(path)
	if err != nil {
		return nil, err
	}
	r := corpus.NewReader(src, opts)
	defer r.Close()

	samples, err := corpus.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}
