// Package commands implements the goblin command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/alexandre1a/goblin-brew/internal/config"
	"github.com/alexandre1a/goblin-brew/internal/formula"
	"github.com/alexandre1a/goblin-brew/internal/operations"
	"github.com/alexandre1a/goblin-brew/internal/utils/logger"
	"github.com/alexandre1a/goblin-brew/internal/utils/network"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Build information, set with -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// CLI represents the goblin command line interface.
type CLI struct {
	rootCmd *cobra.Command
	v       *viper.Viper
	home    string
	fs      afero.Fs
	client  *http.Client

	cfg      *config.Config
	registry *formula.Registry
	manager  *operations.Manager
}

// Option customises a CLI, mostly for tests.
type Option func(*CLI)

// WithHome overrides the user home directory.
func WithHome(home string) Option { return func(c *CLI) { c.home = home } }

// WithFs overrides the filesystem packages are installed on.
func WithFs(fs afero.Fs) Option { return func(c *CLI) { c.fs = fs } }

// WithHTTPClient overrides the client archives are downloaded with.
func WithHTTPClient(client *http.Client) Option { return func(c *CLI) { c.client = client } }

// New creates the goblin CLI.
func New(opts ...Option) *CLI {
	c := &CLI{
		v:  viper.New(),
		fs: afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd := &cobra.Command{
		Use:           "goblin",
		Short:         "Install command line tools from formulae",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		Commit,
		Date,
	))

	flags := rootCmd.PersistentFlags()
	flags.String("prefix", "", "Installation prefix (default ~/.goblin)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.BoolP("verbose", "v", false, "Shorthand for --log-level=debug")
	flags.StringSlice("formula-dir", nil, "Extra directory of *.yaml formulae")
	flags.StringArray("formula-file", nil, "Extra formula file")
	flags.Bool("skip-probe", false, "Do not check that the archive host is reachable first")
	c.bindFlags(flags, map[string]string{
		"prefix":      "prefix",
		"log-level":   "log_level",
		"verbose":     "verbose",
		"formula-dir": "formula_dirs",
		"skip-probe":  "skip_probe",
	})

	c.rootCmd = rootCmd
	rootCmd.AddCommand(
		c.newInstallCmd(),
		c.newTestCmd(),
		c.newRemoveCmd(),
		c.newListCmd(),
		c.newInfoCmd(),
		c.newAuditCmd(),
		c.newSyncCmd(),
		c.newUpgradeCmd(),
		c.newVersionCmd(),
	)
	return c
}

func (c *CLI) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		_ = c.v.BindPFlag(key, flags.Lookup(flag))
	}
}

// setup resolves configuration, logging and the package manager once the
// flags of the invoked command are parsed.
func (c *CLI) setup(cmd *cobra.Command) error {
	if c.home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.home = home
	}

	cfg, err := config.Load(c.v, c.home)
	if err != nil {
		return err
	}
	c.cfg = cfg

	log, err := logger.New(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return err
	}
	logger.Init(log)

	c.registry = formula.NewRegistry(formula.Builtin()...)
	for _, dir := range cfg.FormulaDirs {
		if err := c.registry.LoadDir(dir); err != nil {
			return err
		}
	}
	files, _ := cmd.Flags().GetStringArray("formula-file")
	for _, file := range files {
		f, err := formula.LoadFile(file)
		if err != nil {
			return err
		}
		c.registry.Add(*f)
	}

	client := c.client
	if client == nil {
		client = network.NewSecureHTTPClient(cfg.HTTPTimeout)
	}
	c.manager = operations.NewManager(c.fs, client, cfg, c.registry, cmd.ErrOrStderr())
	return nil
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
