// Package cli wires the sitelink commands together.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/sitelink/internal/commands"
	"github.com/arthur-debert/sitelink/internal/version"
	"github.com/arthur-debert/sitelink/pkg/cobrax/topics"
	"github.com/arthur-debert/sitelink/pkg/config"
	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/filesystem"
	"github.com/arthur-debert/sitelink/pkg/installer"
	"github.com/arthur-debert/sitelink/pkg/logging"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/pipeline"
	"github.com/arthur-debert/sitelink/pkg/registry"
	"github.com/arthur-debert/sitelink/pkg/remover"
	"github.com/arthur-debert/sitelink/pkg/searchpath"
	"github.com/arthur-debert/sitelink/pkg/style"
	"github.com/arthur-debert/sitelink/pkg/types"
	"github.com/arthur-debert/sitelink/pkg/ui"
	"github.com/arthur-debert/sitelink/pkg/verifier"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "sitelink",
		Short: commands.MsgRootShort,
		Long: `sitelink makes a locally supplied copy of a package win over a
same-named registry-installed copy. It removes the installed copy from
the site root, links the local source tree in its place, and verifies
that name-based resolution now reaches the local tree.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Preview changes without executing them")
	rootCmd.PersistentFlags().String("root", "", "Site root to operate on (default: configured or version-derived)")
	rootCmd.PersistentFlags().String("python-version", "", "Python version the default site root derives from")
	rootCmd.PersistentFlags().StringP("format", "f", "auto", "Output format: auto, term, text, json, yaml")

	// Custom help command comes from the topics system
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPrepareCmd())
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newVerifyCmd())

	// Initialize topic-based help, looking near the executable first
	if exe, err := os.Executable(); err == nil {
		possiblePaths := []string{
			filepath.Join(filepath.Dir(exe), "..", "..", "docs", "help"),
			filepath.Join(filepath.Dir(exe), "docs", "help"),
			"docs/help",
		}
		for _, helpPath := range possiblePaths {
			if _, err := os.Stat(helpPath); err == nil {
				if err := topics.InitializeWithOptions(rootCmd, helpPath, topics.Options{
					Renderer: topics.NewGlamourRenderer(),
				}); err == nil {
					break
				}
			}
		}
	}

	return rootCmd
}

// runEnv bundles what every command needs to operate
type runEnv struct {
	cfg      *config.Config
	paths    *paths.Paths
	fs       types.FS
	search   searchpath.SearchPath
	registry *registry.Client
	dryRun   bool
	format   ui.Format
}

// newRunEnv merges configuration and flags into a ready-to-use
// environment. Flags beat config which beats built-in defaults.
func newRunEnv(cmd *cobra.Command) (*runEnv, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf(commands.MsgErrLoadConfig, err)
	}

	flags := cmd.Root().PersistentFlags()

	siteRoot := cfg.Site.Root
	if v, _ := flags.GetString("root"); v != "" {
		siteRoot = v
	}
	pythonVersion := cfg.Site.PythonVersion
	if v, _ := flags.GetString("python-version"); v != "" {
		pythonVersion = v
	}

	p, err := paths.New(siteRoot, pythonVersion)
	if err != nil {
		return nil, fmt.Errorf(commands.MsgErrInitPaths, err)
	}

	// Env entries come first, then the trees the project config
	// declares, each consulted before the site root.
	entries := append(paths.SearchPathFromEnv(), cfg.Install.Trees...)
	search, err := searchpath.New(entries, p.SiteRoot())
	if err != nil {
		return nil, err
	}

	formatFlag, _ := flags.GetString("format")
	format, err := ui.ParseFormat(formatFlag)
	if err != nil {
		return nil, fmt.Errorf(commands.MsgErrBadFormat, err)
	}

	env := &runEnv{
		cfg:    cfg,
		paths:  p,
		fs:     filesystem.NewOS(),
		search: search,
		format: ui.Resolve(format, os.Stdout),
	}
	env.dryRun, _ = flags.GetBool("dry-run")

	if cfg.Install.RegistryIndex != "" {
		env.registry = registry.NewClient(cfg.Install.RegistryIndex, cfg.Install.FetchAttempts)
	}

	return env, nil
}

// componentArg picks the component to operate on: an explicit argument
// wins, otherwise the configured component is used.
func componentArg(args []string, cfg *config.Config) (types.Component, error) {
	if len(args) > 0 {
		return types.Component(args[0]), nil
	}
	if cfg.Component != "" {
		return types.Component(cfg.Component), nil
	}
	return "", errors.New(errors.ErrInvalidInput, commands.MsgErrNoComponent)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: commands.MsgVersionShort,
		Long:  commands.MsgVersionLong,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf(commands.MsgVersionFormat, version.Version)
			if version.Commit != "" {
				fmt.Printf(commands.MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				fmt.Printf(commands.MsgBuiltFormat, version.Date)
			}
		},
	}
}

func newPrepareCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "prepare <tree>",
		Short:   commands.MsgPrepareShort,
		Long:    commands.MsgPrepareLong,
		Example: commands.MsgPrepareExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv(cmd)
			if err != nil {
				return err
			}

			pl := pipeline.New(env.fs, env.paths, env.search, env.dryRun)
			if env.registry != nil {
				pl.WithRegistry(env.registry)
			}

			result, runErr := pl.Run(cmd.Context(), args[0])

			if err := ui.Write(os.Stdout, env.format, result, func() string {
				return style.RenderRun(result)
			}); err != nil {
				return err
			}

			if env.dryRun && runErr == nil && env.format == ui.FormatTerminal {
				fmt.Println(commands.MsgDryRunNotice)
			}

			return runErr
		},
	}
}

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <tree>",
		Short: commands.MsgInstallShort,
		Long:  commands.MsgInstallLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv(cmd)
			if err != nil {
				return err
			}

			inst := installer.New(env.fs, env.paths, env.search, env.dryRun)
			if env.registry != nil {
				inst.WithRegistry(env.registry)
			}

			result, err := inst.Install(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return ui.Write(os.Stdout, env.format, result, func() string {
				return style.RenderInstall(result)
			})
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [component]",
		Short: commands.MsgRemoveShort,
		Long:  commands.MsgRemoveLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv(cmd)
			if err != nil {
				return err
			}

			component, err := componentArg(args, env.cfg)
			if err != nil {
				return err
			}

			rm := remover.New(env.fs, env.paths, env.dryRun)
			result, err := rm.Remove(component)
			if err != nil {
				return err
			}

			return ui.Write(os.Stdout, env.format, result, func() string {
				return style.RenderRemoval(result)
			})
		},
	}
}

func newVerifyCmd() *cobra.Command {
	var expect string

	cmd := &cobra.Command{
		Use:     "verify [component]",
		Short:   commands.MsgVerifyShort,
		Long:    commands.MsgVerifyLong,
		Example: commands.MsgVerifyExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv(cmd)
			if err != nil {
				return err
			}

			component, err := componentArg(args, env.cfg)
			if err != nil {
				return err
			}

			v := verifier.New(env.fs, env.paths, env.search)
			report, verifyErr := v.Verify(component, expect)

			// The report is worth showing even when verification fails
			if err := ui.Write(os.Stdout, env.format, report, func() string {
				return style.RenderReport(report)
			}); err != nil {
				return err
			}

			return verifyErr
		},
	}

	cmd.Flags().StringVar(&expect, "expect", "", "Assert that resolution lands on this exact path")

	return cmd
}
