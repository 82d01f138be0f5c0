package fsplit

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

type CLIConfig struct {
	ConfigPath  string
	MaxLines    int
	Directory   bool
	DryRun      bool
	Undo        bool
	History     bool
	Verbose     bool
	Nvim        bool
	NoAnimation bool
	Extensions  []string
	Completion  string
}

var cliCfg = &CLIConfig{}

var rootCmd = &cobra.Command{
	Use:   "fsplit [files...]",
	Short: "Split oversized JavaScript/TypeScript files into per-category modules.",
	Long: `Split oversized JavaScript/TypeScript files into types, constants, utils,
components and main files plus an index, replacing the original with a
forwarding module. Every split is backed up, verified and rolled back on failure.

With no file arguments, content from stdin (pipe) or the clipboard is analyzed
and the plan is printed.

Example: fsplit src/pages/dashboard.tsx`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cliCfg.Completion != "" {
			return handleCompletion(cmd)
		}
		if cliCfg.Undo && cliCfg.History {
			return fmt.Errorf("--undo and --history are mutually exclusive")
		}
		if (cliCfg.Undo || cliCfg.History) && len(args) > 0 {
			return fmt.Errorf("--undo and --history take no file arguments")
		}

		cfg, err := LoadConfig(cliCfg.ConfigPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, cfg)
		normalizeExtensions()

		logger, err := NewLogger(cliCfg.Verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		app, err := NewApp(cfg, &Options{
			Files:      args,
			DryRun:     cliCfg.DryRun,
			Undo:       cliCfg.Undo,
			History:    cliCfg.History,
			Nvim:       cliCfg.Nvim,
			Extensions: cliCfg.Extensions,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer app.Close()

		ui := NewTUI(app, cliCfg.NoAnimation)
		return ui.Run(ctx)
	},
}

func applyFlagOverrides(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed("max-lines") {
		cfg.MaxLines = cliCfg.MaxLines
	}
	if cliCfg.Directory {
		cfg.Layout = LayoutDirectory
	}
}

func handleCompletion(cmd *cobra.Command) error {
	switch cliCfg.Completion {
	case "bash":
		return cmd.Root().GenBashCompletion(os.Stdout)
	case "zsh":
		return cmd.Root().GenZshCompletion(os.Stdout)
	case "fish":
		return cmd.Root().GenFishCompletion(os.Stdout, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
	default:
		return fmt.Errorf("unsupported shell for completion: %s", cliCfg.Completion)
	}
}

func normalizeExtensions() {
	for i, ext := range cliCfg.Extensions {
		if len(ext) > 0 && ext[0] != '.' {
			cliCfg.Extensions[i] = "." + ext
		}
	}
}

func init() {
	rootCmd.Flags().StringVar(&cliCfg.Completion, "completion", "", "Generate completion script")
	rootCmd.Flags().StringVarP(&cliCfg.ConfigPath, "config", "c", DefaultConfigFile, "Config file")
	rootCmd.Flags().IntVarP(&cliCfg.MaxLines, "max-lines", "m", 300, "Only split files longer than this")
	rootCmd.Flags().BoolVarP(&cliCfg.Directory, "dir", "d", false, "Write split files into a directory named after the file")
	rootCmd.Flags().BoolVarP(&cliCfg.DryRun, "dry-run", "n", false, "Print the plan without writing")
	rootCmd.Flags().BoolVarP(&cliCfg.Undo, "undo", "u", false, "Undo the last split")
	rootCmd.Flags().BoolVar(&cliCfg.History, "history", false, "List recent splits")
	rootCmd.Flags().BoolVarP(&cliCfg.Verbose, "verbose", "v", false, "Debug logging")
	rootCmd.Flags().BoolVar(&cliCfg.Nvim, "nvim", false, "Write through Neovim buffers")
	rootCmd.Flags().BoolVar(&cliCfg.NoAnimation, "no-animation", false, "Disable spinner")
	rootCmd.Flags().StringSliceVarP(&cliCfg.Extensions, "extension", "e", []string{}, "Filter analyzed snippets by extension")

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
