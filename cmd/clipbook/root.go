package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/clipbook/pkg/clipbook/config"
	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
)

var (
	cfgFile string

	// v holds configuration from defaults, the config file, CLIPBOOK_
	// variables and the persistent flags bound below.
	v *viper.Viper

	// cfg is the decoded configuration, set before any command runs.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "clipbook",
		Short: "Manage a hierarchical library of text clips",
		Long: `Clipbook keeps reusable text snippets in a tree of named groups.

Clips are addressed by path: "HTML/Lists/Item" is the clip "Item" in the
group "Lists" inside the group "HTML". A trailing "/" names a group.

Examples:
  clipbook list                        # Show the whole library
  clipbook add "HTML/Bold" '<b>\1</b>' # Add a clip, creating groups as needed
  clipbook mv HTML/Bold --to Snippets/ # Move a clip into another group
  clipbook copy HTML/Bold              # Put a clip on the clipboard
  clipbook tui                         # Browse and rearrange interactively`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}
)

func init() {
	var err error
	v, err = config.New()
	if err != nil {
		// Without a home directory only explicit settings work.
		v = viper.New()
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/clipbook/config.yaml)")
	rootCmd.PersistentFlags().StringP("backend", "b", "", "storage backend: file, badger, diskv, sqlite")
	rootCmd.PersistentFlags().StringP("library", "l", "", "library location")
	rootCmd.PersistentFlags().StringP("format", "f", "", "output format for list")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output on stderr")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")

	_ = v.BindPFlag("library.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = v.BindPFlag("library.path", rootCmd.PersistentFlags().Lookup("library"))
	_ = v.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = v.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// setup loads the configuration and starts logging.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	// A library given on the command line picks its own backend unless one
	// was named too.
	if cmd.Flags().Changed("library") && !cmd.Flags().Changed("backend") {
		cfg.Library.Backend = detectBackend(cfg.Library.Path)
	}

	lc, err := cfg.LoggingSetup()
	if err != nil {
		return err
	}
	if getVerbose() {
		lc.ConsoleLevel = "debug"
	}
	lc.Quiet = getQuiet() || cmd.Annotations[ownsTerminal] == "true"
	if err := logging.Init(lc); err != nil {
		// The log file is optional; keep going without it.
		printVerbose(cmd, "logging disabled: %v", err)
	}

	logging.Get("cli").Debug("command started", "command", cmd.CommandPath(), "library", cfg.Library.Path, "backend", cfg.Library.Backend)
	return nil
}

func teardown(*cobra.Command, []string) error {
	return logging.Close()
}

// Command annotations.
const (
	// skipSetup marks commands that must work without a valid configuration.
	skipSetup = "clipbook/skip-setup"

	// ownsTerminal marks commands that draw the full screen.
	ownsTerminal = "clipbook/owns-terminal"
)

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), "%v", err)
		return err
	}
	return nil
}

func getVerbose() bool {
	return v.GetBool("verbose")
}

func getQuiet() bool {
	return v.GetBool("quiet")
}

// printVerbose prints a message to stderr if verbose mode is enabled.
func printVerbose(cmd *cobra.Command, format string, args ...any) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(cmd.ErrOrStderr(), "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(cmd *cobra.Command, format string, args ...any) {
	if !getQuiet() {
		fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}

// printError prints an error message.
func printError(w io.Writer, format string, args ...any) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
}
