package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/clipbook/pkg/clipbook/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage clipbook configuration settings.

Configuration is loaded from:
  1. --config, if given
  2. $XDG_CONFIG_HOME/clipbook/config.yaml (if set)
  3. ~/.config/clipbook/config.yaml

Environment variables override the file using the CLIPBOOK_ prefix:
  CLIPBOOK_LIBRARY_BACKEND=sqlite
  CLIPBOOK_LIBRARY_PATH=~/clips.db
  CLIPBOOK_BACKUP_ENABLED=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Create the default configuration file",
	Annotations: map[string]string{skipSetup: "true"},
	RunE:        runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Show the configuration file path",
	Annotations: map[string]string{skipSetup: "true"},
	RunE:        runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in an editor",
	Long: `Open the configuration file in $VISUAL, $EDITOR or vi, creating a default
file first if there is none.`,
	Annotations: map[string]string{skipSetup: "true", ownsTerminal: "true"},
	RunE:        runConfigEdit,
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd, configPathCmd, configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configFilePath returns --config or the default location.
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if used := v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# config file: (none found, using defaults)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return err
	}

	var overrides []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "CLIPBOOK_") {
			overrides = append(overrides, kv)
		}
	}
	if len(overrides) > 0 {
		fmt.Fprintln(out, "\n# environment overrides:")
		for _, kv := range overrides {
			fmt.Fprintf(out, "#   %s\n", kv)
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	written, created, err := config.WriteDefault(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !created {
		printInfo(cmd, "Config file already exists: %s", written)
		printInfo(cmd, "Use 'clipbook config edit' to modify it.")
		return nil
	}
	printInfo(cmd, "Created default config file: %s", written)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		printVerbose(cmd, "file does not exist (defaults apply)")
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	if _, _, err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	printVerbose(cmd, "opening %s with %s", path, editor)

	c := exec.Command(editor, path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}
