package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kastheco/atlas/cmd"
	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/log"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:           "atlas",
		Short:         "atlas - Jira and Bitbucket screens hosted over a JSON line protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			dbPath, err := cfg.ResolveDatabasePath()
			if err != nil {
				return err
			}
			configJson, _ := json.MarshalIndent(cfg, "", "  ")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), configJson)
			fmt.Fprintf(out, "Database: %s\n", dbPath)
			fmt.Fprintf(out, "Log: %s\n", log.FileName())

			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of atlas",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "atlas version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "https://github.com/kastheco/atlas/releases/tag/v%s\n", version)
		},
	}
)

func init() {
	rootCmd.AddCommand(cmd.NewServeCmd(version))
	rootCmd.AddCommand(cmd.NewEventsCmd())
	rootCmd.AddCommand(cmd.NewPMFCmd())
	rootCmd.AddCommand(cmd.NewJiraCmd())
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
