package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iksnae/chat-dashboard/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var settingsMerge bool

// settingsCmd groups the agent settings subcommands
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and edit per-agent settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the agents with stored settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		settings, err := store.List(cmd.Context(), vertical)
		if err != nil {
			return err
		}
		if len(settings) == 0 {
			internal.PrintInfo(fmt.Sprintf("No agent settings stored for %s", vertical))
			return nil
		}
		for _, s := range settings {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d field(s)\tupdated %s\n", s.AgentID, len(s.Fields), s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <agent-id>",
	Short: "Show the settings of an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		settings, err := store.Get(cmd.Context(), vertical, args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(settings)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <agent-id> key=value...",
	Short: "Store settings for an agent",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		settings, err := store.Put(cmd.Context(), vertical, args[0], fields, settingsMerge)
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Saved %s/%s: %s", vertical, settings.AgentID, strings.Join(sortedKeys(settings.Fields), ", ")))
		return nil
	},
}

func openStore() (*internal.SettingsStore, error) {
	env, err := loadEnvironment()
	if err != nil {
		return nil, err
	}
	if _, err := env.vertical(vertical); err != nil {
		return nil, err
	}
	return internal.OpenSettingsStore(env.config.SettingsDBPath)
}

// parseAssignments turns key=value arguments into a field map
func parseAssignments(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New("invalid assignment " + arg + ", expected key=value")
		}
		fields[key] = value
	}
	return fields, nil
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsListCmd, settingsGetCmd, settingsSetCmd)
	settingsSetCmd.Flags().BoolVar(&settingsMerge, "merge", true, "Keep stored fields that are not being set")
}
