package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	configfile "github.com/civicsignal/billfeed/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage billfeed configuration",
	Long: `View and edit the billfeed configuration file.

Well-known keys:
  ` + configfile.KeyAPIKey + `        provider API key
  ` + configfile.KeyQuery + `            search query override
  ` + configfile.KeyJurisdiction + `     default jurisdiction, e.g. CA
  ` + configfile.KeyMinRelevance + `    default relevance cutoff
  ` + configfile.KeyDataDir + `        database directory
  ` + configfile.KeyRedisURL + `         queue connection URL`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// knownKeys drives config show output ordering.
var knownKeys = []string{
	configfile.KeyAPIKey,
	configfile.KeyBaseURL,
	configfile.KeyQuery,
	configfile.KeyJurisdiction,
	configfile.KeyMinRelevance,
	configfile.KeyDataDir,
	configfile.KeyRedisURL,
	configfile.KeyQueueName,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	shown := make(map[string]bool)
	for _, key := range knownKeys {
		val, ok := configStore.Get(key)
		if !ok {
			continue
		}
		shown[key] = true
		cmd.Printf("%s = %v\n", key, redacted(key, val))
	}

	if len(shown) == 0 {
		cmd.Println("No configuration set.")
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		return errors.New("key not set: " + args[0])
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	key, raw := args[0], args[1]

	// Store numerics and booleans typed so GetInt/GetBool work.
	var value any = raw
	if n, err := strconv.Atoi(raw); err == nil {
		value = int64(n)
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := configStore.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if err := initConfig(); err != nil {
		return err
	}
	cmd.Println(configStore.Path())
	return nil
}

// redacted masks secret values in config show output.
func redacted(key string, val any) any {
	if key != configfile.KeyAPIKey {
		return val
	}
	s, ok := val.(string)
	if !ok || len(s) == 0 {
		return val
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
