package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/saeedalam/sketchpp/pkg/types"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change project settings",
	Long: `Read or change settings in .sketchpp/config.json.

Keys:
  substitute_unicode   Escape non-ASCII characters (true/false)
  footer               Text appended after the sketch body
  history.enabled      Record preprocessing runs (true/false)

Example:
  sketchpp config get footer
  sketchpp config set substitute_unicode true`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting, or every setting",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// configKeys maps setting names to accessors on the config
var configKeys = map[string]struct {
	get func(*types.Config) string
	set func(*types.Config, string) error
}{
	"substitute_unicode": {
		get: func(c *types.Config) string { return strconv.FormatBool(c.Preprocess.SubstituteUnicode) },
		set: func(c *types.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.Preprocess.SubstituteUnicode = b
			return nil
		},
	},
	"footer": {
		get: func(c *types.Config) string { return strconv.Quote(c.Preprocess.Footer) },
		set: func(c *types.Config, v string) error {
			c.Preprocess.Footer = v
			return nil
		},
	},
	"history.enabled": {
		get: func(c *types.Config) string { return strconv.FormatBool(c.History.Enabled) },
		set: func(c *types.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.History.Enabled = b
			return nil
		},
	},
}

func configValue(c *types.Config, key string) (string, error) {
	k, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return k.get(c), nil
}

func setConfigValue(c *types.Config, key, value string) error {
	k, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := k.set(c, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	proj, err := openProject("")
	if err != nil {
		return err
	}
	defer proj.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		v, err := configValue(proj.config, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil
	}

	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s = %s\n", k, configKeys[k].get(proj.config))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	proj, err := openProject("")
	if err != nil {
		return err
	}
	defer proj.Close()

	if err := setConfigValue(proj.config, args[0], args[1]); err != nil {
		return err
	}
	if err := proj.store.SaveConfig(proj.config); err != nil {
		return err
	}

	proj.log.Info("config", "setting changed", map[string]string{"key": args[0]})
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], configKeys[args[0]].get(proj.config))
	return nil
}
