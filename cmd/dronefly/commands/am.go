package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dronefly-project/dronefly/am"
	"github.com/dronefly-project/dronefly/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage dronefly configuration",
	Long: `am: Manage dronefly configuration ("I am")

Display and manage dronefly configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (DRONEFLY_* prefix)
2. Project config (dronefly.toml, searched up from the working directory)
3. User config (~/.dronefly/am.toml)
4. System config (/etc/dronefly/dronefly.toml)
5. Default values

Examples:
  dronefly am show                    # Show current configuration
  dronefly am show --format json      # Show configuration in JSON format
  dronefly am get parser.macros       # Get specific config value
  dronefly am where                   # Show where each setting came from
  dronefly am init                    # Write a config file with the defaults`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current dronefly configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., inat.www_base_url, log.verbosity)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file holding the current settings",
	Long: `Write the current settings to a TOML file (default ~/.dronefly/am.toml).
An existing file is kept as <file>.back1; pass --force to replace it.`,
	RunE: runAmInit,
}

var (
	configFormat string
	initPath     string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().StringVar(&initPath, "path", "", "File to write (default ~/.dronefly/am.toml)")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing file")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	out := cmd.OutOrStdout()

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# dronefly configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# dronefly configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(out, "  2. [SYSTEM]   /etc/dronefly/dronefly.toml")
	fmt.Fprintln(out, "  3. [USER]     ~/.dronefly/am.toml")
	fmt.Fprintln(out, "  4. [PROJECT]  ./dronefly.toml (searches up directories)")
	fmt.Fprintln(out, "  5. [ENV]      DRONEFLY_* environment variables")
	fmt.Fprintln(out)

	rows := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, setting := range am.Introspect() {
		value := fmt.Sprintf("%v", setting.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		rows = append(rows, []string{setting.Key, value, string(setting.Source), setting.SourcePath})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(out).Render()
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		path = am.UserConfigPath()
	}
	if path == "" {
		return errors.New("could not determine home directory; pass --path")
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return errors.Newf("%s already exists (use --force to replace it)", path)
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := am.Save(cfg, path); err != nil {
		return err
	}

	pterm.Success.Printfln("Wrote %s", path)
	return nil
}
