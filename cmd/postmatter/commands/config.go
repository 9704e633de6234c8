package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/editor"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/paths"
)

var configGlobal bool

func init() {
	configCmd.PersistentFlags().BoolVarP(&configGlobal, "global", "g", false,
		"use the global config file instead of the project file")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage postmatter configuration",
	Long: `Manage postmatter configuration.

The project file .postmatter.yaml in the working directory wins over the
global file in the user config directory. POSTMATTER_* environment
variables override both.

Without a subcommand, lists the effective configuration.`,
	Example: `  # List all configuration
  postmatter config

  # Get a specific value
  postmatter config get content_dir

  # Set a value
  postmatter config set allowed_tags css,go,astro

See Also: postmatter init, postmatter doctor`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Array values are printed one per line.`,
	Example: `  postmatter config get content_dir
  postmatter config get extensions

See Also: postmatter config set, postmatter config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write it to the config file.

For array values like allowed_tags, use comma-separated values. Values are
validated before anything is written.`,
	Example: `  postmatter config set content_dir src/content/blog
  postmatter config set check_layouts true
  postmatter config set allowed_tags css,go

See Also: postmatter config get, postmatter config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List the effective configuration in YAML format.`,
	Example: `  postmatter config list

See Also: postmatter config get, postmatter config set`,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

If no configuration file exists, prints an error suggesting to run
'postmatter init'.`,
	Example: `  postmatter config edit
  EDITOR=nano postmatter config edit --global

See Also: postmatter config list, postmatter init`,
	RunE: runConfigEdit,
}

// keyKind describes how a config value is parsed from the command line.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
	kindList
)

var configKeys = map[string]keyKind{
	"version":                kindInt,
	"content_dir":            kindString,
	"extensions":             kindList,
	"default_layout":         kindString,
	"layout_extensions":      kindList,
	"check_layouts":          kindBool,
	"require_slug":           kindBool,
	"strict":                 kindBool,
	"allowed_tags":           kindList,
	"max_title_length":       kindInt,
	"max_description_length": kindInt,
	"default_format":         kindString,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	return configGet(cmd.OutOrStdout(), args[0])
}

func configGet(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := targetConfigPath()
	if err := configSet(args[0], args[1], path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
	return nil
}

// configSet parses value for key, validates the result and saves it to path.
func configSet(key, value, path string) error {
	kind, ok := configKeys[key]
	if !ok {
		known := make([]string, 0, len(configKeys))
		for k := range configKeys {
			known = append(known, k)
		}
		slices.Sort(known)
		return errors.NewUserError(errors.Newf("unknown key %q", key), "valid keys: "+strings.Join(known, ", "))
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return errors.NewUserError(errors.Wrapf(err, "parsing %s", key), "")
	}

	viper.Set(key, parsed)
	cfg := config.Current()
	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return errors.NewUserError(
			errors.Mark(errors.Newf("%s", strings.Join(msgs, "; ")), errors.ErrInvalidConfig),
			"nothing was written",
		)
	}

	if err := config.Save(cfg, path); err != nil {
		return errors.NewSystemError(err, "")
	}
	return nil
}

func parseValue(kind keyKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Newf("%q is not an integer", value)
		}
		return n, nil
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Newf("%q is not a boolean", value)
		}
		return b, nil
	case kindList:
		return parseList(value), nil
	default:
		return strings.TrimSpace(value), nil
	}
}

// parseList splits a comma-separated string, dropping empty elements.
func parseList(s string) []string {
	items := []string{}
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			items = append(items, p)
		}
	}
	return items
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(config.Current())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := targetConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path),
			"Run 'postmatter init' to create it",
		)
	}

	if err := editor.Open(cmd.Context(), path); err != nil {
		return errors.NewSystemError(err, "set $EDITOR or $POSTMATTER_EDITOR")
	}
	return nil
}

// targetConfigPath returns the file config subcommands write to: --config,
// then --global, then the project file in the working directory.
func targetConfigPath() string {
	switch {
	case configFile != "":
		return configFile
	case configGlobal:
		return paths.GlobalConfigFile()
	default:
		return paths.ProjectConfigFile(".")
	}
}
