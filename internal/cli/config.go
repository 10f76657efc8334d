package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alnah/go-aula/internal/config"
)

// secretKeys are masked by "config list".
var secretKeys = map[string]bool{
	config.FileKey(config.EnvGroqAPIKey):   true,
	config.FileKey(config.EnvGeminiAPIKey): true,
}

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-aula/config.yaml (or
$XDG_CONFIG_HOME/go-aula/config.yaml) as a flat YAML map. Keys are the
lower-cased environment variable names; environment variables and .env
entries take precedence over the file.`,
		Example: `  aula config set chunk_size_seconds 300
  aula config get groq_model
  aula config list
  aula config path`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))
	cmd.AddCommand(configPathCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

The value is checked before it is written: numeric settings must be
integers. Run "aula config list" to see every key.`,
		Example: `  aula config set groq_language en
  aula config set output_base_dir "curso/modulo-{modulo:02d}"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the effective value to stdout: the environment variable when set,
else the config file entry. Prints nothing if neither is set.`,
		Example: `  aula config get chunk_size_seconds`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List the values stored in the config file as YAML, followed by
the keys overridden by environment variables. API keys are masked.`,
		Example: `  aula config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// configPathCmd creates the "config path" subcommand.
func configPathCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "path",
		Short:   "Print the config file location",
		Example: `  aula config path`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, p)
			return nil
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if err := config.CheckValue(key, value); err != nil {
		return err
	}

	p, err := config.Path()
	if err != nil {
		return err
	}
	if err := config.Save(p, key, value); err != nil {
		return err
	}

	shown := value
	if secretKeys[key] {
		shown = mask(value)
	}
	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, shown)
	if env.Getenv(config.EnvKey(key)) != "" {
		fmt.Fprintf(env.Stderr, "Note: %s is set in the environment and takes precedence\n", config.EnvKey(key))
	}
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !config.IsKnownKey(key) {
		return fmt.Errorf("%q: %w (valid keys: %s)", key, config.ErrUnknownKey, strings.Join(config.Keys(), ", "))
	}

	value := env.Getenv(config.EnvKey(key))
	if value == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		if value, err = config.Get(p, key); err != nil {
			return err
		}
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	p, err := config.Path()
	if err != nil {
		return err
	}
	data, err := config.List(p)
	if err != nil {
		return err
	}

	if len(data) == 0 {
		fmt.Fprintf(env.Stdout, "# No configuration set in %s\n", p)
	} else {
		for k, v := range data {
			if secretKeys[k] {
				data[k] = mask(v)
			}
		}
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Fprintf(env.Stdout, "# %s\n%s", p, out)
	}

	var overridden []string
	for _, key := range config.Keys() {
		if env.Getenv(config.EnvKey(key)) != "" {
			overridden = append(overridden, config.EnvKey(key))
		}
	}
	if len(overridden) > 0 {
		fmt.Fprintf(env.Stdout, "# overridden by environment: %s\n", strings.Join(overridden, ", "))
	}
	return nil
}

// mask hides all but the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}
