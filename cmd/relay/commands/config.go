package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vulntor/relay/cmd/relay/internal/format"
	"github.com/vulntor/relay/pkg/appctx"
	"github.com/vulntor/relay/pkg/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Inspect configuration",
		GroupID: "core",
	}
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigValidateCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var keys bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, RELAY_*
environment variables and flags were merged. YAML by default, JSON with
--output json. --keys lists the flattened keys instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, ok := appctx.Config(cmd.Context())
			if !ok {
				return fmt.Errorf("configuration not loaded")
			}
			f := format.FromCommand(cmd)

			if keys {
				all := mgr.Keys()
				names := make([]string, 0, len(all))
				for k := range all {
					names = append(names, k)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, k := range names {
					rows = append(rows, []string{k, cast.ToString(all[k])})
				}
				return f.PrintTable([]string{"Key", "Value"}, rows)
			}

			cfg := mgr.Get()
			if f.IsJSON() {
				return f.PrintJSON(cfg)
			}
			enc := yaml.NewEncoder(f.Out())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&keys, "keys", false, "List flattened configuration keys")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check a configuration file",
		Long:  `Load FILE (or the --config file) on top of the defaults and report validation errors.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if mgr, ok := appctx.Config(cmd.Context()); ok {
				path = mgr.Path()
			}
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return usageError(fmt.Errorf("no configuration file given"))
			}

			if _, err := os.Stat(path); err != nil {
				return err
			}
			m := config.NewManager()
			err := m.LoadWithSources([]config.ConfigSource{
				&config.DefaultSource{},
				&config.FileSource{Path: path},
			})
			if err != nil {
				return err
			}
			return format.FromCommand(cmd).PrintSummary(fmt.Sprintf("%s is valid", path))
		},
	}
}
