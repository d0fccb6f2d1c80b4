package commands

import (
	"fmt"
	"runtime"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/vulntor/relay/cmd/relay/internal/format"
	"github.com/vulntor/relay/pkg/version"
)

var versionTemplate = `Version:      {{.Version}}
Commit:       {{.Commit}}
Built:        {{.BuildDate}}
Go version:   {{.GoVersion}}
OS/Arch:      {{.Platform}}
`

type versionInfo struct {
	version.Struct
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func newVersionCommand() *cobra.Command {
	var (
		short bool
		check string
	)

	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{
				Struct:    version.Get(),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			if check != "" {
				ok, err := version.Satisfies(check)
				if err != nil {
					return usageError(err)
				}
				if !ok {
					return fmt.Errorf("%s version %s does not satisfy %q", cliExecutable, info.Version, check)
				}
			}

			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return err
			}

			f := format.FromCommand(cmd)
			if f.IsJSON() {
				return f.PrintJSON(info)
			}
			tmpl, err := template.New("version").Parse(versionTemplate)
			if err != nil {
				return err
			}
			return tmpl.Execute(f.Out(), info)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")
	cmd.Flags().StringVar(&check, "check", "", "Fail unless the version satisfies this semver constraint")

	return cmd
}
