// cmd/relay/main.go
package main

import (
	"os"

	"github.com/vulntor/relay/cmd/relay/commands"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
