package main

import (
	"os"

	"github.com/iwat/iostream/internal/cmd"
)

func main() {
	if err := cmd.RootCmd(cmd.NewAppBuilder()).Execute(); err != nil {
		os.Exit(1)
	}
}
