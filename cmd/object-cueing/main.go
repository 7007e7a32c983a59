package main

import (
	"os"

	"github.com/rcliao/object-cueing/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
