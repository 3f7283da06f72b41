package main

import (
	"os"

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driving/cli"
)

// version is injected at build time:
//
//	go build -ldflags "-X main.version=1.2.3" ./cmd/askdocs
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
