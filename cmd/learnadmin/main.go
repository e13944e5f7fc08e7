// learnadmin - command-line administration for the LearnHub platform.
//
// Build with: go build -ldflags "-X github.com/learnhub/learnadmin/internal/version.Version=vX.Y.Z" ./cmd/learnadmin
package main

import (
	"os"

	"github.com/learnhub/learnadmin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
