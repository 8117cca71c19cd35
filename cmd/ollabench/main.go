// cmd/ollabench/main.go
package main

import (
	cmd "github.com/mwiater/ollabench/internal/cli"
)

// executeCmd is swapped out in tests.
var executeCmd = cmd.Execute

// main starts the ollabench CLI application by delegating to the
// cobra root command defined in the ollabench package.
func main() {
	executeCmd()
}
