// Command loomc compiles Loom source files into client.js, server.js,
// styles.css and index.html.
package main

import (
	"os"

	"github.com/loomlang/loomc/cmd/loomc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
