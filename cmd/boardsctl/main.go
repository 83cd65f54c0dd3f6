// Command boardsctl works with a boards workspace from the terminal:
// layout previews, exports, imports, backups and the MCP server.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
