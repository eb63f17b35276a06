// Command mcp-inspector connects to an MCP tool provider and reports its tools.
//
// It reads newline-delimited JSON commands from stdin, for example
//
//	{"command":"connect","data":{"transport":"stdio","command":"./echo-server"}}
//	{"command":"disconnect"}
//
// and writes connectionStatus messages to stdout, one per line.
package main

import (
	"log"
	"os"

	"github.com/viant/mcp-inspector/host"
)

func main() {
	if err := host.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
