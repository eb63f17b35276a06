// Command echo-server is a minimal MCP provider advertising an "echo" tool over stdio.
package main

import (
	"context"
	"log"

	"github.com/viant/mcp-inspector/internal/provider"
)

func main() {
	if err := provider.ServeStdio(context.Background()); err != nil {
		log.Fatal(err)
	}
}
