// Package client implements the MCP client side needed to inspect a provider.
//
// It speaks JSON-RPC over any channel that can send requests and notifications
// (github.com/viant/jsonrpc message types) and provides:
//   - the `initialize` handshake followed by `notifications/initialized`,
//   - tool discovery via `tools/list`, following `nextCursor` pages,
//   - a Handler answering requests the provider initiates (ping).
//
// Example:
//
//	sseTransport, _ := sse.New(ctx, "https://mcp.example.com/sse")
//	cli := client.New("inspector", "0.1", sseTransport)
//	if _, err := cli.Initialize(ctx); err != nil {
//		return err
//	}
//	tools, _ := cli.ListAllTools(ctx)
package client
