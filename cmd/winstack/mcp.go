package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/mcp"
)

const mcpUsage = `Usage: winstack mcp serve

Serve the window tools over MCP on stdin/stdout. Every tool call is
forwarded to the running 'winstack daemon' through its IPC socket.
`

func runMCP(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, mcpUsage)
		return 2
	}
	switch args[0] {
	case "serve":
		if len(args) > 1 {
			fmt.Fprint(os.Stdout, mcpUsage)
			return 0
		}
		return runMCPServe()
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, mcpUsage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n%s", args[0], mcpUsage)
		return 2
	}
}

func runMCPServe() int {
	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		// Tools report their own errors; the daemon may start later.
		log.Printf("Warning: daemon at %s not reachable: %v", client.SocketPath(), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(client).Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
