package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/ipc"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "open":
		os.Exit(runOpen(os.Args[2:]))
	case "close":
		os.Exit(runWindowAction("close", "Close a window.", os.Args[2:], (*ipc.Client).RemoveWindow))
	case "focus":
		os.Exit(runWindowAction("focus", "Focus a window and raise it to the top.", os.Args[2:], (*ipc.Client).FocusWindow))
	case "minimize":
		os.Exit(runWindowAction("minimize", "Minimize a window.", os.Args[2:], (*ipc.Client).MinimizeWindow))
	case "maximize":
		os.Exit(runWindowAction("maximize", "Toggle a window between maximized and normal.", os.Args[2:], (*ipc.Client).MaximizeWindow))
	case "restore":
		os.Exit(runWindowAction("restore", "Return a window to the normal state.", os.Args[2:], (*ipc.Client).RestoreWindow))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "show":
		os.Exit(runShow(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "focus-dir":
		os.Exit(runFocusDir(os.Args[2:]))
	case "cycle":
		os.Exit(runCycle(os.Args[2:]))
	case "arrange":
		os.Exit(runArrange(os.Args[2:]))
	case "reset":
		os.Exit(runReset(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winstack <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the winstack daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  open                Open a window")
	fmt.Fprintln(w, "  close <id>          Close a window")
	fmt.Fprintln(w, "  move <id> <x> <y>   Move a window")
	fmt.Fprintln(w, "  resize <id> <w> <h> Resize a window")
	fmt.Fprintln(w, "  focus <id>          Focus and raise a window")
	fmt.Fprintln(w, "  minimize <id>       Minimize a window")
	fmt.Fprintln(w, "  maximize <id>       Toggle maximized")
	fmt.Fprintln(w, "  restore <id>        Restore a window to normal")
	fmt.Fprintln(w, "  show <id>           Show one window")
	fmt.Fprintln(w, "  list                List windows in stacking order")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  focus-dir <dir>     Focus the nearest window up/down/left/right")
	fmt.Fprintln(w, "  cycle               Focus the next window in the stack")
	fmt.Fprintln(w, "  arrange [layout]    Tile visible windows")
	fmt.Fprintln(w, "  reset               Close every window")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winstack <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winstack daemon [--config PATH] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window registry in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	cfgPath := fs.String("config", "", "Config file path (default: ~/.config/winstack/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/winstack.sock)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := daemon.Run(ctx, daemon.Options{
		ConfigPath: *cfgPath,
		SocketPath: *socket,
	})
	if err != nil {
		slog.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winstack status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	fmt.Printf("focused:        %s\n", orNone(status.Focused))
	fmt.Printf("version:        %d\n", status.Version)
	fmt.Printf("default_layout: %s\n", status.DefaultLayout)
	fmt.Printf("mirror_enabled: %v\n", status.MirrorEnabled)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  winstack config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  winstack config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  winstack config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winstack/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: ok (%d file(s), %d layout(s))\n", len(res.Files), len(res.Config.Layouts))
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winstack/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winstack/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", src)
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
