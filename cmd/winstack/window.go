package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/windows"
)

func runOpen(args []string) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winstack open [--id ID] [--x N --y N] [--width N --height N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a window on top of the stack and focus it.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	id := fs.String("id", "", "Window id (default: random)")
	x := fs.Int("x", 0, "Left edge")
	y := fs.Int("y", 0, "Top edge")
	width := fs.Int("width", 0, "Width")
	height := fs.Int("height", 0, "Height")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "open takes no arguments")
		fs.Usage()
		return 2
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	patch, err := openPatch(set, *x, *y, *width, *height)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *id == "" {
		*id = uuid.NewString()
	}

	w, err := ipc.NewClient().AddWindow(*id, patch)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(w)
	}
	fmt.Println(w.ID)
	return 0
}

// openPatch builds the geometry override for open from the flags that were
// actually given.
func openPatch(set map[string]bool, x, y, width, height int) (windows.Patch, error) {
	var patch windows.Patch
	if set["x"] || set["y"] {
		if !set["x"] || !set["y"] {
			return patch, fmt.Errorf("--x and --y must be given together")
		}
		patch.Position = &windows.Point{X: x, Y: y}
	}
	if set["width"] || set["height"] {
		if !set["width"] || !set["height"] {
			return patch, fmt.Errorf("--width and --height must be given together")
		}
		if width <= 0 || height <= 0 {
			return patch, fmt.Errorf("--width and --height must be > 0")
		}
		patch.Size = &windows.Size{Width: width, Height: height}
	}
	return patch, nil
}

func runWindowAction(name, help string, args []string, action func(*ipc.Client, string) (*ipc.MutationData, error)) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winstack %s <id>\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one window id\n", name)
		fs.Usage()
		return 2
	}
	res, err := action(ipc.NewClient(), fs.Arg(0))
	return reportMutation(fs.Arg(0), res, err)
}

func runMove(args []string) int {
	return runGeometry("move", "Usage: winstack move <id> <x> <y>", args, func(id string, a, b int) (*ipc.MutationData, error) {
		return ipc.NewClient().UpdateWindow(id, windows.PatchPosition(a, b))
	})
}

func runResize(args []string) int {
	return runGeometry("resize", "Usage: winstack resize <id> <width> <height>", args, func(id string, a, b int) (*ipc.MutationData, error) {
		if a <= 0 || b <= 0 {
			return nil, fmt.Errorf("width and height must be > 0")
		}
		return ipc.NewClient().UpdateWindow(id, windows.PatchSize(a, b))
	})
}

func runGeometry(name, usage string, args []string, apply func(id string, a, b int) (*ipc.MutationData, error)) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}
	a, b, err := parseIntPair(fs.Arg(1), fs.Arg(2))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	res, err := apply(fs.Arg(0), a, b)
	return reportMutation(fs.Arg(0), res, err)
}

func parseIntPair(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", b)
	}
	return x, y, nil
}

// reportMutation prints the window after a change. An unknown id exits 1.
func reportMutation(id string, res *ipc.MutationData, err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !res.Applied {
		fmt.Fprintf(os.Stderr, "window not found: %s\n", id)
		return 1
	}
	if res.Window != nil {
		fmt.Println(formatWindow(*res.Window))
	}
	return 0
}

func runShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winstack show [--json] <id>")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	w, err := ipc.NewClient().GetWindow(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(w)
	}
	fmt.Println(formatWindow(*w))
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winstack list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List windows in stacking order, back-most first.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	list, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(list)
	}
	fmt.Print(renderWindowTable(list, term.IsTerminal(int(os.Stdout.Fd()))))
	return 0
}

func runFocusDir(args []string) int {
	fs := flag.NewFlagSet("focus-dir", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winstack focus-dir <up|down|left|right>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Focus the nearest visible window in a direction, wrapping at the edges.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	res, err := ipc.NewClient().FocusDirection(strings.ToLower(fs.Arg(0)))
	return reportFocus(res, err)
}

func runCycle(args []string) int {
	fs := flag.NewFlagSet("cycle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winstack cycle [--reverse]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Focus the next visible window in stacking order.")
	}
	reverse := fs.Bool("reverse", false, "Cycle backwards")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	res, err := ipc.NewClient().CycleFocus(*reverse)
	return reportFocus(res, err)
}

func reportFocus(res *ipc.MutationData, err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if res.Window == nil {
		fmt.Fprintln(os.Stderr, "no window to focus")
		return 1
	}
	fmt.Println(formatWindow(*res.Window))
	return 0
}

func runArrange(args []string) int {
	fs := flag.NewFlagSet("arrange", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winstack arrange [layout]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Tile visible windows with a layout (default: default_layout).")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}
	res, err := ipc.NewClient().Arrange(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("layout %s: arranged %d window(s)\n", res.Layout, len(res.Arranged))
	return 0
}

func runReset(args []string) int {
	return runSimple("reset", "Close every window and clear focus.", args, (*ipc.Client).Reset)
}

func runReload(args []string) int {
	return runSimple("reload", "Reload the daemon configuration from disk.", args, (*ipc.Client).Reload)
}

func runSimple(name, help string, args []string, call func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winstack %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}
	if err := call(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
