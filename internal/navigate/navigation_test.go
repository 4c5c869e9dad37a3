package navigate

import (
	"testing"

	"github.com/1broseidon/winstack/internal/windows"
)

// grid places four 100x100 windows in a 2x2 grid:
//
//	tl tr
//	bl br
func grid(t *testing.T) *windows.Registry {
	t.Helper()
	reg := windows.New(windows.Config{})
	at := func(id string, x, y int) {
		p := windows.PatchPosition(x, y)
		p.Size = &windows.Size{Width: 100, Height: 100}
		reg.AddWindow(id, p)
	}
	at("tl", 0, 0)
	at("tr", 200, 0)
	at("bl", 0, 200)
	at("br", 200, 200)
	return reg
}

func TestNeighbor(t *testing.T) {
	reg := grid(t)
	ws := reg.Snapshot().Windows()

	tests := []struct {
		from string
		dir  Direction
		want string
	}{
		{"tl", DirRight, "tr"},
		{"tl", DirDown, "bl"},
		{"br", DirUp, "tr"},
		{"br", DirLeft, "bl"},
		// wrap-around
		{"tl", DirLeft, "tr"},
		{"tl", DirUp, "bl"},
		{"br", DirRight, "bl"},
		{"br", DirDown, "tr"},
	}
	for _, tt := range tests {
		got, ok := Neighbor(ws, tt.from, tt.dir)
		if !ok || got != tt.want {
			t.Errorf("Neighbor(%s, %s) = %q, %v; want %q", tt.from, tt.dir, got, ok, tt.want)
		}
	}
}

func TestNeighbor_SkipsMinimizedAndUnknown(t *testing.T) {
	reg := grid(t)
	reg.MinimizeWindow("tr")
	ws := reg.Snapshot().Windows()

	got, ok := Neighbor(ws, "tl", DirRight)
	if !ok || got != "br" {
		t.Fatalf("expected br once tr is minimized, got %q %v", got, ok)
	}
	if _, ok := Neighbor(ws, "ghost", DirRight); ok {
		t.Fatal("expected no neighbor for unknown window")
	}
}

func TestFocusDirection(t *testing.T) {
	reg := grid(t)
	reg.FocusWindow("tl")

	got, ok := FocusDirection(reg, DirDown)
	if !ok || got != "bl" {
		t.Fatalf("FocusDirection down = %q %v, want bl", got, ok)
	}
	if focused, _ := reg.FocusedID(); focused != "bl" {
		t.Fatalf("expected bl focused, got %q", focused)
	}
	if top, _ := windows.NewStackView(reg).TopWindow(); top.ID != "bl" {
		t.Fatalf("expected bl raised, got %q", top.ID)
	}
}

func TestFocusDirection_NoFocusPicksTopWindow(t *testing.T) {
	reg := grid(t)
	reg.RemoveWindow("br") // br held focus
	if _, ok := reg.FocusedID(); ok {
		t.Fatal("expected nothing focused")
	}

	got, ok := FocusDirection(reg, DirLeft)
	if !ok || got != "bl" {
		t.Fatalf("expected front-most bl, got %q %v", got, ok)
	}
}

func TestFocusDirection_Empty(t *testing.T) {
	if _, ok := FocusDirection(windows.New(windows.Config{}), DirUp); ok {
		t.Fatal("expected no focus change on empty registry")
	}
}

func TestCycleFocus(t *testing.T) {
	reg := windows.New(windows.Config{})
	reg.AddWindow("a", windows.Patch{})
	reg.AddWindow("b", windows.Patch{})
	reg.AddWindow("c", windows.Patch{})

	for _, want := range []string{"a", "b", "c", "a"} {
		got, ok := CycleFocus(reg, false)
		if !ok || got != want {
			t.Fatalf("CycleFocus forward = %q, want %q", got, want)
		}
	}

	// Stack is now b, c, a (a on top); reverse raises c.
	got, ok := CycleFocus(reg, true)
	if !ok || got != "c" {
		t.Fatalf("CycleFocus reverse = %q, want c", got)
	}
}

func TestCycleFocus_SkipsMinimized(t *testing.T) {
	reg := windows.New(windows.Config{})
	reg.AddWindow("a", windows.Patch{})
	reg.AddWindow("b", windows.Patch{})
	reg.MinimizeWindow("a")

	got, ok := CycleFocus(reg, false)
	if !ok || got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "Down", " left ", "RIGHT"} {
		if _, err := ParseDirection(s); err != nil {
			t.Errorf("ParseDirection(%q): %v", s, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatal("expected error for sideways")
	}
	if DirLeft.String() != "left" {
		t.Fatalf("DirLeft.String() = %q", DirLeft.String())
	}
}
