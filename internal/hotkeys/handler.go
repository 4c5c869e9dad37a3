package hotkeys

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// XConn is implemented by backends that expose their X11 connection.
type XConn interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var initOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(conn XConn) *Handler {
	xu := conn.XUtil()
	initOnce.Do(func() {
		keybind.Initialize(xu)
		configureIgnoreMods(xu)
	})
	return &Handler{
		xu:   xu,
		root: conn.RootWindow(),
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Bind grabs every key sequence in bindings (action -> keys) and runs the
// matching entry of actions on press. A sequence that cannot be grabbed is
// logged and skipped; an action with no callback is an error.
func (h *Handler) Bind(bindings map[string]string, actions map[string]func()) (int, error) {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	bound := 0
	for _, name := range names {
		callback, ok := actions[name]
		if !ok {
			return bound, fmt.Errorf("unknown hotkey action %q", name)
		}
		keys := bindings[name]
		if err := h.RegisterFunc(keys, callback); err != nil {
			log.Printf("Warning: Failed to register %s hotkey %q: %v", name, keys, err)
			continue
		}
		log.Printf("Hotkey registered: %s -> %s", keys, name)
		bound++
	}
	return bound, nil
}

// Run processes X events until ctx is cancelled. The event loop itself ends
// once the connection is closed.
func (h *Handler) Run(ctx context.Context) {
	go xevent.Main(h.xu)
	<-ctx.Done()
	xevent.Quit(h.xu)
}

// configureIgnoreMods makes bindings fire regardless of CapsLock, NumLock and
// ScrollLock by ignoring every combination of the lock masks.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	masks := []uint16{0}
	for _, lock := range []uint16{
		uint16(xproto.ModMaskLock),
		lockMask(xu, "Num_Lock"),
		lockMask(xu, "Scroll_Lock"),
	} {
		if lock == 0 || slices.Contains(masks, lock) {
			continue
		}
		for _, m := range masks {
			masks = append(masks, m|lock)
		}
	}
	xevent.IgnoreMods = masks
}

// lockMask returns the modifier mask the server maps keysym to, or 0.
func lockMask(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, code := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, code); mask != 0 {
			return mask
		}
	}
	return 0
}
