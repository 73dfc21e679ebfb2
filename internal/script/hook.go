// Package script runs operator-supplied tengo scripts after gate traversals.
package script

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"Moongates/internal/game"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"
)

// A hook script defines on_traversal(ev, engine). ev carries gate, actor,
// from and to; engine offers message(text) and sound(id) for the actor.
const traversalDispatch = `
on_traversal(__event, __engine)
`

const (
	maxAllocs  = 5000
	runTimeout = 50 * time.Millisecond
)

// HookRunner implements game.TraversalHook with a tengo script. A runner
// without a loaded script does nothing.
type HookRunner struct {
	path string
	log  *zap.Logger

	mu       sync.Mutex
	compiled *tengo.Compiled
}

// NewHookRunner loads the script at path. The runner is returned even when
// loading fails so a later Reload can fix it.
func NewHookRunner(path string, log *zap.Logger) (*HookRunner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h := &HookRunner{path: path, log: log}
	if strings.TrimSpace(path) == "" {
		return h, nil
	}
	return h, h.Reload()
}

func (h *HookRunner) Path() string { return h.path }

// Loaded reports whether a compiled script is active.
func (h *HookRunner) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.compiled != nil
}

// Reload recompiles the script from disk. On failure the previous script
// stays active.
func (h *HookRunner) Reload() error {
	src, err := os.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("read hook script: %w", err)
	}
	compiled, err := compile(src)
	if err != nil {
		return fmt.Errorf("compile hook script %q: %w", h.path, err)
	}
	h.mu.Lock()
	h.compiled = compiled
	h.mu.Unlock()
	h.log.Info("hook script loaded", zap.String("path", h.path))
	return nil
}

// LoadSource replaces the script with src.
func (h *HookRunner) LoadSource(src []byte) error {
	compiled, err := compile(src)
	if err != nil {
		return fmt.Errorf("compile hook script: %w", err)
	}
	h.mu.Lock()
	h.compiled = compiled
	h.mu.Unlock()
	return nil
}

// hookModules are the stdlib modules a hook may import. Hooks run under the
// shard lock, so nothing that touches files, processes or the network.
var hookModules = []string{"fmt", "math", "text", "times"}

func compile(src []byte) (*tengo.Compiled, error) {
	full := string(src) + "\n" + traversalDispatch
	s := tengo.NewScript([]byte(full))
	_ = s.Add("__event", map[string]any{})
	_ = s.Add("__engine", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(hookModules...))
	s.SetMaxAllocs(maxAllocs)
	return s.Compile()
}

// OnTraversal runs the script. Script failures are logged and never reach
// the gate.
func (h *HookRunner) OnTraversal(ev game.TraversalEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.compiled == nil || ev.Actor == nil {
		return
	}
	if err := h.run(ev); err != nil {
		h.log.Warn("hook script failed",
			zap.String("path", h.path),
			zap.Int64("gate", int64(ev.Gate)),
			zap.String("actor", ev.Actor.ID()),
			zap.Error(err),
		)
	}
}

func (h *HookRunner) run(ev game.TraversalEvent) error {
	if err := h.compiled.Set("__event", eventObject(ev)); err != nil {
		return err
	}
	if err := h.compiled.Set("__engine", engineObject(ev.Actor)); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	return h.compiled.RunContext(ctx)
}

func locationObject(loc game.Location) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x":    &tengo.Int{Value: int64(loc.X)},
		"y":    &tengo.Int{Value: int64(loc.Y)},
		"z":    &tengo.Int{Value: int64(loc.Z)},
		"zone": &tengo.String{Value: loc.Zone.String()},
		"town": &tengo.String{Value: game.SiteTown(loc.Point3D)},
	}}
}

func eventObject(ev game.TraversalEvent) *tengo.ImmutableMap {
	player := tengo.FalseValue
	if ev.Actor.IsPlayer() {
		player = tengo.TrueValue
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"gate":   &tengo.Int{Value: int64(ev.Gate)},
		"actor":  &tengo.String{Value: ev.Actor.ID()},
		"player": player,
		"from":   locationObject(ev.From),
		"to":     locationObject(ev.To),
	}}
}

func engineObject(actor game.Actor) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["message"] = &tengo.UserFunction{Name: "message", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		text, ok := tengo.ToString(args[0])
		if !ok || strings.TrimSpace(text) == "" {
			return tengo.FalseValue, nil
		}
		actor.SendMessage(game.Message{Text: text})
		return tengo.TrueValue, nil
	}}

	values["sound"] = &tengo.UserFunction{Name: "sound", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		id, ok := tengo.ToInt(args[0])
		if !ok || id <= 0 {
			return tengo.FalseValue, nil
		}
		actor.PlaySound(id)
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}
