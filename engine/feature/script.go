package feature

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-core/engine/message"
	"github.com/Shopify/go-lua"
)

// Script is one Lua chunk run when the script feature activates.
type Script struct {
	Name   string
	Source string
}

// ScriptFeature runs Lua scripts. Scripts execute in load order on activation and may
// define the globals on_frame(dt), called every frame, and on_shutdown(), called on
// deactivation. The "engine" table exposes log(msg), send(id [, name]) and frame().
type ScriptFeature struct {
	BaseFeature

	scripts []Script
	state   *lua.State
	frame   uint64
	errors  int
}

var _ Feature = &ScriptFeature{}

// NewScriptFeature creates a script feature.
//
// Parameters:
//   - options: functional options adding scripts
//
// Returns:
//   - *ScriptFeature: the feature
func NewScriptFeature(options ...ScriptBuilderOption) *ScriptFeature {
	f := &ScriptFeature{BaseFeature: NewBaseFeature("script")}
	for _, option := range options {
		option(f)
	}
	return f
}

// LoadScriptFile reads a script from disk. The script name is the file's base name.
func LoadScriptFile(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("feature: read script: %w", err)
	}
	return Script{Name: filepath.Base(path), Source: string(data)}, nil
}

func (f *ScriptFeature) OnActivate(ctx *Context) error {
	if err := f.BaseFeature.OnActivate(ctx); err != nil {
		return err
	}
	l := lua.NewState()
	lua.OpenLibraries(l)
	f.registerEngine(l)

	for _, s := range f.scripts {
		if err := lua.LoadBuffer(l, s.Source, s.Name, "t"); err != nil {
			f.BaseFeature.OnDeactivate()
			return fmt.Errorf("feature: load script %q: %w", s.Name, err)
		}
		if err := l.ProtectedCall(0, 0, 0); err != nil {
			f.BaseFeature.OnDeactivate()
			return fmt.Errorf("feature: run script %q: %w", s.Name, err)
		}
	}
	f.state = l
	f.frame = 0
	return nil
}

func (f *ScriptFeature) registerEngine(l *lua.State) {
	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "log", Function: f.luaLog},
		{Name: "send", Function: f.luaSend},
		{Name: "frame", Function: f.luaFrame},
	}, 0)
	l.SetGlobal("engine")
}

func (f *ScriptFeature) luaLog(l *lua.State) int {
	f.Context().Logger().WithField("feature", f.Name()).Info(lua.CheckString(l, 1))
	return 0
}

// luaSend delivers a message with the given id to the active scene, optionally filtered
// by object name, and returns the delivery count.
func (f *ScriptFeature) luaSend(l *lua.State) int {
	id := lua.CheckString(l, 1)
	name := lua.OptString(l, 2, "")
	delivered := 0
	if root := f.Context().ActiveRoot(); root != nil {
		delivered = root.SendMessage(message.Message{
			ID:     message.ID(id),
			Sender: f,
			Filter: message.Filter{Recursive: true, Name: name},
		})
	}
	l.PushInteger(delivered)
	return 1
}

func (f *ScriptFeature) luaFrame(l *lua.State) int {
	l.PushNumber(float64(f.frame))
	return 1
}

func (f *ScriptFeature) OnFrame(dt float64) {
	if f.state == nil {
		return
	}
	f.frame++
	if err := f.callGlobal("on_frame", dt); err != nil {
		f.errors++
		f.Context().Logger().WithError(err).WithField("feature", f.Name()).Warn("on_frame failed")
	}
}

// callGlobal calls the global function name with the given number arguments. A missing
// global is not an error.
func (f *ScriptFeature) callGlobal(name string, args ...float64) error {
	l := f.state
	l.Global(name)
	if !l.IsFunction(-1) {
		l.Pop(1)
		return nil
	}
	for _, a := range args {
		l.PushNumber(a)
	}
	if err := l.ProtectedCall(len(args), 0, 0); err != nil {
		l.Pop(1)
		return err
	}
	return nil
}

func (f *ScriptFeature) OnDeactivate() {
	if f.state != nil {
		if err := f.callGlobal("on_shutdown"); err != nil {
			f.Context().Logger().WithError(err).WithField("feature", f.Name()).Warn("on_shutdown failed")
		}
		f.state = nil
	}
	f.BaseFeature.OnDeactivate()
}

// Global returns the number stored in a Lua global, for host inspection.
func (f *ScriptFeature) Global(name string) (float64, bool) {
	if f.state == nil {
		return 0, false
	}
	f.state.Global(name)
	defer f.state.Pop(1)
	return f.state.ToNumber(-1)
}

// Errors returns how many on_frame calls failed.
func (f *ScriptFeature) Errors() int {
	return f.errors
}

// ScriptBuilderOption is a functional option for configuring a ScriptFeature.
type ScriptBuilderOption func(*ScriptFeature)

// WithScript adds a script run on activation.
func WithScript(name, source string) ScriptBuilderOption {
	return func(f *ScriptFeature) {
		f.scripts = append(f.scripts, Script{Name: name, Source: source})
	}
}

// WithScripts adds scripts loaded elsewhere, e.g. by LoadScriptFile.
func WithScripts(scripts ...Script) ScriptBuilderOption {
	return func(f *ScriptFeature) {
		f.scripts = append(f.scripts, scripts...)
	}
}
