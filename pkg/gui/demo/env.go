package demo

import (
	"os"

	"github.com/leonelquinteros/gotext"

	"cascade/pkg/engine/config"
	"cascade/pkg/engine/diag"
	"cascade/pkg/engine/registry"
	"cascade/pkg/engine/scene"
	"cascade/pkg/gui/control"
	"cascade/pkg/gui/skin"
)

// Env is the runtime shared by the sample commands.
type Env struct {
	Config    *config.Config
	Sink      *diag.Sink
	Registry  *registry.Registry
	Manager   *control.Manager
	Generator *control.Generator
	Console   *Console
	Loc       registry.Location
}

// NewEnv installs cfg as the process config, sets up translation and
// creates the registry, GUI manager and generator drawing through backend.
func NewEnv(cfg *config.Config, backend scene.Backend) (*Env, error) {
	config.Set(cfg)
	sink := diag.New(os.Stderr, diag.WithVerbose(cfg.Verbose), diag.WithStrict(cfg.Strict))
	diag.SetDefault(sink)
	gotext.Configure(cfg.LocaleDir, cfg.Locale, "default")

	e := &Env{
		Config:   cfg,
		Sink:     sink,
		Registry: registry.New(sink),
		Console:  &Console{Sink: sink},
		Loc:      registry.DynamicLocation,
	}
	mgr, err := control.NewManager(e.Registry, e.Loc)
	if err != nil {
		return nil, err
	}
	e.Manager = mgr
	e.Generator = control.NewGenerator(e.Registry, backend, mgr, e.Loc, control.WithConsole(e.Console))
	return e, nil
}

// LoadSkin loads the configured skin file. It returns the null key when no
// skin is configured.
func (e *Env) LoadSkin() (registry.Key, error) {
	if e.Config.SkinPath == "" {
		return registry.Key{}, nil
	}
	s, err := skin.LoadFile(e.Registry, "GUISkin", e.Loc, e.Config.SkinPath)
	if err != nil {
		return registry.Key{}, err
	}
	e.Sink.Debugf("skin %s loaded from %s", e.Registry.Name(s.Key()), e.Config.SkinPath)
	return s.Key(), nil
}

// Build creates the sample scene, skinned when a skin is configured.
func (e *Env) Build() (*Scene, error) {
	k, err := e.LoadSkin()
	if err != nil {
		return nil, err
	}
	s, err := Build(e.Generator, e.Loc, k)
	if err != nil {
		return nil, err
	}
	e.Console.OnScale = s.SetScaled
	e.Registry.Pump()
	return s, nil
}

// Shutdown destroys the scene's menus and every generated dialog, then
// drains the registry. Submenus go with the root menu that owns them.
func (e *Env) Shutdown(s *Scene) {
	if s != nil && s.Root != nil && e.Registry.IsValid(s.Root.Key()) {
		if err := e.Registry.Unregister(s.Root.Key()); err != nil {
			e.Sink.Warnf("shutdown: %v", err)
		}
	}
	e.Generator.Shutdown()
	e.Registry.Pump()
	e.Sink.Debugf("shutdown: %d keys live", e.Registry.Live())
}
