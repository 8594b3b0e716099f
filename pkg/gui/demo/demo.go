// Package demo assembles the sample GUI shared by the menudemo and menudump
// commands: a launcher button, a drag bar and a small cascade of menus.
package demo

import (
	"fmt"
	"image/color"
	"strings"

	"cascade/pkg/engine/config"
	"cascade/pkg/engine/diag"
	"cascade/pkg/engine/input"
	"cascade/pkg/engine/registry"
	"cascade/pkg/gui/control"
	"cascade/pkg/gui/popup"
)

// Console runs the commands bound to the sample's buttons and menu items.
type Console struct {
	Sink *diag.Sink
	Quit func()
	// OnScale runs after the scale preference has been toggled.
	OnScale func(scale bool)

	history []string
}

// Execute implements control.Console.
func (c *Console) Execute(cmd string) error {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil
	}
	c.history = append(c.history, cmd)
	sink := diag.Or(c.Sink)
	switch fields[0] {
	case "quit":
		if c.Quit != nil {
			c.Quit()
		}
	case "echo":
		sink.Infof("%s", strings.Join(fields[1:], " "))
	case "scale":
		cfg := config.Current()
		if err := cfg.SetScaleWithResolution(!cfg.ScaleWithResolution); err != nil {
			sink.ConfigError(err)
			return err
		}
		sink.Infof("scale with resolution: %v", cfg.ScaleWithResolution)
		if c.OnScale != nil {
			c.OnScale(cfg.ScaleWithResolution)
		}
	default:
		err := fmt.Errorf("unknown command %q", fields[0])
		sink.ConfigError(err)
		return err
	}
	return nil
}

// History returns every command executed so far.
func (c *Console) History() []string { return c.history }

// Scene is the assembled sample.
type Scene struct {
	Launcher *control.Control
	Ping     *control.Control
	Root     *popup.Menu
	File     *popup.Menu
	Recent   *popup.Menu
	View     *popup.Menu
}

// Menus returns every menu, root first.
func (s *Scene) Menus() []*popup.Menu {
	return []*popup.Menu{s.Root, s.File, s.Recent, s.View}
}

// SetScaled switches resolution scaling on every menu.
func (s *Scene) SetScaled(scale bool) {
	for _, m := range s.Menus() {
		if scale {
			m.SetFlag(popup.ScaleWithResolution)
		} else {
			m.ClearFlag(popup.ScaleWithResolution)
		}
	}
}

type entry struct {
	name    string
	command string
	sub     *popup.Menu
}

func command(cmd string, console control.Console) *control.Handler {
	if cmd == "" {
		return nil
	}
	return control.NewHandler(&control.CommandProc{Command: cmd, Console: console})
}

func fill(m *popup.Menu, console control.Console, entries ...entry) error {
	for _, e := range entries {
		if err := m.AddItem(e.name, command(e.command, console), e.sub); err != nil {
			return fmt.Errorf("menu %s: %w", m.Name(), err)
		}
	}
	return nil
}

// Build creates the sample through gen. A non-null skin decorates the root
// menu and, through inheritance, its submenus.
func Build(gen *control.Generator, loc registry.Location, skinKey registry.Key) (*Scene, error) {
	console := gen.Console()
	s := &Scene{}

	if _, err := gen.GenerateDragBar(0, 0, 1, 0.03, color.RGBA{0x3a, 0x3e, 0x58, 0xff}); err != nil {
		return nil, err
	}
	launcher, err := gen.GenerateRectButton("Menu", 0.02, 0.05, 0.12, 0.05, "", color.RGBA{0xe0, 0xe0, 0xe8, 0xff}, color.Black)
	if err != nil {
		return nil, err
	}
	s.Launcher = launcher
	if s.Ping, err = gen.GenerateSphereButton(0.9, 0.05, 0.03, "echo ping", color.RGBA{0x40, 0xa0, 0x60, 0xff}); err != nil {
		return nil, err
	}

	if s.Root, err = popup.Build("DemoRootMenu", gen, nil, popup.Unset, popup.Unset, loc); err != nil {
		return nil, err
	}
	if !skinKey.IsNull() {
		if err := s.Root.SetSkin(skinKey); err != nil {
			return nil, err
		}
	}
	if s.File, err = popup.Build("DemoFileMenu", gen, s.Root, 0, 0, loc); err != nil {
		return nil, err
	}
	if s.Recent, err = popup.Build("DemoRecentMenu", gen, s.File, 0, 0, loc); err != nil {
		return nil, err
	}
	if s.View, err = popup.Build("DemoViewMenu", gen, s.Root, 0, 0, loc); err != nil {
		return nil, err
	}
	s.View.SetFlag(popup.StayOpenAfterClick)

	if err := fill(s.Recent, console,
		entry{name: "report.txt", command: "echo open report.txt"},
		entry{name: "notes.txt", command: "echo open notes.txt"},
	); err != nil {
		return nil, err
	}
	if err := fill(s.File, console,
		entry{name: "New", command: "echo new"},
		entry{name: "Open...", command: "echo open"},
		entry{name: "Recent", sub: s.Recent},
		entry{name: "Close", command: "echo close"},
	); err != nil {
		return nil, err
	}
	if err := fill(s.View, console,
		entry{name: "Scale with resolution", command: "scale"},
	); err != nil {
		return nil, err
	}
	if err := fill(s.Root, console,
		entry{name: "File", sub: s.File},
		entry{name: "View", sub: s.View},
		entry{name: "Quit", command: "quit"},
	); err != nil {
		return nil, err
	}

	root := s.Root
	launcher.SetHandler(control.NewHandler(control.ProcFunc(func(c *control.Control, ev input.Event) {
		if ev.Kind != input.EventActivate {
			return
		}
		x, y, _, h := c.Bounds()
		root.Show(x, y+h)
	})))
	return s, nil
}

// OpenPath shows the root menu at (x, y) and hovers the items named in path,
// so "File/Recent" leaves three menus open. It returns the last menu opened.
func (s *Scene) OpenPath(mgr *control.Manager, x, y float64, path string) (*popup.Menu, error) {
	m := s.Root
	m.Show(x, y)
	if path == "" {
		return m, nil
	}
	for _, name := range strings.Split(path, "/") {
		i := indexOf(m, name)
		if i < 0 {
			return nil, fmt.Errorf("menu %s has no item %q", m.Name(), name)
		}
		sub := m.Items()[i].SubMenu
		if sub == nil {
			return nil, fmt.Errorf("item %q opens no submenu", name)
		}
		cx, cy, cw, ch := m.Controls()[i].Bounds()
		mgr.HandleMouse(input.MouseEvent{Kind: input.MouseMove, X: cx + cw/2, Y: cy + ch/2})
		m = sub
	}
	return m, nil
}

func indexOf(m *popup.Menu, name string) int {
	for i, it := range m.Items() {
		if strings.EqualFold(it.Name, name) {
			return i
		}
	}
	return -1
}
