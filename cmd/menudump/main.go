// Command menudump builds the sample menus against the headless backend,
// opens a cascade and prints the visible dialogs as boxes in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"cascade/pkg/engine/config"
	"cascade/pkg/engine/render/headless"
	"cascade/pkg/engine/terminal"
	"cascade/pkg/gui/control"
	"cascade/pkg/gui/demo"
	"cascade/pkg/gui/popup"
)

var translate = gotext.Get

var palette = []color.Style{
	{color.FgGray},
	{color.FgCyan},
	{color.FgGreen},
	{color.FgYellow},
	{color.FgMagenta},
	{color.FgBlue},
}

func main() {
	cfgPath := flag.String("config", "", "ini file with settings")
	open := flag.String("open", "File/Recent", "slash-separated submenu path to open")
	width := flag.Int("width", 0, "virtual screen width in pixels (default from config)")
	height := flag.Int("height", 0, "virtual screen height in pixels (default from config)")
	save := flag.String("save", "", "write the root menu record to this file")
	noColor := flag.Bool("no-color", false, "disable coloured output")
	verbose := flag.Bool("v", false, "verbose diagnostics")
	flag.Parse()

	if err := run(*cfgPath, *open, *save, *width, *height, *verbose, !*noColor && terminal.IsTerminal()); err != nil {
		fmt.Fprintln(os.Stderr, "menudump:", err)
		os.Exit(1)
	}
}

func run(cfgPath, open, save string, width, height int, verbose, colored bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.Verbose = cfg.Verbose || verbose
	if width > 0 {
		cfg.ScreenWidth = width
	}
	if height > 0 {
		cfg.ScreenHeight = height
	}

	backend := headless.New(cfg.ScreenWidth, cfg.ScreenHeight)
	env, err := demo.NewEnv(cfg, backend)
	if err != nil {
		return err
	}
	scene, err := env.Build()
	if err != nil {
		return err
	}
	defer env.Shutdown(scene)

	if _, err := scene.OpenPath(env.Manager, 0.05, 0.15, open); err != nil {
		return err
	}
	env.Registry.Pump()

	if save != "" {
		if err := saveMenu(scene.Root, save); err != nil {
			return err
		}
	}

	cols, rows := terminal.GetSize()
	canvas := headless.NewCanvas(cols, rows-1)
	vis := env.Manager.Visible()
	for i := len(vis) - 1; i >= 0; i-- {
		d, ok := vis[i].(interface{ Controls() []*control.Control })
		if !ok {
			continue
		}
		for _, c := range d.Controls() {
			x, y, w, h := c.Bounds()
			canvas.Box(x, y, w, h, label(c), i+1)
		}
	}
	printCanvas(canvas, colored)

	for i, t := range vis {
		name := env.Registry.Name(t.Key())
		if m, ok := t.(*popup.Menu); ok {
			name = fmt.Sprintf("%s (%s, %d items)", name, m.State(), len(m.Items()))
		}
		if colored {
			name = palette[(i+1)%len(palette)].Sprint(name)
		}
		fmt.Println(name)
	}
	return nil
}

func label(c *control.Control) string {
	switch c.Kind() {
	case control.KindSphereButton:
		return "o"
	case control.KindDragBar:
		return ""
	}
	s := translate(c.Label())
	if c.HasFlag(control.FlagDrawSubMenuArrow) {
		s += " >"
	}
	return s
}

// printCanvas writes the canvas, colouring each run of cells by the dialog that
// drew it.
func printCanvas(c *headless.Canvas, colored bool) {
	if !colored {
		fmt.Println(c.String())
		return
	}
	lines, marks := c.Lines()
	for row, line := range lines {
		cells := []rune(line)
		var b strings.Builder
		start := 0
		for col := 1; col <= len(cells); col++ {
			if col < len(cells) && marks[row][col] == marks[row][start] {
				continue
			}
			run := string(cells[start:col])
			if m := marks[row][start]; m > 0 {
				run = palette[m%len(palette)].Sprint(run)
			}
			b.WriteString(run)
			start = col
		}
		fmt.Println(strings.TrimRight(b.String(), " "))
	}
}

func saveMenu(m *popup.Menu, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}
