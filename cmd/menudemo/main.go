// Command menudemo opens a window with the sample launcher, drag bar and
// cascading menus. Escape quits.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/png"
	"os"

	"cascade/pkg/engine/config"
	"cascade/pkg/engine/render/ebiten"
	"cascade/pkg/engine/scene"
	"cascade/pkg/gui/demo"
)

func main() {
	cfgPath := flag.String("config", "menudemo.ini", "ini file with settings and saved preferences")
	atlas := flag.String("atlas", "", "PNG atlas for the skin")
	atlasName := flag.String("atlas-name", "GUISkinAtlas", "texture name the skin file refers to")
	verbose := flag.Bool("v", false, "verbose diagnostics")
	flag.Parse()

	if err := run(*cfgPath, *atlas, *atlasName, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "menudemo:", err)
		os.Exit(1)
	}
}

func run(cfgPath, atlas, atlasName string, verbose bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.Verbose = cfg.Verbose || verbose

	backend, err := ebiten.New(cfg.ScreenWidth, cfg.ScreenHeight)
	if err != nil {
		return err
	}
	env, err := demo.NewEnv(cfg, backend)
	if err != nil {
		return err
	}

	game := ebiten.NewGame(backend, env.Registry, env.Manager)
	env.Console.Quit = game.Quit
	var sc *demo.Scene
	game.Start = func() error {
		if atlas != "" {
			if err := loadAtlas(env, backend, atlas, atlasName); err != nil {
				return err
			}
		}
		s, err := env.Build()
		if err != nil {
			return err
		}
		sc = s
		return nil
	}

	err = game.Run("Cascade menus")
	env.Shutdown(sc)
	return err
}

// loadAtlas decodes a skin atlas and registers it under name so the skin
// file can find it.
func loadAtlas(env *demo.Env, backend *ebiten.Backend, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("atlas %s: %w", path, err)
	}
	tex := &scene.Texture{Surface: backend.SurfaceFromImage(img)}
	if _, err := env.Registry.Mint(name, tex, env.Loc); err != nil {
		tex.Destroy()
		return err
	}
	return nil
}
