// Command meshview renders a textured OBJ model with Vulkan.
package main

//go:generate glslc ../../shaders/shader.vert -o ../../shaders/vert.spv
//go:generate glslc ../../shaders/shader.frag -o ../../shaders/frag.spv

import (
	"flag"
	"runtime"

	"github.com/andewx/meshvk"
	"github.com/andewx/meshvk/assets"
	"github.com/andewx/meshvk/window"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	debug := flag.Bool("debug", false, "enable validation layers and debug logging")
	flag.Parse()

	cfg, err := meshvk.LoadConfig(*configPath)
	meshvk.Fatal(err)
	if *debug {
		cfg.Validation = true
	}

	logger, err := meshvk.NewLogger(cfg.LogFile, *debug)
	meshvk.Fatal(err)
	defer logger.Close()

	mesh, err := assets.LoadMesh(cfg.Model)
	meshvk.Fatal(err, func() { logger.Close() })
	texture, err := assets.LoadTexture(cfg.Texture, cfg.MaxTextureSize)
	meshvk.Fatal(err, func() { logger.Close() })
	logger.Infof("loaded %s (%d vertices) and %s (%dx%d)",
		cfg.Model, len(mesh.Vertices), cfg.Texture, texture.Width, texture.Height)

	meshvk.Fatal(window.Init(), func() { logger.Close() })
	defer window.Terminate()

	win, err := window.New(window.Options{
		Title:     cfg.Title,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Resizable: cfg.IsResizable(),
	})
	meshvk.Fatal(err, window.Terminate, func() { logger.Close() })
	defer win.Destroy()

	renderer, err := meshvk.NewRenderer(cfg, win, mesh, texture, logger)
	meshvk.Fatal(err, win.Destroy, window.Terminate, func() { logger.Close() })
	defer renderer.Destroy()

	if err := renderer.Run(); err != nil {
		meshvk.Fatal(err, renderer.Destroy, win.Destroy, window.Terminate, func() { logger.Close() })
	}
	logger.Infof("%s closed", cfg.Title)
}
