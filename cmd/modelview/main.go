// Command modelview renders a mesh inside a skybox with an orbit camera.
//
// Without a window system the viewer renders offscreen for a fixed number
// of frames, driven by a key script:
//
//	modelview -config viewer.toml -frames 300 -script "W:30,_:60,A:45,P:1"
//
// Each script step is KEY:TICKS using the default key bindings; "_" holds
// nothing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/modelview"
	"github.com/gogpu/modelview/backend/native"
	"github.com/gogpu/modelview/input"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is main without os.Exit, so deferred cleanup always runs. It returns
// the process exit code.
func run(args []string) int {
	fs := flag.NewFlagSet("modelview", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "TOML or YAML config file")
		backend    = fs.String("backend", "vulkan", "GPU backend: vulkan or noop")
		frames     = fs.Int("frames", 120, "frames to render, 0 runs until the exit key")
		width      = fs.Uint("width", 0, "render width, overrides the config")
		height     = fs.Uint("height", 0, "render height, overrides the config")
		mesh       = fs.String("mesh", "", "mesh file (.bin or .obj), overrides the config")
		skybox     = fs.String("skybox", "", "skybox face directory, overrides the config")
		shaderDir  = fs.String("shaders", "", "shader override directory")
		watch      = fs.Bool("watch", false, "reload shaders when files in -shaders change")
		vsync      = fs.Bool("vsync", false, "wait for vertical blank")
		script     = fs.String("script", "", "key script, e.g. W:30,_:60")
		verbose    = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	modelview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := modelview.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = modelview.LoadConfig(*configPath); err != nil {
			log.Printf("modelview: %v", err)
			return 1
		}
	}
	if *width > 0 {
		cfg.Width = uint32(*width)
	}
	if *height > 0 {
		cfg.Height = uint32(*height)
	}
	if *mesh != "" {
		cfg.Mesh = *mesh
	}
	if *skybox != "" {
		cfg.SkyBoxDir = *skybox
	}
	if *shaderDir != "" {
		cfg.ShaderDir = *shaderDir
	}
	cfg.WatchShaders = cfg.WatchShaders || *watch
	cfg.VSync = cfg.VSync || *vsync

	steps, err := parseScript(*script, input.DefaultBindings)
	if err != nil {
		log.Printf("modelview: %v", err)
		return 1
	}

	dev, err := openDevice(*backend)
	if err != nil {
		log.Printf("modelview: %v", err)
		return 1
	}
	defer dev.Destroy()

	viewer, err := modelview.NewViewer(dev, cfg, modelview.WithInput(input.NewScript(steps...)))
	if err != nil {
		log.Printf("modelview: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = viewer.Run(ctx, *frames, 1.0/60)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("modelview: %v", err)
		return 1
	}

	stats := viewer.Context().Stats()
	log.Printf("Rendered %d frames (%d fence stalls), %d objects still alive\n",
		stats.Frames, stats.FenceStalls, dev.Live())
	return 0
}

func openDevice(name string) (*native.Device, error) {
	switch name {
	case "vulkan":
		return native.Open(gputypes.BackendVulkan)
	case "noop":
		return native.OpenBackend(&noop.API{})
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// parseScript turns "KEY:TICKS,..." into script steps.
func parseScript(s string, b input.Bindings) ([]input.Step, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var steps []input.Step
	for _, part := range strings.Split(s, ",") {
		key, count, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("script step %q: want KEY:TICKS", part)
		}
		ticks, err := strconv.Atoi(count)
		if err != nil || ticks <= 0 {
			return nil, fmt.Errorf("script step %q: bad tick count", part)
		}
		if key == "_" {
			steps = append(steps, input.Idle(ticks))
			continue
		}
		if _, bound := b[key]; !bound {
			return nil, fmt.Errorf("script step %q: key not bound, have %s", part, strings.Join(b.Keys(), " "))
		}
		steps = append(steps, input.Step{Snapshot: b.Snapshot(key), Ticks: ticks})
	}
	return steps, nil
}
