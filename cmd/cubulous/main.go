//go:generate glslc ../../shaders/quad.vert -o ../../shaders/quad.vert.spv
//go:generate glslc ../../shaders/quad.frag -o ../../shaders/quad.frag.spv

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"cubulous/src/gpu"
	"cubulous/src/render"
	"cubulous/src/window"

	"github.com/vulkan-go/vulkan"
	"goarrg.com/debug"
)

var flags flag.FlagSet

func init() {
	// glfw and the surface it hands out are bound to the main thread.
	runtime.LockOSThread()
}

type presentMode vulkan.PresentMode

func (m *presentMode) UnmarshalText(data []byte) error {
	mode, err := render.ParsePresentMode(string(data))
	if err != nil {
		return err
	}
	*m = presentMode(mode)
	return nil
}

func (m presentMode) MarshalText() ([]byte, error) {
	return []byte(render.PresentModeString(vulkan.PresentMode(m))), nil
}

type options struct {
	title         string
	width, height int
	frames        int
	presentMode   presentMode
	vert, frag    string
	validation    bool
}

// teardown collects finalizers and runs them newest first.
type teardown []func()

func (t *teardown) push(fn func()) {
	*t = append([]func(){fn}, *t...)
}

func (t teardown) run() {
	for _, fn := range t {
		fn()
	}
}

func main() {
	debug.SetLevel(debug.LogLevelWarn)

	flags.Usage = help
	flags.Init("", flag.ExitOnError)

	v := flags.Bool("v", false, "Verbose - Print high level tasks")
	vv := flags.Bool("vv", false, "Very Verbose - Print everything")

	o := options{presentMode: presentMode(vulkan.PresentModeMailbox)}
	flags.StringVar(&o.title, "title", "cubulous", "Sets the window title.")
	flags.IntVar(&o.width, "width", 800, "Sets the initial window width.")
	flags.IntVar(&o.height, "height", 600, "Sets the initial window height.")
	flags.IntVar(&o.frames, "frames", 2, "Sets the number of frames in flight.")
	flags.TextVar(&o.presentMode, "present-mode", presentMode(vulkan.PresentModeMailbox),
		"Sets the preferred present mode, falling back to fifo when unsupported.\n"+
			"Valid values are \"immediate\", \"mailbox\", \"fifo\" and \"fifo-relaxed\".")
	flags.StringVar(&o.vert, "vert", filepath.Join("shaders", "quad.vert.spv"), "Sets the vertex shader SPIR-V file.")
	flags.StringVar(&o.frag, "frag", filepath.Join("shaders", "quad.frag.spv"), "Sets the fragment shader SPIR-V file.")
	flags.BoolVar(&o.validation, "validation", false, "Enables the Khronos validation layer.")

	if err := flags.Parse(os.Args[1:]); err != nil {
		panic(err)
	}

	if level, ok := logLevel(*v, *vv); ok {
		setLogLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		debug.EPrintf("%v", err)
		os.Exit(1)
	}
}

// logLevel picks the most verbose level requested.
func logLevel(v, vv bool) (uint32, bool) {
	switch {
	case vv:
		return uint32(debug.LogLevelVerbose), true
	case v:
		return uint32(debug.LogLevelInfo), true
	}
	return 0, false
}

func setLogLevel(l uint32) {
	debug.SetLevel(l)
	render.SetLogLevel(l)
	gpu.SetLogLevel(l)
	window.SetLogLevel(l)
}

func run(ctx context.Context, o options) (err error) {
	defer render.CheckError(&err)

	var cleanup teardown
	defer func() { cleanup.run() }()

	win, err := window.New(
		window.WithTitle(o.title),
		window.WithSize(o.width, o.height),
		window.WithResizable(true),
	)
	render.OrPanic(err)
	cleanup.push(win.Destroy)
	// A minimized window blocks in the event wait, cancellation must end it.
	go func() {
		<-ctx.Done()
		win.Wake()
	}()
	render.OrPanic(window.InitVulkan())

	instance, err := gpu.NewInstance(gpu.InstanceConfig{
		AppName:    o.title,
		Extensions: win.RequiredInstanceExtensions(),
		Validation: o.validation,
	})
	render.OrPanic(err)
	cleanup.push(instance.Destroy)

	surface, err := win.CreateSurface(instance.Handle())
	render.OrPanic(err)
	cleanup.push(func() { instance.DestroySurface(surface) })

	device, err := gpu.NewDevice(instance, surface)
	render.OrPanic(err)
	cleanup.push(device.Destroy)

	config := render.DefaultConfig()
	config.MaxFramesInFlight = o.frames
	config.PreferredPresentMode = vulkan.PresentMode(o.presentMode)

	format, err := render.ChooseSurfaceFormat(device, config)
	render.OrPanic(err)
	pass, err := gpu.NewRenderPass(device, format.Format)
	render.OrPanic(err)
	cleanup.push(func() { gpu.DestroyRenderPass(device, pass) })

	vert, err := gpu.LoadShader(o.vert)
	render.OrPanic(err)
	frag, err := gpu.LoadShader(o.frag)
	render.OrPanic(err)
	pipeline, err := gpu.NewPipeline(device, pass, vert, frag)
	render.OrPanic(err)
	cleanup.push(func() { pipeline.Destroy(device) })

	vertices, err := gpu.NewVertexBuffer(device, gpu.QuadVertices)
	render.OrPanic(err)
	cleanup.push(func() { vertices.Destroy(device) })
	indices, err := gpu.NewIndexBuffer(device, gpu.QuadIndices)
	render.OrPanic(err)
	cleanup.push(func() { indices.Destroy(device) })

	r, err := render.New(device, win, render.Resources{
		RenderPass: pass,
		Pipeline:   pipeline.Handle(),
		Vertices:   vertices,
		Indices:    indices,
	}, config)
	render.OrPanic(err)
	cleanup.push(r.Destroy)
	win.SetResizeCallback(func(int, int) { r.Resized() })

	debug.IPrintf("Rendering on %s", device.Name())
	if err := render.Run(ctx, r, win.Events()); err != nil {
		return err
	}

	stats := r.Stats()
	debug.IPrintf("Submitted %d frames, dropped %d, recreated the swap chain %d times",
		stats.Frames, stats.Dropped, stats.Recreations)
	return nil
}

func help() {
	fmt.Fprintf(os.Stderr, "cubulous draws a colored quad with Vulkan until the window is closed.\n\n")
	args := ""
	flags.VisitAll(func(f *flag.Flag) {
		n, u := flag.UnquoteUsage(f)
		if f.DefValue != "" {
			u += "\n\nDefaults to \"" + f.DefValue + "\"."
		}
		args += "\t-" + f.Name + " " + n + "\n\t\t" + strings.ReplaceAll(strings.TrimSpace(u), "\n", "\n\t\t") + "\n"
	})
	fmt.Fprintf(os.Stderr, "Usage:\n\t%s [arguments]\n\nArguments:\n%s", filepath.Base(os.Args[0]), args)
}
