package window

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/vulkan-go/vulkan"
	"goarrg.com/debug"
)

// Window is a glfw window without a client API, presented to by Vulkan.
// It must be created and used from the main thread.
type Window struct {
	title     string
	width     int
	height    int
	resizable bool

	win      *glfw.Window
	events   *EventSource
	onResize func(width, height int)

	// mu orders Wake against Destroy, glfw must not be posted to once
	// terminated.
	mu        sync.Mutex
	destroyed bool
}

func New(options ...Option) (*Window, error) {
	w := &Window{
		title:     "cubulous",
		width:     800,
		height:    600,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, debug.Errorf("Invalid window size %dx%d", w.width, w.height)
	}

	if err := glfw.Init(); err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to init glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, debug.Errorf("No Vulkan loader found")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if w.resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, debug.ErrorWrapf(err, "Failed to create window")
	}
	w.win = win
	w.events = newEventSource(glfw.PollEvents, glfw.WaitEvents, glfw.PostEmptyEvent, win.ShouldClose)

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		logger.VPrintf("Framebuffer resized to %dx%d", width, height)
		w.events.resized(width, height)
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	w.events.resized(win.GetFramebufferSize())

	logger.IPrintf("Created window %q %dx%d", w.title, w.width, w.height)
	return w, nil
}

// InitVulkan points the Vulkan loader at glfw's instance proc address. It
// must run after New and before any instance is created.
func InitVulkan() error {
	vulkan.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vulkan.Init(); err != nil {
		return debug.ErrorWrapf(err, "Failed to init Vulkan loader")
	}
	return nil
}

// RequiredInstanceExtensions lists the instance extensions needed to
// present to this window.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vulkan.Instance) (vulkan.Surface, error) {
	ptr, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vulkan.NullSurface, debug.ErrorWrapf(err, "Failed to create window surface")
	}
	return vulkan.SurfaceFromPointer(ptr), nil
}

func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

// SetResizeCallback is called with the new framebuffer size in pixels.
func (w *Window) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *Window) Events() *EventSource {
	return w.events
}

// Wake unblocks the event source, for example after the run context is
// cancelled while the window is minimized. It may be called from any
// goroutine, also after Destroy.
func (w *Window) Wake() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.destroyed {
		w.events.Wake()
	}
}

func (w *Window) Destroy() {
	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()

	w.win.Destroy()
	glfw.Terminate()
	logger.IPrintf("Window destroyed")
}
