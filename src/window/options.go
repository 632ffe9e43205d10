package window

// Option configures a Window before it is created.
type Option func(w *Window)

func WithTitle(title string) Option {
	return func(w *Window) {
		w.title = title
	}
}

// WithSize sets the initial window size in screen coordinates.
func WithSize(width, height int) Option {
	return func(w *Window) {
		w.width = width
		w.height = height
	}
}

func WithResizable(resizable bool) Option {
	return func(w *Window) {
		w.resizable = resizable
	}
}
