package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// CreateOptions describes a top-level window to build.
type CreateOptions struct {
	Label    string
	Title    string
	Document string
	Width    int
	Height   int
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	FindWindow(label string) (WindowID, bool, error)
	IsVisible(windowID WindowID) (bool, error)
	IsMinimized(windowID WindowID) (bool, error)
	Unminimize(windowID WindowID) error
	Show(windowID WindowID) error
	Focus(windowID WindowID) error
	Minimize(windowID WindowID) error
	CreateWindow(opts CreateOptions) (WindowID, error)
}
