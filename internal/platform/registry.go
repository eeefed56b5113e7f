package platform

import (
	"log/slog"

	"github.com/frogmemo/frogmemo/internal/toggle"
)

// Registry exposes a Backend as a toggle.Registry.
type Registry struct {
	backend Backend
	logger  *slog.Logger
}

var _ toggle.Registry = (*Registry)(nil)

// NewRegistry wraps backend. A nil logger discards output.
func NewRegistry(backend Backend, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{backend: backend, logger: logger}
}

// Window resolves label to a live handle. A failed lookup is reported as a
// missing window.
func (r *Registry) Window(label string) (toggle.Window, bool) {
	id, ok, err := r.backend.FindWindow(label)
	if err != nil {
		r.logger.Warn("window lookup failed", "label", label, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &Handle{backend: r.backend, id: id}, true
}

// Create builds the window described by spec.
func (r *Registry) Create(spec toggle.WindowSpec) error {
	id, err := r.backend.CreateWindow(CreateOptions{
		Label:    spec.Label,
		Title:    spec.Title,
		Document: spec.Document,
		Width:    spec.Width,
		Height:   spec.Height,
	})
	if err != nil {
		return err
	}
	r.logger.Info("window created", "label", spec.Label, "id", uint32(id))
	return nil
}

// Handle binds a WindowID to its backend.
type Handle struct {
	backend Backend
	id      WindowID
}

var _ toggle.Window = (*Handle)(nil)

// ID returns the underlying window identifier.
func (h *Handle) ID() WindowID { return h.id }

func (h *Handle) IsVisible() (bool, error)   { return h.backend.IsVisible(h.id) }
func (h *Handle) IsMinimized() (bool, error) { return h.backend.IsMinimized(h.id) }
func (h *Handle) Unminimize() error          { return h.backend.Unminimize(h.id) }
func (h *Handle) Show() error                { return h.backend.Show(h.id) }
func (h *Handle) SetFocus() error            { return h.backend.Focus(h.id) }
func (h *Handle) Minimize() error            { return h.backend.Minimize(h.id) }
