// Package tui is an interactive memo editor. The memo book lives in the
// settings store; the editor talks to the daemon over IPC when one is
// running and edits the store file directly otherwise.
package tui

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/frogmemo/frogmemo/internal/ipc"
	"github.com/frogmemo/frogmemo/internal/store"
)

// Backend is the store surface the editor and the store commands use.
type Backend interface {
	StoreList() ([]string, error)
	StoreGet(key string) (json.RawMessage, error)
	StoreSet(key string, value json.RawMessage) error
	StoreDelete(key string) error
}

// Toggler is implemented by backends connected to a running daemon.
type Toggler interface {
	Toggle() (*ipc.ToggleData, error)
}

// Run starts the editor and blocks until the user quits.
func Run(backend Backend, source string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(backend, source), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}

// StoreBackend edits a store file without a daemon.
type StoreBackend struct {
	Store *store.Store
}

func (b StoreBackend) StoreList() ([]string, error) {
	return b.Store.Keys(), nil
}

func (b StoreBackend) StoreGet(key string) (json.RawMessage, error) {
	return b.Store.Get(key)
}

func (b StoreBackend) StoreSet(key string, value json.RawMessage) error {
	return b.Store.SetRaw(key, value)
}

func (b StoreBackend) StoreDelete(key string) error {
	return b.Store.Delete(key)
}
