package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Renderer runs a Model in a bubbletea program.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start launches the program in a background goroutine.
func (r *Renderer) Start() {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
}

// Stop asks the program to quit.
func (r *Renderer) Stop() {
	r.program.Quit()
}

// Wait blocks until the program has terminated.
func (r *Renderer) Wait() error {
	return <-r.errCh
}

// Fatal reports whether the program quit because of an internal fault.
func (r *Renderer) Fatal() bool {
	return r.model.Fatal
}
