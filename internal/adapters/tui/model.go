package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/hangar/internal/core/domain"
)

// chromeHeight is the number of lines taken by the title and footer.
const chromeHeight = 5

// Controller is what the interface drives. Actions return immediately;
// their effects show up on a later tick.
type Controller interface {
	Installations() []domain.Installation
	CurrentEvent() (domain.Event, bool)
	Fatal() bool
	Install(v domain.Version)
	Uninstall(v domain.Version)
	Abort(v domain.Version)
	Launch(v domain.Version)
	Refresh()
}

type tickMsg time.Time

// Model is the interactive version list.
type Model struct {
	Controller   Controller
	Rows         []domain.Installation
	SelectedIdx  int
	ListOffset   int
	ListHeight   int
	Width        int
	Event        domain.Event
	HasEvent     bool
	Fatal        bool
	TickInterval time.Duration
}

// Init reads the initial state and starts the refresh tick.
func (m *Model) Init() tea.Cmd {
	m.sync()
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles keys, resizes and ticks.
//
//nolint:cyclop // one case per key binding
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.sync()
		if m.Fatal {
			return m, tea.Quit
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.ListHeight = max(msg.Height-chromeHeight, 1)
		m.ensureVisible()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "k", "up":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.ensureVisible()
			}
		case "j", "down":
			if m.SelectedIdx < len(m.Rows)-1 {
				m.SelectedIdx++
				m.ensureVisible()
			}
		case "r":
			m.Controller.Refresh()
		case "i":
			m.withSelected(m.Controller.Install)
		case "u":
			m.withSelected(m.Controller.Uninstall)
		case "a":
			m.withSelected(m.Controller.Abort)
		case "enter", "l":
			m.withSelected(m.Controller.Launch)
		}
	}
	return m, nil
}

func (m *Model) withSelected(action func(domain.Version)) {
	if inst, ok := m.selected(); ok {
		action(inst.Version)
	}
}

func (m *Model) selected() (domain.Installation, bool) {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Rows) {
		return m.Rows[m.SelectedIdx], true
	}
	return domain.Installation{}, false
}

// sync re-reads the controller, keeping the cursor on the same version when it moves.
func (m *Model) sync() {
	prev, hadPrev := m.selected()

	m.Rows = m.Controller.Installations()
	if hadPrev {
		for i, inst := range m.Rows {
			if inst.Key() == prev.Key() {
				m.SelectedIdx = i
				break
			}
		}
	}
	m.SelectedIdx = min(m.SelectedIdx, len(m.Rows)-1)
	m.SelectedIdx = max(m.SelectedIdx, 0)
	m.ensureVisible()

	m.Event, m.HasEvent = m.Controller.CurrentEvent()
	m.Fatal = m.Controller.Fatal()
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
	m.ListOffset = max(min(m.ListOffset, len(m.Rows)-m.ListHeight), 0)
}
