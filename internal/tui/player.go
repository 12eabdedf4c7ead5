// Package tui is the terminal player: bars for the current step, a status
// line, and keyboard transport.
package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/algoviz/internal/config"
	"github.com/san-kum/algoviz/internal/input"
	"github.com/san-kum/algoviz/internal/playback"
)

// changeMsg tells the model the controller moved on its own, after a tick.
type changeMsg struct{}

type model struct {
	ctrl  *playback.Controller
	state playback.State
	theme Theme

	changes <-chan struct{}
	done    <-chan struct{}

	editing bool
	editBuf string
	notice  string

	copy func(string) error

	width  int
	height int
}

func newModel(c *playback.Controller, theme string) model {
	return model{
		ctrl:   c,
		state:  c.Snapshot(),
		theme:  GetTheme(theme),
		copy:   clipboard.WriteAll,
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd { return m.waitForChange() }

// watch subscribes to c and returns a channel holding at most one pending
// signal. The listener never blocks, so controller calls made from Update
// cannot stall the program's event loop.
func watch(c *playback.Controller) <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.OnChange(func(playback.State) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch
}

func (m model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes, done := m.changes, m.done
	return func() tea.Msg {
		select {
		case <-changes:
			return changeMsg{}
		case <-done:
			return nil
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case changeMsg:
		m.state = m.ctrl.Snapshot()
		return m, m.waitForChange()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		return m.editKey(msg)
	}
	m.notice = ""

	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Close()
		return m, tea.Quit
	case " ", "p":
		m.ctrl.Toggle()
	case "right", "l":
		m.ctrl.StepForward()
	case "left", "h":
		m.ctrl.StepBackward()
	case "r":
		m.ctrl.Reset()
	case "+", "=":
		m.ctrl.SetSpeed(config.ClampSpeed(m.ctrl.Speed() - config.SpeedStep))
	case "-", "_":
		m.ctrl.SetSpeed(config.ClampSpeed(m.ctrl.Speed() + config.SpeedStep))
	case "a":
		m.ctrl.SetAlgorithm(m.ctrl.Algorithm().Next())
	case "e":
		m.ctrl.Pause()
		m.editing = true
		m.editBuf = input.Format(m.ctrl.Snapshot().Input)
	case "y":
		arr := input.Format(m.ctrl.Current().Array)
		if err := m.copy(arr); err != nil {
			m.notice = "clipboard unavailable: " + err.Error()
		} else {
			m.notice = "copied " + arr
		}
	case "t":
		m.theme = nextTheme(m.theme)
	}
	m.state = m.ctrl.Snapshot()
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.ctrl.SetInput(m.editBuf)
		m.editing = false
		m.editBuf = ""
		m.state = m.ctrl.Snapshot()
	case tea.KeyEsc:
		m.editing = false
		m.editBuf = ""
	case tea.KeyBackspace:
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	case tea.KeySpace:
		m.editBuf += " "
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if (r >= '0' && r <= '9') || r == ',' || r == '-' || r == ' ' {
				m.editBuf += string(r)
			}
		}
	case tea.KeyCtrlC:
		m.ctrl.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	th := m.theme
	accent := lipgloss.NewStyle().Foreground(th.Accent)
	text := lipgloss.NewStyle().Foreground(th.Text)
	dim := lipgloss.NewStyle().Foreground(th.Muted)

	st := m.state
	var b strings.Builder

	icon := lipgloss.NewStyle().Foreground(th.Paused).Render("○")
	status := lipgloss.NewStyle().Foreground(th.Paused).Render("paused")
	if st.Playing {
		icon = lipgloss.NewStyle().Foreground(th.Playing).Render("●")
		status = lipgloss.NewStyle().Foreground(th.Playing).Render("playing")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n\n",
		icon, accent.Render(string(st.Algorithm)), status, dim.Render(th.Name)))

	if !st.Algorithm.Implemented() {
		b.WriteString("   " + dim.Render(fmt.Sprintf("%s is not implemented yet; showing the input only", st.Algorithm)) + "\n\n")
	}

	barHeight := max(4, m.height-12)
	for _, line := range strings.Split(strings.TrimRight(renderBars(st.Step, m.width-6, barHeight, th), "\n"), "\n") {
		b.WriteString("   " + line + "\n")
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("   %s  %s  %s\n",
		text.Render(statusLine(st)),
		dim.Render(fmt.Sprintf("speed %dms", st.SpeedMs)),
		dim.Render(markerLine(st))))

	if m.editing {
		b.WriteString("\n   " + accent.Render("input ") + text.Render(m.editBuf+"▋") + "\n")
		b.WriteString(dim.Render("   enter apply  esc cancel") + "\n")
		return b.String()
	}
	if m.notice != "" {
		b.WriteString("\n   " + dim.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space play/pause  ←→ step  r reset  ± speed  a algorithm  e edit  y copy  t theme  q quit") + "\n")
	return b.String()
}

// statusLine renders "Step: k / N" with a one-based k.
func statusLine(st playback.State) string {
	return fmt.Sprintf("Step: %d / %d", st.Cursor+1, st.StepCount)
}

func markerLine(st playback.State) string {
	switch {
	case len(st.Step.Swapped) == 2:
		return fmt.Sprintf("swap %d ↔ %d", st.Step.Swapped[0], st.Step.Swapped[1])
	case len(st.Step.Comparing) == 2:
		return fmt.Sprintf("compare %d, %d", st.Step.Comparing[0], st.Step.Comparing[1])
	}
	return ""
}

// Run plays c in the terminal until the user quits.
func Run(c *playback.Controller, theme string) error {
	p, stop := newProgram(c, theme, tea.WithAltScreen())
	defer stop()

	_, err := p.Run()
	c.Close()
	return err
}

// newProgram wires c into a player program. stop releases the pending
// change watcher once the program has exited.
func newProgram(c *playback.Controller, theme string, opts ...tea.ProgramOption) (*tea.Program, func()) {
	done := make(chan struct{})
	m := newModel(c, theme)
	m.changes = watch(c)
	m.done = done
	return tea.NewProgram(m, opts...), func() { close(done) }
}
