// Package display provides a terminal stand-in for the Pirate Audio board
// using Bubble Tea.
//
// The [UI] type is both a frame sink and a button reader: frames are
// downscaled to half-block cells and keys are mapped to the four panel
// buttons. Key presses have no release event in a terminal, so each press
// is treated as a hold lasting [HoldWindow].
package display

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/timer"
)

// HoldWindow is how long a key press counts as a held button.
const HoldWindow = 150 * time.Millisecond

// ── Styles ───────────────────────────────────────────────────────

var (
	frameBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7f1d1d"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	heldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)
)

// ── Key map ──────────────────────────────────────────────────────

type keyMap struct {
	A, B, X, Y key.Binding
	Sleep      key.Binding
	VolUp      key.Binding
	VolDown    key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.A, k.B, k.X, k.VolDown, k.VolUp, k.Sleep, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Y}}
}

var keys = keyMap{
	A:       key.NewBinding(key.WithKeys("a", "left"), key.WithHelp("a/←", "prev")),
	B:       key.NewBinding(key.WithKeys("b", " "), key.WithHelp("b/space", "play/wake")),
	X:       key.NewBinding(key.WithKeys("x", "right"), key.WithHelp("x/→", "next")),
	Y:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "modifier")),
	Sleep:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sleep")),
	VolUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "vol up")),
	VolDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "vol down")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// chord returns the buttons a key press holds.
func chord(msg tea.KeyMsg) []domain.Button {
	switch {
	case key.Matches(msg, keys.A):
		return []domain.Button{domain.ButtonA}
	case key.Matches(msg, keys.B):
		return []domain.Button{domain.ButtonB}
	case key.Matches(msg, keys.X):
		return []domain.Button{domain.ButtonX}
	case key.Matches(msg, keys.Y):
		return []domain.Button{domain.ButtonY}
	case key.Matches(msg, keys.Sleep):
		return []domain.Button{domain.ButtonY, domain.ButtonB}
	case key.Matches(msg, keys.VolUp):
		return []domain.Button{domain.ButtonY, domain.ButtonX}
	case key.Matches(msg, keys.VolDown):
		return []domain.Button{domain.ButtonY, domain.ButtonA}
	}
	return nil
}

// ── UI ───────────────────────────────────────────────────────────

var (
	_ domain.DisplaySink  = (*UI)(nil)
	_ domain.ButtonReader = (*UI)(nil)
)

// Option configures the UI.
type Option func(*UI)

// WithClock sets the clock used to expire held keys.
func WithClock(c timer.Clock) Option {
	return func(u *UI) {
		u.clock = c
	}
}

// UI simulates the panel and buttons in a terminal.
//
// Call [NewUI] then [UI.Run] (blocking). Submit and Pressed may be
// called from other goroutines once [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool

	clock      timer.Clock
	cols, rows int

	mu   sync.Mutex
	held map[domain.Button]time.Time
}

// NewUI creates the simulator. Call Run() to start.
func NewUI(opts ...Option) *UI {
	u := &UI{
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
		clock:   timer.Real{},
		cols:    60,
		rows:    30,
		held:    make(map[domain.Button]time.Time),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Submit shows a frame. Frames sent after the UI has quit are dropped.
func (u *UI) Submit(img *image.RGBA) error {
	if u.program == nil || u.done.Load() {
		return nil
	}
	u.program.Send(frameMsg(renderFrame(img, u.cols, u.rows)))
	return nil
}

// Close quits the UI.
func (u *UI) Close() error {
	u.Quit()
	return nil
}

// Pressed reports whether b was pressed within the last HoldWindow.
func (u *UI) Pressed(b domain.Button) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	at, ok := u.held[b]
	return ok && u.clock.Now().Sub(at) < HoldWindow
}

func (u *UI) press(buttons []domain.Button) {
	now := u.clock.Now()
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, b := range buttons {
		u.held[b] = now
	}
}

// heldLabels lists currently held buttons for the status line.
func (u *UI) heldLabels() string {
	s := ""
	for _, b := range domain.Buttons {
		if u.Pressed(b) {
			s += b.String()
		}
	}
	return s
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	m := model{
		ui:      u,
		readyCh: u.readyCh,
		help:    help.New(),
	}
	u.program = tea.NewProgram(m, tea.WithAltScreen())
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	ui      *UI
	readyCh chan struct{}
	help    help.Model
	frame   string
}

// Messages.
type frameMsg string

func (m model) Init() tea.Cmd {
	return signalReady(m.readyCh)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if bs := chord(msg); bs != nil {
			m.ui.press(bs)
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case frameMsg:
		m.frame = string(msg)
	}
	return m, nil
}

func (m model) View() string {
	status := statusStyle.Render("held: ")
	if h := m.ui.heldLabels(); h != "" {
		status += heldStyle.Render(h)
	} else {
		status += statusStyle.Render("-")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		Banner(),
		frameBorder.Render(m.frame),
		status,
		m.help.View(keys),
	)
}
