package cli

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
)

// Toast levels decide the badge color.
type toastLevel int

const (
	toastInfo toastLevel = iota
	toastOK
	toastError
)

const (
	defaultToastDuration = 4 * time.Second
	maxToastsVisible     = 5
)

type toast struct {
	id      string
	level   toastLevel
	texto   string
	expires time.Time
}

// toastMsg requests a new notification.
type toastMsg struct {
	level    toastLevel
	texto    string
	duration time.Duration
}

// toastTickMsg prunes expired toasts.
type toastTickMsg struct{}

// showToast returns a tea.Cmd that fires a toast with the default duration.
func showToast(level toastLevel, texto string) tea.Cmd {
	return func() tea.Msg { return toastMsg{level: level, texto: texto} }
}

// showToastFor fires a toast with a caller-chosen duration.
func showToastFor(level toastLevel, texto string, d time.Duration) tea.Cmd {
	return func() tea.Msg { return toastMsg{level: level, texto: texto, duration: d} }
}

// toastManager keeps the visible notifications: fire-and-forget, pruned on a
// ticker, capped to the most recent five.
type toastManager struct {
	toasts []toast
	now    func() time.Time // test hook
}

func newToastManager() *toastManager {
	return &toastManager{now: time.Now}
}

// Push appends a toast, evicting the oldest beyond the cap.
func (m *toastManager) Push(level toastLevel, texto string, d time.Duration) {
	if d <= 0 {
		d = defaultToastDuration
	}
	m.toasts = append(m.toasts, toast{
		id:      uuid.NewString(),
		level:   level,
		texto:   texto,
		expires: m.now().Add(d),
	})
	if len(m.toasts) > maxToastsVisible {
		m.toasts = m.toasts[len(m.toasts)-maxToastsVisible:]
	}
}

// Prune drops expired toasts and reports whether any remain.
func (m *toastManager) Prune() bool {
	now := m.now()
	keep := m.toasts[:0]
	for _, t := range m.toasts {
		if t.expires.After(now) {
			keep = append(keep, t)
		}
	}
	m.toasts = keep
	return len(m.toasts) > 0
}

// Active reports whether any toast is visible.
func (m *toastManager) Active() bool { return len(m.toasts) > 0 }

// tick schedules the next prune pass while toasts are visible.
func (m *toastManager) tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return toastTickMsg{}
	})
}

// View renders the toast lines, newest last.
func (m *toastManager) View() string {
	if len(m.toasts) == 0 {
		return ""
	}
	var b strings.Builder
	for i, t := range m.toasts {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch t.level {
		case toastOK:
			b.WriteString(formatter.StyleGreen.Render("✔ " + t.texto))
		case toastError:
			b.WriteString(formatter.StyleRed.Render("✘ " + t.texto))
		default:
			b.WriteString(formatter.StyleBlue.Render("ℹ " + t.texto))
		}
	}
	return b.String()
}
