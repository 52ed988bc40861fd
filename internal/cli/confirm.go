package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
)

// confirmOptions is what the caller wants displayed in the modal.
type confirmOptions struct {
	Titulo    string
	Cuerpo    string
	Confirmar string // button label, default "Sí"
	Cancelar  string // button label, default "No"
}

// confirmRequestMsg opens the confirm modal.
type confirmRequestMsg struct {
	opts confirmOptions
	// onResult runs with the user's choice when THIS request resolves.
	onResult func(bool) tea.Cmd
}

// requestConfirm returns a tea.Cmd that opens the confirm modal and runs
// onResult with the user's answer.
func requestConfirm(opts confirmOptions, onResult func(bool) tea.Cmd) tea.Cmd {
	return func() tea.Msg { return confirmRequestMsg{opts: opts, onResult: onResult} }
}

// confirmController holds at most one pending confirmation.
//
// Policy: a second request arriving before the user answers REPLACES the
// pending one: the replaced caller's callback is dropped and will never
// run. Queueing was considered instead; replacement keeps the modal showing
// the most recent intent, at the cost of silently orphaning the earlier
// caller, so new call sites should avoid racing requests.
type confirmController struct {
	pending *confirmRequestMsg
	cursor  bool // true = confirm button focused
}

func (c *confirmController) Active() bool { return c.pending != nil }

// Open installs a request, replacing any pending one.
func (c *confirmController) Open(msg confirmRequestMsg) {
	if msg.opts.Confirmar == "" {
		msg.opts.Confirmar = "Sí"
	}
	if msg.opts.Cancelar == "" {
		msg.opts.Cancelar = "No"
	}
	c.pending = &msg
	c.cursor = false
}

// HandleKey processes a key while the modal is open. It returns the
// callback command when the request resolves.
func (c *confirmController) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if c.pending == nil {
		return nil
	}
	switch msg.String() {
	case "left", "right", "tab":
		c.cursor = !c.cursor
		return nil
	case "y", "s":
		return c.resolve(true)
	case "n", "esc":
		return c.resolve(false)
	case "enter":
		return c.resolve(c.cursor)
	}
	return nil
}

func (c *confirmController) resolve(answer bool) tea.Cmd {
	req := c.pending
	c.pending = nil
	if req.onResult == nil {
		return nil
	}
	return req.onResult(answer)
}

// View renders the modal box. Width bounds the body wrap.
func (c *confirmController) View(width int) string {
	if c.pending == nil {
		return ""
	}
	opts := c.pending.opts

	confirmar := "[ " + opts.Confirmar + " ]"
	cancelar := "[ " + opts.Cancelar + " ]"
	if c.cursor {
		confirmar = formatter.StyleHeader.Render(confirmar)
		cancelar = formatter.Dim(cancelar)
	} else {
		confirmar = formatter.Dim(confirmar)
		cancelar = formatter.StyleHeader.Render(cancelar)
	}

	var body strings.Builder
	body.WriteString(opts.Cuerpo)
	body.WriteString("\n\n")
	body.WriteString(cancelar + "  " + confirmar)
	body.WriteString("\n" + formatter.Dim("s/y: confirmar  n/esc: cancelar"))

	return formatter.RenderBox(opts.Titulo, body.String())
}
