package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
)

// pipeHuhTheme returns a huh theme using the active palette.
func pipeHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// ── field validation ─────────────────────────────────────────────────────────

// validateRequerido rejects blank input.
func validateRequerido(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("campo obligatorio")
	}
	return nil
}

// validateKilos accepts a positive decimal weight.
func validateKilos(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("ingresa un peso mayor que cero")
	}
	return nil
}

// validateSalidaMaxima builds the cross-field rule for stage-finish forms:
// the measured output can never exceed the recorded input. This runs before
// any network call; the backend re-validates anyway.
func validateSalidaMaxima(entrada float64) func(string) error {
	return func(s string) error {
		if err := validateKilos(s); err != nil {
			return err
		}
		v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if v > entrada {
			return fmt.Errorf("la salida (%.1f kg) no puede superar la entrada (%.1f kg)", v, entrada)
		}
		return nil
	}
}

// validateFecha accepts a YYYY-MM-DD date.
func validateFecha(s string) error {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("fecha en formato YYYY-MM-DD")
	}
	return nil
}

// validateEmail is a shape check, not a deliverability check.
func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 || !strings.Contains(s[at:], ".") {
		return fmt.Errorf("correo inválido")
	}
	return nil
}

// validateHora accepts an HH:MM time of day.
func validateHora(s string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("hora en formato HH:MM")
	}
	return nil
}

// parseKilos converts a validated weight field.
func parseKilos(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

// hoy returns today's date the way the backend expects intake dates.
// Rendered as a placeholder only; the server-assigned date wins after the
// refetch.
func hoy() string {
	return time.Now().Format("2006-01-02")
}
