package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used for text-mode output.
type Styles struct {
	Header        lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Info          lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	ModelPath     lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds the style set. When colored is false every style is a
// no-op passthrough, keeping piped output free of ANSI codes.
func NewStyles(colored bool) *Styles {
	if !colored {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header:        plain,
			Bold:          plain,
			Muted:         plain,
			Info:          plain,
			Success:       plain,
			Warning:       plain,
			Error:         plain,
			ModelPath:     plain,
			StatusSuccess: plain,
			StatusFailed:  plain,
		}
	}
	return &Styles{
		Header:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Success:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		ModelPath:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}
