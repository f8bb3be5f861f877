package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the event and tree output
var (
	rootStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // Cyan
	dirStyle    = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Gray
)

const (
	watchIcon   = "+"
	unwatchIcon = "-"
	errorIcon   = "✗"
)

// FormatSize formats bytes to a human readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1fTB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1fGB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
