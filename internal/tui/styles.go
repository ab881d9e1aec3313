package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/simonvc/libromayor/internal/ledger"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			Background(lipgloss.Color("236")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	debitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	creditStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(16)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)
)

// bucketStyle colors an aging row: overdue red, due soon amber, closed dim.
func bucketStyle(b ledger.AgingBucket) lipgloss.Style {
	switch b {
	case ledger.BucketOverdue:
		return errorStyle
	case ledger.BucketDueSoon:
		return warnStyle
	case ledger.BucketClosed:
		return dimStyle
	default:
		return lipgloss.NewStyle()
	}
}

func entryStatusStyle(s ledger.EntryStatus) lipgloss.Style {
	switch s {
	case ledger.EntryReviewed:
		return successStyle
	case ledger.EntryVoided:
		return dimStyle
	default:
		return warnStyle
	}
}
