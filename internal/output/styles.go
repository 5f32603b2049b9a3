package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	BannerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	SpeakerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	DividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Verdict outcomes
	PassStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	FailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	categoryStyles = map[string]lipgloss.Style{
		debatewire.CategoryBreaking:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		debatewire.CategoryConspiracy: lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
		debatewire.CategoryTechnical:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		debatewire.CategoryStrategy:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		debatewire.CategoryPrediction: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		debatewire.CategoryHistorical: lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
	}
)

// StyleForCategory returns the badge style of a feed category.
func StyleForCategory(category string) lipgloss.Style {
	if s, ok := categoryStyles[category]; ok {
		return s
	}
	return MutedStyle
}

// StyleForOutcome colors a verdict outcome.
func StyleForOutcome(outcome string) lipgloss.Style {
	switch outcome {
	case "pass", "PASS", "VALIDATED", "validated":
		return PassStyle
	case "fail", "FAIL", "REJECTED", "rejected":
		return FailStyle
	default:
		return WarningStyle
	}
}

// StyleForState colors a connection state indicator.
func StyleForState(s debatewire.ConnectionState) lipgloss.Style {
	switch s {
	case debatewire.StateConnected:
		return SuccessStyle
	case debatewire.StateConnecting, debatewire.StateReconnecting:
		return WarningStyle
	case debatewire.StateClosed:
		return MutedStyle
	default:
		return ErrorStyle
	}
}
