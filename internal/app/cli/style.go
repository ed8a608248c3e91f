package cli

import (
	"github.com/charmbracelet/lipgloss"

	"fastpull/internal/config"
)

// Headline - section headers
var (
	headlineLarge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginTop(1)
)

// Title - phase markers and command names
var (
	titleMedium = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
)

// Body - main content text
var (
	bodyMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0"))
)

// Label - captions and supplementary content
var (
	labelLarge = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E")).Italic(true).MarginTop(1)
)

// Semantic styles
var (
	sectionHeader = headlineLarge.MarginBottom(1)
	helpText      = labelLarge

	commandName = titleMedium
	exampleCode = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA726"))

	appNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	appVersionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BDBDBD"))
	titleWrapper    = lipgloss.NewStyle().MarginTop(1).MarginBottom(1)

	// Notice styles
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	markStyle    = titleMedium
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA726"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E53935"))
	logLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BDBDBD"))
)

// RenderTitle renders the app title block with name, version, and description
func RenderTitle() string {
	title := titleWrapper.Render(
		appNameStyle.Render(config.AppName) + appVersionStyle.Render(" v"+config.Version),
	)
	description := bodyMedium.Render(config.AppDescription)

	return lipgloss.JoinVertical(lipgloss.Left, title, description)
}

// RenderHint renders a one-line pointer to further help
func RenderHint() string {
	return helpText.Render("Run '" + config.AppName + " help' for usage")
}
