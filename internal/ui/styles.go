package ui

import "github.com/charmbracelet/lipgloss"

// Icon constants
const (
	WhiteManIcon  = "⛀"
	WhiteKingIcon = "⛁"
	BlackManIcon  = "⛂"
	BlackKingIcon = "⛃"
	TurnIcon      = "👉"
)

// Lipgloss Styles
var (
	docStyle      = lipgloss.NewStyle().Margin(1, 2)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle   = lipgloss.NewStyle().MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	darkSquare    = lipgloss.NewStyle().Background(lipgloss.Color("94")).Foreground(lipgloss.Color("231"))
	lightSquare   = lipgloss.NewStyle().Background(lipgloss.Color("223")).Foreground(lipgloss.Color("16"))
	lastMoveStyle = lipgloss.NewStyle().Background(lipgloss.Color("28")).Foreground(lipgloss.Color("231"))
)
