package ui

import "github.com/charmbracelet/lipgloss"

var (
	authorStyle      = lipgloss.NewStyle().Bold(true)
	timeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	parentStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	failedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	reactionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	fileStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	headerStyle      = lipgloss.NewStyle().Bold(true).Padding(0, 1).
				Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
