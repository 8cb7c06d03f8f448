package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
)

// Theme defines the color palette for the fleetdesk terminal UI. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Notification kinds.
	Success lipgloss.Color
	Info    lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color

	// Offline banner.
	BannerForeground lipgloss.Color
	BannerBackground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	ActiveTab        lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
}

// KindColor returns the accent color for a notification kind.
func (theme Theme) KindColor(kind domain.NotificationKind) lipgloss.Color {
	switch kind {
	case domain.KindSuccess:
		return theme.Success
	case domain.KindWarning:
		return theme.Warning
	case domain.KindDanger:
		return theme.Danger
	default:
		return theme.Info
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	Success: lipgloss.Color("114"), // green
	Info:    lipgloss.Color("75"),  // blue
	Warning: lipgloss.Color("220"), // amber
	Danger:  lipgloss.Color("196"), // red

	BannerForeground: lipgloss.Color("255"),
	BannerBackground: lipgloss.Color("52"), // dark red

	HeaderForeground: lipgloss.Color("255"),
	ActiveTab:        lipgloss.Color("141"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
}
