package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fleetpool/fleetdesk/internal/core/service"
)

// View implements tea.Model.
func (model Model) View() string {
	var sections []string

	if banner := model.deps.Monitor.Banner(); banner != "" {
		style := lipgloss.NewStyle().
			Bold(true).
			Foreground(model.theme.BannerForeground).
			Background(model.theme.BannerBackground).
			Padding(0, 1)
		if model.width > 0 {
			style = style.Width(model.width)
		}
		sections = append(sections, style.Render(banner))
	}

	sections = append(sections, model.renderHeader())

	switch model.screen {
	case screenLogin, screenRegister:
		flow := model.activeDialog()
		sections = append(sections, model.form.render(model.theme, flow.SelectedRole(), flow.State() == service.StateSubmitting))
	case screenDashboard:
		sections = append(sections, model.renderDashboard())
	default:
		sections = append(sections, model.renderWelcome())
	}

	if model.secret != nil && model.secret.IsOpen() {
		sections = append(sections, model.renderSecret())
	}
	if tray := model.renderTray(); tray != "" {
		sections = append(sections, tray)
	}
	sections = append(sections, model.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (model Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render("fleetdesk")
	session, ok := model.deps.Session.Current()
	if !ok {
		return title
	}
	who := session.User.Name
	if who == "" {
		who = session.User.Email
	}
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	return title + faint.Render(fmt.Sprintf("  %s · %s", who, session.Role.Title()))
}

func (model Model) renderWelcome() string {
	body := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	return body.Render("Fractional vehicle ownership for investors, operators and drivers.\n\nSign in or create an account to continue.")
}

func (model Model) renderDashboard() string {
	var tabs []string
	role := model.deps.Session.Role()
	for i, page := range dashViews {
		label := fmt.Sprintf("%d:%s", i+1, page.title)
		style := lipgloss.NewStyle().Padding(0, 1)
		switch {
		case dashView(i) == model.view:
			style = style.Bold(true).Foreground(model.theme.ActiveTab).Underline(true)
		case !role.In(page.allow...):
			style = style.Foreground(model.theme.BorderColor)
		default:
			style = style.Foreground(model.theme.FaintText)
		}
		tabs = append(tabs, style.Render(label))
	}

	content := model.renderViewContent()
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Padding(0, 1)
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, tabs...), frame.Render(content))
}

func (model Model) renderViewContent() string {
	page := dashViews[model.view]
	if !model.admitted {
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("This page is not available for your role.")
	}
	heading := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(page.title)
	if model.view == viewCapabilities {
		return heading + "\n\n" + model.renderPanel()
	}
	return heading + "\n\n" + lipgloss.NewStyle().Foreground(model.theme.NormalText).Render(page.blurb)
}

func (model Model) renderPanel() string {
	view := model.panelView
	switch view.State {
	case service.PanelError:
		return lipgloss.NewStyle().Foreground(model.theme.Warning).Render(view.Message)
	case service.PanelLoaded:
		var lines []string
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("Role: "+view.Role.Title()))
		if len(view.Rows) == 0 {
			lines = append(lines, "No capabilities reported.")
		}
		for _, row := range view.Rows {
			mark := lipgloss.NewStyle().Foreground(model.theme.Danger).Render("✗")
			if row.Allowed {
				mark = lipgloss.NewStyle().Foreground(model.theme.Success).Render("✓")
			}
			lines = append(lines, mark+" "+row.Name)
		}
		return strings.Join(lines, "\n")
	default:
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("Loading capabilities…")
	}
}

func (model Model) renderSecret() string {
	credential := model.secret.Credential()
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var body strings.Builder
	body.WriteString(lipgloss.NewStyle().Bold(true).Foreground(model.theme.Warning).Render("Your wallet secret key") + "\n\n")
	body.WriteString(faint.Render("Address") + "\n" + credential.Address + "\n\n")
	body.WriteString(faint.Render("Secret key") + "\n" + credential.SecretKey + "\n\n")
	body.WriteString(faint.Render("This key is shown once. Copy or save it before continuing."))

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(model.theme.Warning).
		Padding(1, 2).
		Render(body.String())
}

// renderTray draws the visible notifications, oldest first.
func (model Model) renderTray() string {
	visible := model.deps.Bus.List()
	if len(visible) == 0 {
		return ""
	}
	lines := make([]string, 0, len(visible))
	for _, n := range visible {
		accent := lipgloss.NewStyle().Bold(true).Foreground(model.theme.KindColor(n.Kind))
		line := accent.Render(n.Title)
		if n.Message != "" {
			line += " " + lipgloss.NewStyle().Foreground(model.theme.NormalText).Render(n.Message)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(model.theme.BorderColor).
		PaddingLeft(1).
		Render(strings.Join(lines, "\n"))
}

func (model Model) renderHelp() string {
	keys := model.keys
	var bindings []string
	switch {
	case model.secret != nil && model.secret.IsOpen():
		bindings = helpEntries(keys.CopyKey, keys.DownloadKey, keys.Acknowledge)
	case model.inDialog():
		// The dialog draws its own hints.
		return ""
	case model.screen == screenDashboard:
		bindings = helpEntries(keys.Portfolio, keys.Fleet, keys.Shifts, keys.Console, keys.Capabilities, keys.DismissLatest, keys.Logout, keys.Quit)
	default:
		bindings = helpEntries(keys.OpenLogin, keys.OpenRegister, keys.DismissLatest, keys.Quit)
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(strings.Join(bindings, "  "))
}
