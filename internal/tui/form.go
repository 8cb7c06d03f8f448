package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/service"
)

type formKind int

const (
	formLogin formKind = iota
	formRegister
)

// authForm holds the text inputs of the login or registration dialog. The
// dialog's state machine lives in the service; this is only the markup.
type authForm struct {
	kind     formKind
	labels   []string
	inputs   []textinput.Model
	focus    int
	remember bool
}

func newInput(placeholder string, secret bool) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "› "
	input.CharLimit = 128
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	return input
}

func newLoginForm() authForm {
	form := authForm{
		kind:   formLogin,
		labels: []string{"Email", "Password"},
		inputs: []textinput.Model{
			newInput("you@example.com", false),
			newInput("password", true),
		},
	}
	form.inputs[0].Focus()
	return form
}

func newRegisterForm() authForm {
	form := authForm{
		kind:   formRegister,
		labels: []string{"Name", "Email", "Password", "Confirm password"},
		inputs: []textinput.Model{
			newInput("Full name", false),
			newInput("you@example.com", false),
			newInput("password", true),
			newInput("repeat password", true),
		},
	}
	form.inputs[0].Focus()
	return form
}

func (form *authForm) move(delta int) tea.Cmd {
	form.inputs[form.focus].Blur()
	form.focus = (form.focus + delta + len(form.inputs)) % len(form.inputs)
	return form.inputs[form.focus].Focus()
}

func (form *authForm) update(message tea.Msg) tea.Cmd {
	var command tea.Cmd
	form.inputs[form.focus], command = form.inputs[form.focus].Update(message)
	return command
}

func (form authForm) value(index int) string {
	return strings.TrimSpace(form.inputs[index].Value())
}

func (form authForm) loginForm() service.LoginForm {
	return service.LoginForm{
		Email:      form.value(0),
		Password:   form.inputs[1].Value(),
		RememberMe: form.remember,
	}
}

func (form authForm) registerForm() service.RegisterForm {
	return service.RegisterForm{
		Name:            form.value(0),
		Email:           form.value(1),
		Password:        form.inputs[2].Value(),
		ConfirmPassword: form.inputs[3].Value(),
	}
}

// nextRole cycles the requested role through every role.
func nextRole(current domain.Role) domain.Role {
	for i, r := range domain.AllRoles {
		if r == current {
			return domain.AllRoles[(i+1)%len(domain.AllRoles)]
		}
	}
	return domain.AllRoles[0]
}

func (form authForm) render(theme Theme, selected domain.Role, submitting bool) string {
	title := "Sign in"
	if form.kind == formRegister {
		title = "Create account"
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)
	label := lipgloss.NewStyle().Foreground(theme.FaintText)

	var body strings.Builder
	body.WriteString(header.Render(title) + "\n\n")
	for i, input := range form.inputs {
		body.WriteString(label.Render(form.labels[i]) + "\n")
		body.WriteString(input.View() + "\n\n")
	}

	body.WriteString(label.Render(fmt.Sprintf("Requested role: %s", selected.Title())) + "\n")
	if form.kind == formLogin {
		mark := "[ ]"
		if form.remember {
			mark = "[x]"
		}
		body.WriteString(label.Render(mark+" Remember me") + "\n")
	}

	body.WriteString("\n")
	if submitting {
		body.WriteString(lipgloss.NewStyle().Foreground(theme.Info).Render("Submitting…"))
	} else {
		help := "enter submit · tab next · C-t role · esc close"
		if form.kind == formLogin {
			help += " · C-r remember"
		}
		body.WriteString(lipgloss.NewStyle().Foreground(theme.HelpText).Render(help))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(1, 2).
		Render(body.String())
}
