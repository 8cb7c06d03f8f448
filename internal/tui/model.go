// Package tui is the terminal host of fleetdesk. It owns the session, draws
// the notification tray and the offline banner, and routes the signed-in
// user through the role-gated dashboard views.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
	"github.com/fleetpool/fleetdesk/internal/core/service"
)

// eventBuffer bounds the bus and connectivity events queued for the UI.
// Events only trigger a re-render, so dropping one when full is harmless.
const eventBuffer = 32

type screen int

const (
	screenWelcome screen = iota
	screenLogin
	screenRegister
	screenDashboard
)

// dashView is one page of the signed-in dashboard.
type dashView int

const (
	viewPortfolio dashView = iota
	viewFleet
	viewShifts
	viewConsole
	viewCapabilities
)

type viewSpec struct {
	title string
	blurb string
	allow []domain.Role
}

var dashViews = []viewSpec{
	viewPortfolio: {
		title: "Portfolio",
		blurb: "Your vehicle shares, payouts and projected returns.",
		allow: []domain.Role{domain.RoleInvestor, domain.RoleAdmin},
	},
	viewFleet: {
		title: "Fleet",
		blurb: "Vehicles under management, utilisation and maintenance.",
		allow: []domain.Role{domain.RoleOperator, domain.RoleAdmin},
	},
	viewShifts: {
		title: "Shifts",
		blurb: "Upcoming shifts, assigned vehicles and earnings.",
		allow: []domain.Role{domain.RoleDriver, domain.RoleAdmin},
	},
	viewConsole: {
		title: "Console",
		blurb: "Platform-wide administration.",
		allow: []domain.Role{domain.RoleAdmin},
	},
	viewCapabilities: {
		title: "Capabilities",
		allow: domain.AllRoles,
	},
}

// homeView is where a freshly signed-in role lands.
func homeView(role domain.Role) dashView {
	switch role {
	case domain.RoleOperator:
		return viewFleet
	case domain.RoleDriver:
		return viewShifts
	case domain.RoleAdmin:
		return viewConsole
	default:
		return viewPortfolio
	}
}

// Deps are the collaborators the host is built from. Wallets may be nil
// when the platform client never issues credentials.
type Deps struct {
	Context       context.Context
	Auth          ports.AuthClient
	Capabilities  ports.CapabilityClient
	Wallets       ports.WalletIssuer
	Clipboard     ports.Clipboard
	Files         ports.FileSaver
	Bus           *service.NotificationBus
	Monitor       *service.ConnectivityMonitor
	Session       *service.SessionStore
	Gate          *service.RoleGate
	SuggestedRole domain.Role
	Log           zerolog.Logger
}

// dialog is the part of the login and registration flows the host drives.
type dialog interface {
	Open()
	Close()
	CanSubmit() bool
	State() service.FlowState
	SetSuggestedRole(domain.Role)
	SelectRole(domain.Role)
	SelectedRole() domain.Role
}

// Messages produced by commands and event sources.
type (
	busMsg          struct{}
	connectivityMsg struct{ online bool }
	authResultMsg   struct {
		kind    formKind
		outcome service.Outcome
	}
	panelMsg struct {
		panel *service.CapabilityPanel
		view  service.PanelView
	}
	logoutMsg struct{ err error }
)

// Model is the root bubbletea model.
type Model struct {
	ctx   context.Context
	deps  Deps
	keys  KeyMap
	theme Theme
	log   zerolog.Logger

	login    *service.LoginDialog
	register *service.RegisterDialog
	secret   *service.SecretKeyModal
	panel    *service.CapabilityPanel

	screen    screen
	view      dashView
	admitted  bool
	panelView service.PanelView
	form      authForm

	events chan tea.Msg
	detach func()

	width  int
	height int
}

// NewModel builds the host and subscribes it to the bus and the
// connectivity monitor. Call Close once the program has exited.
func NewModel(deps Deps) Model {
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := deps.Log.With().Str("component", "tui").Logger()

	bus, session := deps.Bus, deps.Session
	login := service.NewLoginDialog(deps.Auth, bus, func(role domain.Role, user domain.User) {
		session.Set(role, user)
		bus.Publish(service.SignedIn(role))
	}, log)
	register := service.NewRegisterDialog(deps.Auth, bus, session.Set, log)

	events := make(chan tea.Msg, eventBuffer)
	unsubscribe := bus.Subscribe(func(service.BusEvent) { push(events, busMsg{}) })
	cancel := deps.Monitor.OnChange(func(online bool) { push(events, connectivityMsg{online: online}) })

	return Model{
		ctx:      ctx,
		deps:     deps,
		keys:     DefaultKeyMap,
		theme:    DefaultTheme,
		log:      log,
		login:    login,
		register: register,
		screen:   screenWelcome,
		events:   events,
		detach: func() {
			unsubscribe()
			cancel()
		},
	}
}

// push delivers msg without blocking. Bus callbacks run inside Update, so
// blocking here could stall the program.
func push(events chan<- tea.Msg, msg tea.Msg) {
	select {
	case events <- msg:
	default:
	}
}

// Close detaches the model from the bus and the monitor.
func (model Model) Close() {
	if model.detach != nil {
		model.detach()
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return listen(model.events)
}

// listen returns a tea.Cmd that blocks until an event arrives and then
// delivers it.
func listen(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case busMsg, connectivityMsg:
		return model, listen(model.events)

	case authResultMsg:
		return model.handleAuthResult(message)

	case panelMsg:
		// A result for a panel that was left in the meantime is dropped.
		if message.panel == model.panel {
			model.panelView = message.view
		}
		return model, nil

	case logoutMsg:
		model.screen = screenWelcome
		model.panel = nil
		model.secret = nil
		model.deps.Bus.Publish(service.Info("Signed out", "You have been signed out."))
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)
	}

	if model.inDialog() {
		return model, model.form.update(message)
	}
	return model, nil
}

func (model Model) inDialog() bool {
	return model.screen == screenLogin || model.screen == screenRegister
}

func (model Model) activeDialog() dialog {
	if model.screen == screenRegister {
		return model.register
	}
	return model.login
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits; a plain q may be text typed into a field.
	if message.Type == tea.KeyCtrlC {
		return model, tea.Quit
	}
	if model.secret != nil && model.secret.IsOpen() {
		return model.handleSecretKeys(message)
	}

	switch model.screen {
	case screenLogin, screenRegister:
		return model.handleDialogKeys(message)
	case screenDashboard:
		return model.handleDashboardKeys(message)
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.OpenLogin):
		return model.openDialog(screenLogin)
	case key.Matches(message, model.keys.OpenRegister):
		return model.openDialog(screenRegister)
	case key.Matches(message, model.keys.DismissLatest):
		model.dismissLatest()
	}
	return model, nil
}

func (model Model) openDialog(target screen) (tea.Model, tea.Cmd) {
	model.screen = target
	if target == screenRegister {
		model.form = newRegisterForm()
	} else {
		model.form = newLoginForm()
	}
	flow := model.activeDialog()
	flow.SetSuggestedRole(model.deps.SuggestedRole)
	flow.Open()
	return model, textinput.Blink
}

func (model Model) handleDialogKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	flow := model.activeDialog()
	switch {
	case key.Matches(message, model.keys.Cancel):
		flow.Close()
		model.screen = screenWelcome
		return model, nil
	case key.Matches(message, model.keys.NextField):
		return model, model.form.move(1)
	case key.Matches(message, model.keys.PrevField):
		return model, model.form.move(-1)
	case key.Matches(message, model.keys.CycleRole):
		flow.SelectRole(nextRole(flow.SelectedRole()))
		return model, nil
	case key.Matches(message, model.keys.ToggleRemember) && model.form.kind == formLogin:
		model.form.remember = !model.form.remember
		return model, nil
	case key.Matches(message, model.keys.Submit):
		return model, model.submit()
	}
	return model, model.form.update(message)
}

// submit runs the dialog's submission as a command. The dialog itself
// rejects a second submission while one is in flight.
func (model Model) submit() tea.Cmd {
	if !model.activeDialog().CanSubmit() {
		return nil
	}
	ctx := model.ctx
	if model.form.kind == formRegister {
		form, flow := model.form.registerForm(), model.register
		return func() tea.Msg {
			return authResultMsg{kind: formRegister, outcome: flow.Submit(ctx, form)}
		}
	}
	form, flow := model.form.loginForm(), model.login
	return func() tea.Msg {
		return authResultMsg{kind: formLogin, outcome: flow.Submit(ctx, form)}
	}
}

func (model Model) handleAuthResult(message authResultMsg) (tea.Model, tea.Cmd) {
	if message.outcome.State != service.StateResolved {
		// Failures were already announced on the bus; the dialog stays
		// open for another attempt.
		return model, nil
	}

	model.screen = screenDashboard
	if message.kind == formRegister && model.deps.Wallets != nil {
		if credential, ok := model.deps.Wallets.IssuedCredential(); ok {
			model.secret = service.NewSecretKeyModal(credential, model.deps.Clipboard, model.deps.Files, model.deps.Bus, model.log)
		}
	}
	return model.enterView(homeView(message.outcome.Role))
}

func (model Model) handleDashboardKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Portfolio):
		return model.enterView(viewPortfolio)
	case key.Matches(message, model.keys.Fleet):
		return model.enterView(viewFleet)
	case key.Matches(message, model.keys.Shifts):
		return model.enterView(viewShifts)
	case key.Matches(message, model.keys.Console):
		return model.enterView(viewConsole)
	case key.Matches(message, model.keys.Capabilities):
		return model.enterView(viewCapabilities)
	case key.Matches(message, model.keys.DismissLatest):
		model.dismissLatest()
	case key.Matches(message, model.keys.Logout):
		session, ctx := model.deps.Session, model.ctx
		return model, func() tea.Msg {
			return logoutMsg{err: session.Logout(ctx)}
		}
	}
	return model, nil
}

// enterView navigates to v. The gate is evaluated once per entry, and
// entering the capability view mounts a fresh panel.
func (model Model) enterView(v dashView) (tea.Model, tea.Cmd) {
	model.view = v
	model.panel = nil

	role := model.deps.Session.Role()
	model.admitted = model.deps.Gate.Admit(role, dashViews[v].allow...)
	if !model.admitted || v != viewCapabilities {
		return model, nil
	}

	panel := service.NewCapabilityPanel(model.deps.Capabilities, role, model.log)
	model.panel = panel
	model.panelView = panel.View()
	ctx := model.ctx
	return model, func() tea.Msg {
		return panelMsg{panel: panel, view: panel.Mount(ctx)}
	}
}

func (model Model) handleSecretKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	secret, ctx := model.secret, model.ctx
	switch {
	case key.Matches(message, model.keys.CopyKey):
		return model, func() tea.Msg {
			secret.Copy(ctx)
			return nil
		}
	case key.Matches(message, model.keys.DownloadKey):
		return model, func() tea.Msg {
			secret.Download()
			return nil
		}
	case key.Matches(message, model.keys.Acknowledge):
		secret.Acknowledge()
		model.secret = nil
	}
	return model, nil
}

// dismissLatest removes the most recently published notification.
func (model Model) dismissLatest() {
	visible := model.deps.Bus.List()
	if len(visible) == 0 {
		return
	}
	model.deps.Bus.Dismiss(visible[len(visible)-1].ID)
}
