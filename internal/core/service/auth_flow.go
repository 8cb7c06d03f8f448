package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
	"github.com/fleetpool/fleetdesk/internal/pkg/validate"
)

// FlowState is the state of a sign-in dialog.
type FlowState string

const (
	StateIdle       FlowState = "idle"
	StateSubmitting FlowState = "submitting"
	StateResolved   FlowState = "resolved"
	StateFailed     FlowState = "failed"
)

// Notification titles used by the sign-in flows.
const (
	TitleSignedIn           = "Welcome back"
	TitleAccountCreated     = "Account created"
	TitleSignInFailed       = "Sign in failed"
	TitleRegistrationFailed = "Registration failed"
)

// SuccessFunc receives the authoritative role and user once a dialog
// resolves. The hosting application stores them as its session.
type SuccessFunc func(role domain.Role, user domain.User)

// Outcome reports how a submission ended. State is StateResolved or
// StateFailed; a form rejected locally reports StateIdle with Err set, and
// a duplicate submit reports StateSubmitting with ErrSubmitInFlight.
type Outcome struct {
	State FlowState
	Role  domain.Role
	User  domain.User
	Err   error
}

// authFlow is the state machine shared by the login and registration
// dialogs: Idle -> Submitting -> Resolved | Failed, where Failed falls back
// to Idle so the user can retry.
type authFlow struct {
	kind      string
	auth      ports.AuthClient
	bus       ports.Notifier
	onSuccess SuccessFunc
	validator *validate.Validator
	log       zerolog.Logger

	mu       sync.Mutex
	state    FlowState
	open     bool
	hint     domain.Role
	selected domain.Role
}

func newAuthFlow(kind string, auth ports.AuthClient, bus ports.Notifier, onSuccess SuccessFunc, log zerolog.Logger) *authFlow {
	return &authFlow{
		kind:      kind,
		auth:      auth,
		bus:       bus,
		onSuccess: onSuccess,
		validator: validate.New(),
		log:       log.With().Str("dialog", kind).Logger(),
		state:     StateIdle,
		selected:  domain.RoleInvestor,
	}
}

// Open shows the dialog and resets it to Idle.
func (f *authFlow) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	if f.state != StateSubmitting {
		f.state = StateIdle
	}
}

// Close hides the dialog.
func (f *authFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// IsOpen reports whether the dialog is shown.
func (f *authFlow) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// State returns the current state.
func (f *authFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CanSubmit is false only while a submission is in flight.
func (f *authFlow) CanSubmit() bool {
	return f.State() != StateSubmitting
}

// SetSuggestedRole applies a caller hint. A changed hint pre-selects the
// role field; repeating the same hint keeps the user's own choice.
func (f *authFlow) SetSuggestedRole(role domain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if role == f.hint {
		return
	}
	f.hint = role
	if role.Valid() {
		f.selected = role
	}
}

// SelectRole records the user's choice in the role field. Invalid values
// are ignored.
func (f *authFlow) SelectRole(role domain.Role) {
	if !role.Valid() {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = role
}

// SelectedRole returns the role that will be requested on submit.
func (f *authFlow) SelectedRole() domain.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// checkForm validates form locally and publishes a warning on failure.
func (f *authFlow) checkForm(form any) error {
	if err := f.validator.Validate(form); err != nil {
		f.bus.Publish(Warning("Check the form", err.Error()))
		return err
	}
	return nil
}

// begin moves Idle -> Submitting. It fails when a submission is already in
// flight so the trigger cannot fire twice.
func (f *authFlow) begin() (domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return domain.RoleNone, domain.ErrSubmitInFlight
	}
	f.state = StateSubmitting
	return f.selected, nil
}

// resolve runs the credential call then the "current user" lookup. The
// role always comes from the lookup, never from the form.
func (f *authFlow) resolve(ctx context.Context, submit func(context.Context) error) (domain.Role, domain.User, error) {
	if err := submit(ctx); err != nil {
		return domain.RoleNone, domain.User{}, fmt.Errorf("%s: %w", f.kind, err)
	}
	user, err := f.auth.CurrentUser(ctx)
	if err != nil {
		return domain.RoleNone, domain.User{}, fmt.Errorf("%s: current user: %w", f.kind, err)
	}
	return domain.ResolveRole(user.Role), user, nil
}

// finish applies the result of resolve: on success it hands the session
// to the host and closes the dialog; on failure it publishes a danger
// notification and returns to Idle.
func (f *authFlow) finish(role domain.Role, user domain.User, err error, failTitle, fallback string) Outcome {
	if err != nil {
		f.mu.Lock()
		f.state = StateIdle
		f.mu.Unlock()

		f.log.Warn().Err(err).Msg("sign-in rejected")
		f.bus.Publish(Danger(failTitle, domain.UserMessage(err, fallback)))
		return Outcome{State: StateFailed, Err: err}
	}

	f.mu.Lock()
	f.state = StateResolved
	f.mu.Unlock()

	f.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("session resolved")
	if f.onSuccess != nil {
		f.onSuccess(role, user)
	}
	f.Close()
	return Outcome{State: StateResolved, Role: role, User: user}
}

// LoginForm is the content of the login dialog.
type LoginForm struct {
	Email      string `validate:"required,email" label:"email"`
	Password   string `validate:"required" label:"password"`
	RememberMe bool
}

// LoginDialog drives credential submission for existing accounts. It does
// not announce success itself; the host reacts to the callback.
type LoginDialog struct {
	*authFlow
}

// NewLoginDialog returns a closed, idle login dialog.
func NewLoginDialog(auth ports.AuthClient, bus ports.Notifier, onSuccess SuccessFunc, log zerolog.Logger) *LoginDialog {
	return &LoginDialog{authFlow: newAuthFlow("login", auth, bus, onSuccess, log)}
}

// Submit signs in with form.
func (d *LoginDialog) Submit(ctx context.Context, form LoginForm) Outcome {
	if err := d.checkForm(form); err != nil {
		return Outcome{State: StateIdle, Err: err}
	}
	role, err := d.begin()
	if err != nil {
		return Outcome{State: StateSubmitting, Err: err}
	}

	resolved, user, err := d.resolve(ctx, func(ctx context.Context) error {
		return d.auth.Login(ctx, ports.LoginInput{
			Email:      form.Email,
			Password:   form.Password,
			RememberMe: form.RememberMe,
			Role:       role,
		})
	})
	return d.finish(resolved, user, err, TitleSignInFailed, "Invalid credentials")
}

// RegisterForm is the content of the registration dialog.
type RegisterForm struct {
	Name            string `validate:"required" label:"name"`
	Email           string `validate:"required,email" label:"email"`
	Password        string `validate:"required" label:"password"`
	ConfirmPassword string `label:"password confirmation"`
}

// RegisterDialog creates an account and signs it in.
type RegisterDialog struct {
	*authFlow
}

// NewRegisterDialog returns a closed, idle registration dialog.
func NewRegisterDialog(auth ports.AuthClient, bus ports.Notifier, onSuccess SuccessFunc, log zerolog.Logger) *RegisterDialog {
	return &RegisterDialog{authFlow: newAuthFlow("register", auth, bus, onSuccess, log)}
}

// Submit registers with form. A password confirmation mismatch is caught
// before anything else and never reaches the platform.
func (d *RegisterDialog) Submit(ctx context.Context, form RegisterForm) Outcome {
	if form.Password != form.ConfirmPassword {
		d.bus.Publish(Warning("Check your password", "Passwords do not match"))
		return Outcome{State: StateIdle, Err: domain.ErrPasswordMismatch}
	}
	if err := d.checkForm(form); err != nil {
		return Outcome{State: StateIdle, Err: err}
	}
	role, err := d.begin()
	if err != nil {
		return Outcome{State: StateSubmitting, Err: err}
	}

	resolved, user, err := d.resolve(ctx, func(ctx context.Context) error {
		return d.auth.Register(ctx, ports.RegisterInput{
			Name:     form.Name,
			Email:    form.Email,
			Password: form.Password,
			Role:     role,
		})
	})
	out := d.finish(resolved, user, err, TitleRegistrationFailed, "Unable to register")
	if out.State == StateResolved {
		d.bus.Publish(Success(TitleAccountCreated, welcomeMessage(user)))
	}
	return out
}

func welcomeMessage(user domain.User) string {
	if user.Name == "" {
		return "Your account is ready."
	}
	return fmt.Sprintf("Welcome aboard, %s. Your account is ready.", user.Name)
}

// SignedIn is the notification the host publishes after a login resolves.
// Login never publishes it itself, so a host that reacts differently does not
// announce success twice.
func SignedIn(role domain.Role) domain.Notification {
	return Success(TitleSignedIn, "Signed in as "+role.Title())
}

// IsInFlight reports whether err is the duplicate-submission rejection.
func IsInFlight(err error) bool {
	return errors.Is(err, domain.ErrSubmitInFlight)
}
