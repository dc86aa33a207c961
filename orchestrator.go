package walletauth

import (
	"context"
	"net/url"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// ContinueWithEmail is the continuation literal a magic-link redirect must
// carry for email auth completion.
const ContinueWithEmail = "email"

const (
	defaultDashboardRoute = "/dashboard"
	defaultProfileRoute   = "/dashboard/user/profile"
	defaultEmailAuthRoute = "/email-authorization"
	defaultHomeRoute      = "/"
)

// CompleteEmailAuthRequest carries the three values a magic-link redirect
// delivers. All are required and ContinueWith must equal ContinueWithEmail.
type CompleteEmailAuthRequest struct {
	Email            string `json:"email"`
	ContinueWith     string `json:"continue_with"`
	CredentialBundle string `json:"credential_bundle"`
}

// LogoutResult reports both outcomes of a logout: the local session is
// always cleared, the remote invalidation is best-effort.
type LogoutResult struct {
	RemoteInvalidated bool
	RemoteErr         error
}

// Orchestrator drives every supported login/signup path to a terminal state:
// an authenticated session or a reported error. It holds a single mutable
// FlowState; one operation is expected in flight at a time and a concurrent
// call is rejected with ErrOperationInFlight rather than interleaved.
type Orchestrator struct {
	manager      KeyManager
	directory    Directory
	resolver     *Resolver
	materializer *Materializer
	passkeys     PasskeyClient
	wallet       WalletClient
	injector     CredentialInjector
	navigator    Navigator
	flow         FlowStateMachine
	activitySink ActivitySink
	logger       Logger

	redirectTemplate string
	dashboardRoute   string
	profileRoute     string
	emailAuthRoute   string
	homeRoute        string

	mu       sync.Mutex
	state    FlowState
	inFlight bool
}

// NewOrchestrator returns an Orchestrator wired to the given collaborators.
// Ceremony clients (passkey, wallet, credential injector) attach through the
// With* setters since not every deployment carries all three.
func NewOrchestrator(manager KeyManager, directory Directory, store SessionStore, opts Config) *Orchestrator {
	o := &Orchestrator{
		manager:      manager,
		directory:    directory,
		resolver:     NewResolver(manager),
		materializer: NewMaterializer(store),
		navigator:    noopNavigator{},
		flow:         NewFlowStateMachine(),
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		state:        FlowState{Status: FlowIdle},

		dashboardRoute: defaultDashboardRoute,
		profileRoute:   defaultProfileRoute,
		emailAuthRoute: defaultEmailAuthRoute,
		homeRoute:      defaultHomeRoute,
	}

	if opts != nil {
		o.redirectTemplate = opts.GetRedirectTemplate()
		if r := opts.GetDashboardRoute(); r != "" {
			o.dashboardRoute = r
		}
		if r := opts.GetProfileRoute(); r != "" {
			o.profileRoute = r
		}
		if r := opts.GetEmailAuthRoute(); r != "" {
			o.emailAuthRoute = r
		}
		if r := opts.GetHomeRoute(); r != "" {
			o.homeRoute = r
		}
	}

	return o
}

func (o *Orchestrator) WithLogger(logger Logger) *Orchestrator {
	if logger != nil {
		o.logger = logger
		o.resolver.WithLogger(logger)
		o.materializer.WithLogger(logger)
	}
	return o
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (o *Orchestrator) WithActivitySink(sink ActivitySink) *Orchestrator {
	o.activitySink = normalizeActivitySink(sink)
	return o
}

// WithPasskeyClient attaches the ambient passkey ceremony client.
func (o *Orchestrator) WithPasskeyClient(client PasskeyClient) *Orchestrator {
	o.passkeys = client
	return o
}

// WithWalletClient attaches the ambient wallet-signing context.
func (o *Orchestrator) WithWalletClient(client WalletClient) *Orchestrator {
	o.wallet = client
	return o
}

// WithCredentialInjector attaches the signing context magic-link auth
// completes into.
func (o *Orchestrator) WithCredentialInjector(injector CredentialInjector) *Orchestrator {
	o.injector = injector
	return o
}

// WithNavigator attaches the route-change side effect receiver.
func (o *Orchestrator) WithNavigator(nav Navigator) *Orchestrator {
	if nav != nil {
		o.navigator = nav
	}
	return o
}

// WithFlowStateMachine overrides the transition graph implementation.
func (o *Orchestrator) WithFlowStateMachine(flow FlowStateMachine) *Orchestrator {
	if flow != nil {
		o.flow = flow
	}
	return o
}

// State returns a copy of the current flow state.
func (o *Orchestrator) State() FlowState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// CurrentUser returns the authenticated user, or nil.
func (o *Orchestrator) CurrentUser() *User {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.User
}

// Hydrate restores a previously committed session into orchestrator state.
// Intended for page-load bootstrapping; a missing session is not an error.
func (o *Orchestrator) Hydrate(ctx context.Context) (*User, error) {
	user, err := o.materializer.Hydrate(ctx)
	if err != nil || user == nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = FlowState{Status: FlowAuthenticated, User: user}
	return user, nil
}

// InitiateEmailLogin asks the key-management service to send a one-time
// magic link bound to the local signing context's public key, then parks the
// flow in the awaiting-email state and navigates to the confirmation route.
func (o *Orchestrator) InitiateEmailLogin(ctx context.Context, email string) error {
	if err := o.begin(ctx); err != nil {
		return err
	}

	if err := validateEmail(email); err != nil {
		return o.fail(ctx, "email.initiate", err, actorEmail(email))
	}

	if o.injector == nil {
		return o.fail(ctx, "email.initiate", missingCollaborator("credential injector"), actorEmail(email))
	}

	if err := o.manager.SendEmailAuthLink(ctx, email, o.injector.TargetPublicKey(), o.redirectTemplate); err != nil {
		return o.fail(ctx, "email.initiate", wrapService(err, "failed to send email auth link"), actorEmail(email))
	}

	o.mu.Lock()
	o.flow.Transition(ctx, &o.state, FlowAwaitingEmail)
	o.inFlight = false
	o.mu.Unlock()

	o.emit(ctx, ActivityEventEmailAuthInitiated, actorEmail(email), "", "", map[string]any{
		"email": email,
	})
	o.navigator.Navigate(o.emailAuthRoute + "?userEmail=" + url.QueryEscape(email))

	return nil
}

// CompleteEmailAuth injects the one-time credential bundle and requests a
// read-write session keyed by the signing context's public key. It returns a
// success flag rather than failing hard: a broken bundle must only disable
// the next-step UI, never abort page rendering.
//
// Auth completion and profile completion are deliberately split: a
// sub-organization can exist before a durable username is chosen, so on
// success the flow navigates to the profile-completion route whenever the
// directory record has no username yet.
func (o *Orchestrator) CompleteEmailAuth(ctx context.Context, req CompleteEmailAuthRequest) (bool, error) {
	if req.Email == "" || req.CredentialBundle == "" || req.ContinueWith != ContinueWithEmail {
		err := ErrInvalidInput.WithMetadata(map[string]any{
			"reason": "email, continuation mode, and credential bundle are all required",
		})
		o.recordError(ctx, err)
		return false, err
	}

	if err := o.begin(ctx); err != nil {
		return false, err
	}

	if o.injector == nil {
		return false, o.fail(ctx, "email.complete", missingCollaborator("credential injector"), actorEmail(req.Email))
	}

	if err := o.injector.InjectCredentialBundle(ctx, req.CredentialBundle); err != nil {
		return false, o.fail(ctx, "email.complete", wrapService(err, "failed to inject credential bundle"), actorEmail(req.Email))
	}

	resp, err := o.injector.ReadWriteSessionLogin(ctx, o.injector.TargetPublicKey())
	if err != nil {
		return false, o.fail(ctx, "email.complete", wrapService(err, "read-write session login failed"), actorEmail(req.Email))
	}

	account, err := o.directory.FetchDetails(ctx, req.Email)
	if err != nil && !IsAccountNotFound(err) {
		return false, o.fail(ctx, "email.complete", wrapService(err, "directory lookup failed"), actorEmail(req.Email))
	}

	if account != nil && account.OrganizationID != "" && account.OrganizationID != resp.OrganizationID {
		return false, o.fail(ctx, "email.complete", ErrOrganizationMismatch.WithMetadata(map[string]any{
			"expected": account.OrganizationID,
			"got":      resp.OrganizationID,
		}), actorEmail(req.Email))
	}

	user, err := o.materializer.Materialize(mergeAccount(*resp, account), AuthClientIframe)
	if err != nil {
		return false, o.fail(ctx, "email.complete", err, actorEmail(req.Email))
	}

	if err := o.materializer.Commit(ctx, user); err != nil {
		return false, o.failPartial(ctx, "email.complete", err, user)
	}

	route := o.profileRoute
	if account.HasUsername() {
		route = o.dashboardRoute
	}

	o.succeed(ctx, ActivityEventEmailAuthCompleted, user, route)
	return true, nil
}

// LoginWithPasskey resolves the identifier (email or username), verifies a
// passkey is registered, runs the assertion ceremony, and cross-checks the
// returned organization id against the directory-stored owner before
// accepting the login.
func (o *Orchestrator) LoginWithPasskey(ctx context.Context, identifier string) error {
	if err := o.begin(ctx); err != nil {
		return err
	}

	id := ParseIdentifier(identifier)
	if id.IsZero() {
		return o.fail(ctx, "passkey.login", ErrInvalidInput.WithMetadata(map[string]any{
			"reason": "identifier is required",
		}), ActorRef{Type: "unknown"})
	}

	if o.passkeys == nil {
		return o.fail(ctx, "passkey.login", missingCollaborator("passkey client"), actorIdentifier(id))
	}

	field, _ := id.DirectoryField()
	exists, account, err := o.directory.Exists(ctx, field, id.Value())
	if err != nil {
		return o.fail(ctx, "passkey.login", wrapService(err, "directory lookup failed"), actorIdentifier(id))
	}
	if !exists || account == nil {
		return o.fail(ctx, "passkey.login", ErrAccountNotFound.WithMetadata(map[string]any{
			"identifier": id.Value(),
		}), actorIdentifier(id))
	}

	orgID, err := o.resolver.SubOrganizationID(ctx, id)
	if err != nil {
		return o.fail(ctx, "passkey.login", err, actorIdentifier(id))
	}
	if orgID == "" {
		return o.fail(ctx, "passkey.login", ErrAccountNotFound.WithMetadata(map[string]any{
			"identifier": id.Value(),
			"reason":     "no sub-organization for identifier",
		}), actorIdentifier(id))
	}

	// No spurious ceremony prompt for accounts that cannot complete it.
	if !account.HasPasskey {
		return o.fail(ctx, "passkey.login", ErrNoPasskeyRegistered.WithMetadata(map[string]any{
			"identifier": id.Value(),
		}), actorIdentifier(id))
	}

	resp, err := o.passkeys.Login(ctx)
	if err != nil {
		return o.fail(ctx, "passkey.login", wrapService(err, "passkey ceremony failed"), actorIdentifier(id))
	}

	// Trusted-but-verify: a valid passkey for organization A must not be
	// accepted for an account record pointing to organization B.
	if resp.OrganizationID != account.OrganizationID {
		return o.fail(ctx, "passkey.login", ErrOrganizationMismatch.WithMetadata(map[string]any{
			"expected": account.OrganizationID,
			"got":      resp.OrganizationID,
		}), actorIdentifier(id))
	}

	user, err := o.materializer.Materialize(mergeAccount(*resp, account), AuthClientPasskey)
	if err != nil {
		return o.fail(ctx, "passkey.login", err, actorIdentifier(id))
	}

	if err := o.materializer.Commit(ctx, user); err != nil {
		return o.failPartial(ctx, "passkey.login", err, user)
	}

	o.succeed(ctx, ActivityEventPasskeyLogin, user, o.dashboardRoute)
	return nil
}

// SignupWithPasskey claims the username, runs the passkey creation ceremony,
// creates a sub-organization seeded with that credential and a default
// wallet, and persists the directory record. Each step can independently
// fail and aborts the remainder; a failure after sub-organization creation
// is reported as a partial failure since the external service exposes no
// compensating transaction.
func (o *Orchestrator) SignupWithPasskey(ctx context.Context, email, username string) error {
	if err := o.begin(ctx); err != nil {
		return err
	}

	actor := actorEmail(email)

	if err := validateEmail(email); err != nil {
		return o.fail(ctx, "passkey.signup", err, actor)
	}
	if err := validateUsername(username); err != nil {
		return o.fail(ctx, "passkey.signup", err, actor)
	}

	if o.passkeys == nil {
		return o.fail(ctx, "passkey.signup", missingCollaborator("passkey client"), actor)
	}

	// The conflict check runs before any key-management call so a
	// known-duplicate name never strands an orphaned sub-organization.
	taken, _, err := o.directory.Exists(ctx, FieldUsername, username)
	if err != nil {
		return o.fail(ctx, "passkey.signup", wrapService(err, "username check failed"), actor)
	}
	if taken {
		return o.fail(ctx, "passkey.signup", ErrDuplicateEntry.WithMetadata(map[string]any{
			"username": username,
		}), actor)
	}

	credential, err := o.passkeys.CreateUserPasskey(ctx, email)
	if err != nil {
		return o.fail(ctx, "passkey.signup", wrapService(err, "passkey creation ceremony failed"), actor)
	}

	result, err := o.manager.CreateSubOrganization(ctx, CreateSubOrganizationRequest{
		Email:    email,
		Username: username,
		Passkey:  credential,
	})
	if err != nil {
		return o.fail(ctx, "passkey.signup", wrapService(err, "sub-organization creation failed"), actor)
	}

	account := &Account{
		Username:         username,
		Email:            email,
		OrganizationID:   result.SubOrganizationID,
		OrganizationName: result.SubOrganizationName,
		WalletAddress:    result.WalletAddress,
		HasPasskey:       true,
	}

	created, err := o.directory.Create(ctx, account)
	if err != nil {
		return o.failOrphaned(ctx, "passkey.signup", err, result.SubOrganizationID, actor)
	}

	user, err := o.materializer.Materialize(LoginResponse{
		OrganizationID:   result.SubOrganizationID,
		OrganizationName: result.SubOrganizationName,
		UserID:           created.ID.String(),
		Username:         created.Username,
	}, AuthClientPasskey)
	if err != nil {
		return o.fail(ctx, "passkey.signup", err, actor)
	}
	user.WalletAddress = created.WalletAddress

	if err := o.materializer.Commit(ctx, user); err != nil {
		return o.failPartial(ctx, "passkey.signup", err, user)
	}

	o.succeed(ctx, ActivityEventPasskeySignup, user, o.dashboardRoute)
	return nil
}

// LoginWithWallet resolves the ambient wallet's public key to a
// sub-organization and performs a signature-based login, or creates a new
// sub-organization keyed by the public key when none exists.
func (o *Orchestrator) LoginWithWallet(ctx context.Context) error {
	if err := o.begin(ctx); err != nil {
		return err
	}

	if o.wallet == nil {
		return o.fail(ctx, "wallet.login", missingCollaborator("wallet client"), ActorRef{Type: "unknown"})
	}

	publicKey, err := o.wallet.PublicKey(ctx)
	if err != nil {
		return o.fail(ctx, "wallet.login", wrapService(err, "wallet public key unavailable"), ActorRef{Type: "wallet"})
	}

	id := ByPublicKey(publicKey)
	orgID, err := o.resolver.SubOrganizationID(ctx, id)
	if err != nil {
		return o.fail(ctx, "wallet.login", err, actorIdentifier(id))
	}

	if orgID == "" {
		return o.signupWithWallet(ctx, publicKey)
	}

	resp, err := o.wallet.Login(ctx)
	if err != nil {
		return o.fail(ctx, "wallet.login", wrapService(err, "wallet login failed"), actorIdentifier(id))
	}

	if resp.OrganizationID != orgID {
		return o.fail(ctx, "wallet.login", ErrOrganizationMismatch.WithMetadata(map[string]any{
			"expected": orgID,
			"got":      resp.OrganizationID,
		}), actorIdentifier(id))
	}

	user, err := o.materializer.Materialize(*resp, AuthClientWallet)
	if err != nil {
		return o.fail(ctx, "wallet.login", err, actorIdentifier(id))
	}

	if err := o.materializer.Commit(ctx, user); err != nil {
		return o.failPartial(ctx, "wallet.login", err, user)
	}

	o.succeed(ctx, ActivityEventWalletLogin, user, o.dashboardRoute)
	return nil
}

func (o *Orchestrator) signupWithWallet(ctx context.Context, publicKey string) error {
	actor := ActorRef{ID: publicKey, Type: "wallet"}

	result, err := o.manager.CreateSubOrganization(ctx, CreateSubOrganizationRequest{
		Username:  publicKey,
		PublicKey: publicKey,
	})
	if err != nil {
		return o.fail(ctx, "wallet.signup", wrapService(err, "sub-organization creation failed"), actor)
	}

	account := &Account{
		Username:         publicKey,
		OrganizationID:   result.SubOrganizationID,
		OrganizationName: result.SubOrganizationName,
		WalletAddress:    result.WalletAddress,
	}

	created, err := o.directory.Create(ctx, account)
	if err != nil {
		return o.failOrphaned(ctx, "wallet.signup", err, result.SubOrganizationID, actor)
	}

	user, err := o.materializer.Materialize(LoginResponse{
		OrganizationID:   result.SubOrganizationID,
		OrganizationName: result.SubOrganizationName,
		UserID:           created.ID.String(),
		Username:         created.Username,
	}, AuthClientWallet)
	if err != nil {
		return o.fail(ctx, "wallet.signup", err, actor)
	}
	user.WalletAddress = created.WalletAddress

	if err := o.materializer.Commit(ctx, user); err != nil {
		return o.failPartial(ctx, "wallet.signup", err, user)
	}

	// Freshly keyed by public key: no durable username chosen yet.
	o.succeed(ctx, ActivityEventWalletSignup, user, o.profileRoute)
	return nil
}

// ClaimUsername finishes the profile-completion handoff after email or
// wallet auth: it reserves the name in the directory and updates flow state.
func (o *Orchestrator) ClaimUsername(ctx context.Context, email, username string) error {
	if err := validateUsername(username); err != nil {
		o.recordError(ctx, err)
		return err
	}

	taken, _, err := o.directory.Exists(ctx, FieldUsername, username)
	if err != nil {
		err = wrapService(err, "username check failed")
		o.recordError(ctx, err)
		return err
	}
	if taken {
		err := ErrDuplicateEntry.WithMetadata(map[string]any{"username": username})
		o.recordError(ctx, err)
		return err
	}

	if _, err := o.directory.Update(ctx, email, AccountPatch{Username: &username}); err != nil {
		err = wrapService(err, "username update failed")
		o.recordError(ctx, err)
		return err
	}

	o.mu.Lock()
	if o.state.User != nil {
		o.state.User.Username = username
	}
	user := o.state.User
	o.mu.Unlock()

	if user != nil {
		if err := o.materializer.Commit(ctx, user); err != nil {
			o.logger.Warn("failed to refresh committed session after username claim", "error", err)
		}
	}

	o.navigator.Navigate(o.dashboardRoute)
	return nil
}

// Logout invalidates the remote session best-effort and always clears local
// state, returning both outcomes so callers and tests can tell them apart.
func (o *Orchestrator) Logout(ctx context.Context) LogoutResult {
	result := LogoutResult{RemoteInvalidated: true}

	if err := o.manager.InvalidateSession(ctx); err != nil {
		o.logger.Warn("remote session invalidation failed", "error", err)
		result.RemoteInvalidated = false
		result.RemoteErr = err
	}

	if err := o.materializer.Clear(ctx); err != nil {
		o.logger.Warn("local session clear failed", "error", err)
	}

	o.mu.Lock()
	userID := ""
	if o.state.User != nil {
		userID = o.state.User.UserID
	}
	o.state = FlowState{Status: FlowIdle}
	o.inFlight = false
	o.mu.Unlock()

	o.emit(ctx, ActivityEventLogout, ActorRef{ID: userID, Type: "user"}, userID, "", map[string]any{
		"remote_invalidated": result.RemoteInvalidated,
	})
	o.navigator.Navigate(o.homeRoute)

	return result
}

func (o *Orchestrator) begin(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inFlight {
		return ErrOperationInFlight
	}

	if err := o.flow.Transition(ctx, &o.state, FlowLoading); err != nil {
		return err
	}

	o.inFlight = true
	return nil
}

// recordError writes the error into shared state without requiring an open
// operation; used for pre-flight validation failures.
func (o *Orchestrator) recordError(ctx context.Context, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Status == FlowLoading {
		o.flow.Transition(ctx, &o.state, FlowError)
	}
	o.state.Error = err.Error()
	o.state.Loading = false
}

func (o *Orchestrator) fail(ctx context.Context, op string, err error, actor ActorRef) error {
	o.mu.Lock()
	o.flow.Transition(ctx, &o.state, FlowError)
	o.state.Error = err.Error()
	o.inFlight = false
	o.mu.Unlock()

	o.logger.Error("auth operation failed", "op", op, "error", err)
	o.emit(ctx, ActivityEventAuthFailure, actor, "", "", map[string]any{
		"op":    op,
		"error": err.Error(),
	})

	return err
}

// failOrphaned reports a directory write that failed after the
// sub-organization was created remotely. The sub-organization id travels in
// the error metadata and the activity event for out-of-band cleanup.
func (o *Orchestrator) failOrphaned(ctx context.Context, op string, cause error, subOrgID string, actor ActorRef) error {
	err := goerrors.Wrap(cause, goerrors.CategoryOperation, "sub-organization created but directory write failed").
		WithTextCode(textCodePartialFailure).
		WithMetadata(map[string]any{
			"sub_organization_id": subOrgID,
		})

	o.emit(ctx, ActivityEventPartialFailure, actor, "", subOrgID, map[string]any{
		"op":                  op,
		"sub_organization_id": subOrgID,
		"error":               cause.Error(),
	})

	return o.fail(ctx, op, err, actor)
}

// failPartial reports a session commit that failed after the remote side
// succeeded.
func (o *Orchestrator) failPartial(ctx context.Context, op string, err error, user *User) error {
	actor := ActorRef{ID: user.UserID, Type: "user"}
	o.emit(ctx, ActivityEventPartialFailure, actor, user.UserID, user.Organization.OrganizationID, map[string]any{
		"op":    op,
		"error": err.Error(),
	})
	return o.fail(ctx, op, err, actor)
}

func (o *Orchestrator) succeed(ctx context.Context, event ActivityEventType, user *User, route string) {
	o.mu.Lock()
	o.flow.Transition(ctx, &o.state, FlowAuthenticated)
	o.state.User = user
	o.inFlight = false
	o.mu.Unlock()

	o.emit(ctx, event, ActorRef{ID: user.UserID, Type: "user"}, user.UserID, user.Organization.OrganizationID, nil)
	o.navigator.Navigate(route)
}

func (o *Orchestrator) emit(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID, orgID string, metadata map[string]any) {
	sink := normalizeActivitySink(o.activitySink)
	event := ActivityEvent{
		EventType:      eventType,
		Actor:          actor,
		UserID:         userID,
		OrganizationID: orgID,
		Metadata:       metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		o.logger.Warn("activity sink record error: %v", err)
	}
}

// mergeAccount fills login response gaps from the directory record. The
// response's user id wins when present; the directory id is the fallback.
func mergeAccount(resp LoginResponse, account *Account) LoginResponse {
	if account == nil {
		return resp
	}

	if resp.UserID == "" {
		resp.UserID = account.ID.String()
	}
	if resp.Username == "" {
		resp.Username = account.Username
	}
	if resp.OrganizationName == "" {
		resp.OrganizationName = account.OrganizationName
	}

	return resp
}

func validateEmail(email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return ErrInvalidInput.WithMetadata(map[string]any{
			"field": "email",
			"cause": err.Error(),
		})
	}
	return nil
}

func validateUsername(username string) error {
	if err := validation.Validate(username, validation.Required, validation.Length(3, 64)); err != nil {
		return ErrInvalidInput.WithMetadata(map[string]any{
			"field": "username",
			"cause": err.Error(),
		})
	}
	return nil
}

func missingCollaborator(name string) error {
	return goerrors.New("missing "+name, goerrors.CategoryOperation).
		WithTextCode(textCodeServiceUnavailable)
}

func actorEmail(email string) ActorRef {
	return ActorRef{ID: email, Type: "email"}
}

func actorIdentifier(id Identifier) ActorRef {
	return ActorRef{ID: id.Value(), Type: string(id.Kind())}
}
