// Package passkey brokers WebAuthn ceremonies for the auth flows: it issues
// registration and login challenges, tracks the server-side ceremony session,
// and validates the browser's credential responses.
package passkey

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	textCodeSessionNotFound = "CEREMONY_SESSION_NOT_FOUND"
	textCodeSessionExpired  = "CEREMONY_SESSION_EXPIRED"
	textCodeSessionMismatch = "CEREMONY_SESSION_MISMATCH"
)

// ErrSessionNotFound is returned when a ceremony session id is unknown.
var ErrSessionNotFound = goerrors.New("ceremony session not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeSessionNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrSessionExpired is returned when a ceremony session outlived its TTL.
var ErrSessionExpired = goerrors.New("ceremony session expired", goerrors.CategoryBadInput).
	WithTextCode(textCodeSessionExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrSessionMismatch is returned when a finish call names a session of the
// wrong ceremony kind.
var ErrSessionMismatch = goerrors.New("ceremony session kind mismatch", goerrors.CategoryBadInput).
	WithTextCode(textCodeSessionMismatch).
	WithCode(goerrors.CodeBadRequest)

// SessionKind distinguishes registration from login ceremonies.
type SessionKind string

const (
	SessionKindRegistration SessionKind = "registration"
	SessionKindLogin        SessionKind = "login"
)

// User is the minimal account shape a ceremony needs.
type User struct {
	ID          string
	Name        string
	DisplayName string
	Credentials []webauthn.Credential
}

func (u *User) WebAuthnID() []byte {
	return []byte(u.ID)
}

func (u *User) WebAuthnName() string {
	return u.Name
}

func (u *User) WebAuthnDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

func (u *User) WebAuthnIcon() string {
	return ""
}

func (u *User) WebAuthnCredentials() []webauthn.Credential {
	return u.Credentials
}

// provider is the slice of the webauthn API the broker exercises.
type provider interface {
	BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	CreateCredential(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
	BeginDiscoverableLogin(opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	ValidatePasskeyLogin(handler webauthn.DiscoverableUserHandler, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (webauthn.User, *webauthn.Credential, error)
}

type parser interface {
	ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error)
	ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error)
}

type defaultParser struct{}

func (defaultParser) ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error) {
	return protocol.ParseCredentialCreationResponseBytes(data)
}

func (defaultParser) ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error) {
	return protocol.ParseCredentialRequestResponseBytes(data)
}

// UserResolver maps the user handle returned by the authenticator to the
// account and its registered credentials.
type UserResolver func(ctx context.Context, userHandle []byte) (*User, error)

// Config holds broker configuration.
type Config struct {
	RPDisplayName string
	RPID          string
	RPOrigins     []string

	SessionTTL time.Duration
}

// Broker drives WebAuthn ceremonies and holds their in-flight sessions.
type Broker struct {
	provider   provider
	parser     parser
	sessionTTL time.Duration
	clock      func() time.Time
	newID      func() string

	mu       sync.Mutex
	sessions map[string]*ceremonySession
}

type ceremonySession struct {
	kind      SessionKind
	userID    string
	data      webauthn.SessionData
	expiresAt time.Time
}

type BrokerOption func(*Broker)

// WithSessionTTL overrides the default five minute ceremony window.
func WithSessionTTL(ttl time.Duration) BrokerOption {
	return func(b *Broker) {
		if ttl > 0 {
			b.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(clock func() time.Time) BrokerOption {
	return func(b *Broker) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// NewBroker creates a ceremony broker for the given relying party.
func NewBroker(cfg Config, opts ...BrokerOption) (*Broker, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to configure relying party")
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	b := &Broker{
		provider:   wa,
		parser:     defaultParser{},
		sessionTTL: ttl,
		clock:      time.Now,
		newID:      func() string { return uuid.New().String() },
		sessions:   map[string]*ceremonySession{},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// RegistrationChallenge is the payload a client feeds to credential creation.
type RegistrationChallenge struct {
	SessionID string
	Challenge string
	Options   *protocol.CredentialCreation
}

// BeginRegistration issues a creation challenge for the user. Existing
// credentials are excluded so the authenticator cannot re-register one.
func (b *Broker) BeginRegistration(ctx context.Context, user *User) (*RegistrationChallenge, error) {
	options := []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
	}
	if len(user.Credentials) > 0 {
		options = append(options, webauthn.WithExclusions(webauthn.Credentials(user.Credentials).CredentialDescriptors()))
	}

	creation, session, err := b.provider.BeginRegistration(user, options...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to begin registration ceremony")
	}

	sessionID := b.putSession(SessionKindRegistration, user.ID, session)

	return &RegistrationChallenge{
		SessionID: sessionID,
		Challenge: creation.Response.Challenge.String(),
		Options:   creation,
	}, nil
}

// FinishRegistration validates the browser's creation response and returns
// the resulting credential.
func (b *Broker) FinishRegistration(ctx context.Context, sessionID string, user *User, response []byte) (*webauthn.Credential, error) {
	session, err := b.takeSession(sessionID, SessionKindRegistration)
	if err != nil {
		return nil, err
	}

	parsed, err := b.parser.ParseCredentialCreationResponseBytes(response)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse creation response")
	}

	credential, err := b.provider.CreateCredential(user, session.data, parsed)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "failed to validate creation response")
	}

	return credential, nil
}

// LoginChallenge is the payload a client feeds to credential assertion.
type LoginChallenge struct {
	SessionID string
	Challenge string
	Options   *protocol.CredentialAssertion
}

// BeginLogin issues a discoverable login challenge. The authenticator picks
// the credential, so no account lookup happens here.
func (b *Broker) BeginLogin(ctx context.Context) (*LoginChallenge, error) {
	assertion, session, err := b.provider.BeginDiscoverableLogin()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to begin login ceremony")
	}

	sessionID := b.putSession(SessionKindLogin, "", session)

	return &LoginChallenge{
		SessionID: sessionID,
		Challenge: assertion.Response.Challenge.String(),
		Options:   assertion,
	}, nil
}

// FinishLogin validates the browser's assertion response, resolving the
// account through the supplied resolver.
func (b *Broker) FinishLogin(ctx context.Context, sessionID string, resolve UserResolver, response []byte) (*User, *webauthn.Credential, error) {
	session, err := b.takeSession(sessionID, SessionKindLogin)
	if err != nil {
		return nil, nil, err
	}

	parsed, err := b.parser.ParseCredentialRequestResponseBytes(response)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse assertion response")
	}

	handler := func(_, userHandle []byte) (webauthn.User, error) {
		return resolve(ctx, userHandle)
	}

	validated, credential, err := b.provider.ValidatePasskeyLogin(handler, session.data, parsed)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryAuth, "failed to validate login response")
	}

	user, ok := validated.(*User)
	if !ok {
		return nil, nil, goerrors.New("unexpected user type from ceremony", goerrors.CategoryInternal)
	}

	return user, credential, nil
}

func (b *Broker) putSession(kind SessionKind, userID string, data *webauthn.SessionData) string {
	sessionID := b.newID()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[sessionID] = &ceremonySession{
		kind:      kind,
		userID:    userID,
		data:      *data,
		expiresAt: b.clock().Add(b.sessionTTL),
	}

	return sessionID
}

// takeSession removes and returns the session; ceremony sessions are single
// use regardless of outcome.
func (b *Broker) takeSession(sessionID string, kind SessionKind) (*ceremonySession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	delete(b.sessions, sessionID)

	if session.kind != kind {
		return nil, ErrSessionMismatch
	}
	if b.clock().After(session.expiresAt) {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// EncodeCredentialID renders a credential id the way clients transmit it.
func EncodeCredentialID(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// MarshalCredential serializes a credential for durable storage.
func MarshalCredential(credential *webauthn.Credential) ([]byte, error) {
	return json.Marshal(credential)
}

// UnmarshalCredentials restores credentials persisted with MarshalCredential.
func UnmarshalCredentials(records [][]byte) ([]webauthn.Credential, error) {
	if len(records) == 0 {
		return nil, nil
	}

	credentials := make([]webauthn.Credential, 0, len(records))
	for _, record := range records {
		var credential webauthn.Credential
		if err := json.Unmarshal(record, &credential); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode stored credential")
		}
		credentials = append(credentials, credential)
	}

	return credentials, nil
}
