package walletauth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// FilterKind selects which directory attribute a sub-organization lookup
// filters on. Values follow the key-management service's filter vocabulary.
type FilterKind string

const (
	FilterEmail     FilterKind = "EMAIL"
	FilterUsername  FilterKind = "USERNAME"
	FilterPublicKey FilterKind = "PUBLIC_KEY"
	FilterOIDCToken FilterKind = "OIDC_TOKEN"
)

// AuthClientKind identifies which signing surface produced a session.
type AuthClientKind string

const (
	AuthClientPasskey AuthClientKind = "passkey"
	AuthClientIframe  AuthClientKind = "iframe"
	AuthClientWallet  AuthClientKind = "wallet"
)

// PasskeyCredential is the opaque output of a passkey creation ceremony.
// Challenge and Attestation are produced by the authenticator and consumed
// verbatim by the key-management service; we never inspect them.
type PasskeyCredential struct {
	Challenge   string
	Attestation []byte
}

// CreateSubOrganizationRequest seeds a new sub-organization with exactly one
// root user and a default wallet. Either Passkey or PublicKey identifies the
// root user's credential; Email may be empty for wallet-keyed signups.
type CreateSubOrganizationRequest struct {
	Email     string
	Username  string
	Passkey   *PasskeyCredential
	PublicKey string
}

// SubOrganizationResult is the key-management service's response to a
// sub-organization creation.
type SubOrganizationResult struct {
	SubOrganizationID   string
	SubOrganizationName string
	RootUserIDs         []string
	WalletAddress       string
}

// KeyManager is the narrow contract the orchestrator requires from the
// key-management service. The keymgmt subpackage provides the REST-backed
// implementation.
type KeyManager interface {
	// SubOrganizationIDs returns the sub-organization ids matching the
	// filter. An empty slice is a normal result, not an error.
	SubOrganizationIDs(ctx context.Context, kind FilterKind, value string) ([]string, error)
	CreateSubOrganization(ctx context.Context, req CreateSubOrganizationRequest) (*SubOrganizationResult, error)
	// SendEmailAuthLink brokers a one-time magic link encoding the target
	// public key and redirect template.
	SendEmailAuthLink(ctx context.Context, email, targetPublicKey, redirectTemplate string) error
	RegisterAuthenticator(ctx context.Context, organizationID, userID string, credential PasskeyCredential) error
	// InvalidateSession revokes the current remote session.
	InvalidateSession(ctx context.Context) error
}

// PasskeyClient drives the ambient passkey ceremony (WebAuthn create/get).
type PasskeyClient interface {
	// CreateUserPasskey runs the credential creation ceremony. displayName
	// is shown by the authenticator; usually the account email.
	CreateUserPasskey(ctx context.Context, displayName string) (*PasskeyCredential, error)
	// Login runs the assertion ceremony and returns the raw login response
	// reported by the key-management service.
	Login(ctx context.Context) (*LoginResponse, error)
}

// WalletClient is an ambient wallet-signing context capable of producing a
// public key and a signature-based login.
type WalletClient interface {
	PublicKey(ctx context.Context) (string, error)
	Login(ctx context.Context) (*LoginResponse, error)
}

// CredentialInjector materializes a session key from a one-time credential
// bundle. It models the isolated signing context (iframe in browser
// deployments) that magic-link auth completes into.
type CredentialInjector interface {
	// TargetPublicKey is the public key the magic link is bound to.
	TargetPublicKey() string
	InjectCredentialBundle(ctx context.Context, bundle string) error
	// ReadWriteSessionLogin requests a read-write session keyed by the
	// injected credential's public key.
	ReadWriteSessionLogin(ctx context.Context, publicKey string) (*LoginResponse, error)
}

// DirectoryField selects which unique attribute an existence check runs on.
type DirectoryField string

const (
	FieldEmail    DirectoryField = "email"
	FieldUsername DirectoryField = "username"
)

// AccountPatch mutates a subset of directory record fields. Nil members are
// left untouched.
type AccountPatch struct {
	Username         *string
	OrganizationID   *string
	OrganizationName *string
	WalletAddress    *string
	HasPasskey       *bool
}

// Directory is the user-record store the orchestrator consults. The
// RepositoryDirectory implementation backs it with Bun/Postgres.
type Directory interface {
	Exists(ctx context.Context, field DirectoryField, value string) (bool, *Account, error)
	Create(ctx context.Context, record *Account) (*Account, error)
	Update(ctx context.Context, email string, patch AccountPatch) (*Account, error)
	FetchDetails(ctx context.Context, email string) (*Account, error)
}

// StorageKey scopes values in the durable session store.
type StorageKey string

const (
	// StorageUserSession holds the materialized User record.
	StorageUserSession StorageKey = "user_session"
)

// SessionStore is durable, browser-profile-scoped storage for the
// materialized session. SetSessionValue must replace the prior value
// atomically; readers never observe a partial record.
type SessionStore interface {
	SetSessionValue(ctx context.Context, key StorageKey, value any) error
	GetSessionValue(ctx context.Context, key StorageKey, out any) error
	RemoveSessionValue(ctx context.Context, key StorageKey) error
}

// Navigator receives client-side route changes triggered by terminal flow
// states. Implementations are expected to be cheap and non-blocking.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) {
	if f != nil {
		f(route)
	}
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}

// Config holds orchestrator options.
type Config interface {
	GetOrganizationID() string
	GetAppName() string
	GetRedirectTemplate() string
	GetDashboardRoute() string
	GetProfileRoute() string
	GetEmailAuthRoute() string
	GetHomeRoute() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] WALLETAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] WALLETAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] WALLETAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] WALLETAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
