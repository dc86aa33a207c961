package walletauth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// SubOrganization references the isolated tenant holding one end user's keys
// and wallets. Externally owned; we only carry its id and display name.
type SubOrganization struct {
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// ReadOnlySession is an optional read token issued alongside a login.
type ReadOnlySession struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry,omitempty"`
}

// SessionInfo records how the session was produced and any read token.
type SessionInfo struct {
	Read       *ReadOnlySession `json:"read,omitempty"`
	AuthClient AuthClientKind   `json:"auth_client"`
}

// User is the canonical materialized session record persisted to the
// SessionStore and mirrored into orchestrator state.
type User struct {
	UserID        string          `json:"user_id"`
	Username      string          `json:"username,omitempty"`
	Organization  SubOrganization `json:"organization"`
	WalletAddress string          `json:"wallet_address,omitempty"`
	Session       SessionInfo     `json:"session"`
}

// LoginResponse is the raw successful-login shape reported by the
// key-management service, regardless of which surface produced it.
type LoginResponse struct {
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name,omitempty"`
	UserID           string `json:"user_id"`
	Username         string `json:"username,omitempty"`
	Session          string `json:"session,omitempty"`
	SessionExpiry    int64  `json:"session_expiry,omitempty"`
}

// LoginResponseToUser normalizes a raw login response into the canonical
// User record. When the response carries a session token without an explicit
// expiry, the expiry is derived from the token's exp claim.
func LoginResponseToUser(resp LoginResponse, client AuthClientKind) *User {
	user := &User{
		UserID:   resp.UserID,
		Username: resp.Username,
		Organization: SubOrganization{
			OrganizationID:   resp.OrganizationID,
			OrganizationName: resp.OrganizationName,
		},
		Session: SessionInfo{
			AuthClient: client,
		},
	}

	if resp.Session != "" {
		expiry := resp.SessionExpiry
		if expiry == 0 {
			expiry = tokenExpiry(resp.Session)
		}
		user.Session.Read = &ReadOnlySession{
			Token:  resp.Session,
			Expiry: expiry,
		}
	}

	return user
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// token was just issued by the trusted service and is only read for display
// and refresh scheduling.
func tokenExpiry(token string) int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}

	return exp.Unix()
}

// Materializer converts raw login responses into canonical User records and
// commits them to durable local storage. A commit replaces any prior session
// in a single store write.
type Materializer struct {
	store  SessionStore
	logger Logger
}

// NewMaterializer returns a Materializer backed by the given store.
func NewMaterializer(store SessionStore) *Materializer {
	return &Materializer{
		store:  store,
		logger: defLogger{},
	}
}

func (m *Materializer) WithLogger(logger Logger) *Materializer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Materialize validates and normalizes the response. An empty organization
// or user id means the remote call did not actually establish a session.
func (m *Materializer) Materialize(resp LoginResponse, client AuthClientKind) (*User, error) {
	if resp.OrganizationID == "" || resp.UserID == "" {
		return nil, goerrors.New("login response missing organization or user id", goerrors.CategoryInternal).
			WithTextCode(textCodeServiceUnavailable).
			WithMetadata(map[string]any{
				"organization_id": resp.OrganizationID,
				"user_id":         resp.UserID,
			})
	}

	return LoginResponseToUser(resp, client), nil
}

// Commit persists the record, replacing any prior session atomically.
func (m *Materializer) Commit(ctx context.Context, user *User) error {
	if user == nil {
		return ErrInvalidInput.WithMetadata(map[string]any{
			"reason": "nil user record",
		})
	}

	if err := m.store.SetSessionValue(ctx, StorageUserSession, user); err != nil {
		m.logger.Error("session commit failed", "user_id", user.UserID, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to persist session").
			WithTextCode(textCodePartialFailure)
	}

	return nil
}

// Hydrate loads a previously committed session, if any.
func (m *Materializer) Hydrate(ctx context.Context) (*User, error) {
	user := &User{}
	if err := m.store.GetSessionValue(ctx, StorageUserSession, user); err != nil {
		return nil, err
	}

	if user.UserID == "" {
		return nil, nil
	}

	return user, nil
}

// Clear drops the committed session.
func (m *Materializer) Clear(ctx context.Context) error {
	return m.store.RemoveSessionValue(ctx, StorageUserSession)
}

func (u User) String() string {
	return fmt.Sprintf(
		"user=%s username=%s org=%s client=%s",
		u.UserID,
		u.Username,
		u.Organization.OrganizationID,
		u.Session.AuthClient,
	)
}

// ReadSessionExpired reports whether the read token, if any, is past its
// expiry at the given instant.
func (u *User) ReadSessionExpired(now time.Time) bool {
	if u == nil || u.Session.Read == nil || u.Session.Read.Expiry == 0 {
		return false
	}
	return now.Unix() >= u.Session.Read.Expiry
}
