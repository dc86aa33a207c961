package walletauth_test

import (
	"context"
	"errors"
	"testing"

	walletauth "github.com/goliatone/go-wallet-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orchestratorFixture struct {
	manager   *MockKeyManager
	directory *MockDirectory
	passkeys  *MockPasskeyClient
	wallet    *MockWalletClient
	injector  *MockCredentialInjector
	store     *walletauth.MemorySessionStore
	navigator *recordingNavigator
	sink      *capturingSink
	orch      *walletauth.Orchestrator
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		manager:   new(MockKeyManager),
		directory: new(MockDirectory),
		passkeys:  new(MockPasskeyClient),
		wallet:    new(MockWalletClient),
		injector:  new(MockCredentialInjector),
		store:     walletauth.NewMemorySessionStore(),
		navigator: &recordingNavigator{},
		sink:      &capturingSink{},
	}

	f.orch = walletauth.NewOrchestrator(f.manager, f.directory, f.store, nil).
		WithPasskeyClient(f.passkeys).
		WithWalletClient(f.wallet).
		WithCredentialInjector(f.injector).
		WithNavigator(f.navigator).
		WithActivitySink(f.sink)

	return f
}

func (f *orchestratorFixture) storedUser(t *testing.T) *walletauth.User {
	t.Helper()
	user := &walletauth.User{}
	err := f.store.GetSessionValue(context.Background(), walletauth.StorageUserSession, user)
	require.NoError(t, err)
	if user.UserID == "" {
		return nil
	}
	return user
}

func TestInitiateEmailLogin(t *testing.T) {
	t.Run("sends magic link and awaits confirmation", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.injector.On("TargetPublicKey").Return("target-pk")
		f.manager.On("SendEmailAuthLink", mock.Anything, "alice@example.com", "target-pk", "").
			Return(nil)

		err := f.orch.InitiateEmailLogin(context.Background(), "alice@example.com")
		require.NoError(t, err)

		state := f.orch.State()
		assert.Equal(t, walletauth.FlowAwaitingEmail, state.Status)
		assert.False(t, state.Loading)
		assert.Empty(t, state.Error)

		assert.Equal(t, "/email-authorization?userEmail=alice%40example.com", f.navigator.Last())
		assert.Contains(t, f.sink.Types(), walletauth.ActivityEventEmailAuthInitiated)
		f.manager.AssertExpectations(t)
	})

	t.Run("invalid email never reaches the sender", func(t *testing.T) {
		f := newOrchestratorFixture()

		err := f.orch.InitiateEmailLogin(context.Background(), "not-an-email")
		require.Error(t, err)
		assert.True(t, walletauth.IsInvalidInput(err))

		state := f.orch.State()
		assert.Equal(t, walletauth.FlowError, state.Status)
		assert.NotEmpty(t, state.Error)

		f.manager.AssertNotCalled(t, "SendEmailAuthLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.navigator.Routes())
	})

	t.Run("empty email never reaches the sender", func(t *testing.T) {
		f := newOrchestratorFixture()

		err := f.orch.InitiateEmailLogin(context.Background(), "")
		require.Error(t, err)
		assert.True(t, walletauth.IsInvalidInput(err))

		f.manager.AssertNotCalled(t, "SendEmailAuthLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("sender failure lands in error state", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.injector.On("TargetPublicKey").Return("target-pk")
		f.manager.On("SendEmailAuthLink", mock.Anything, "alice@example.com", "target-pk", "").
			Return(errors.New("smtp down"))

		err := f.orch.InitiateEmailLogin(context.Background(), "alice@example.com")
		require.Error(t, err)
		assert.True(t, walletauth.IsServiceUnavailable(err))
		assert.Equal(t, walletauth.FlowError, f.orch.State().Status)
	})
}

func TestCompleteEmailAuth(t *testing.T) {
	validReq := walletauth.CompleteEmailAuthRequest{
		Email:            "alice@example.com",
		ContinueWith:     walletauth.ContinueWithEmail,
		CredentialBundle: "bundle",
	}

	t.Run("completes auth and routes to profile when no username", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.injector.On("InjectCredentialBundle", mock.Anything, "bundle").Return(nil)
		f.injector.On("TargetPublicKey").Return("target-pk")
		f.injector.On("ReadWriteSessionLogin", mock.Anything, "target-pk").Return(&walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
		}, nil)
		f.directory.On("FetchDetails", mock.Anything, "alice@example.com").
			Return(nil, walletauth.ErrAccountNotFound)

		ok, err := f.orch.CompleteEmailAuth(context.Background(), validReq)
		require.NoError(t, err)
		assert.True(t, ok)

		state := f.orch.State()
		assert.Equal(t, walletauth.FlowAuthenticated, state.Status)
		require.NotNil(t, state.User)
		assert.Equal(t, walletauth.AuthClientIframe, state.User.Session.AuthClient)

		// No username claimed yet, so the flow hands off to profile completion.
		assert.Equal(t, "/dashboard/user/profile", f.navigator.Last())
	})

	t.Run("routes to dashboard when username exists", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.injector.On("InjectCredentialBundle", mock.Anything, "bundle").Return(nil)
		f.injector.On("TargetPublicKey").Return("target-pk")
		f.injector.On("ReadWriteSessionLogin", mock.Anything, "target-pk").Return(&walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
		}, nil)
		f.directory.On("FetchDetails", mock.Anything, "alice@example.com").
			Return(&walletauth.Account{
				Username:       "alice",
				Email:          "alice@example.com",
				OrganizationID: "org_1",
			}, nil)

		ok, err := f.orch.CompleteEmailAuth(context.Background(), validReq)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "/dashboard", f.navigator.Last())

		stored := f.storedUser(t)
		require.NotNil(t, stored)
		assert.Equal(t, "u1", stored.UserID)
		assert.Equal(t, "alice", stored.Username)
	})

	t.Run("missing credential bundle is invalid input", func(t *testing.T) {
		f := newOrchestratorFixture()

		ok, err := f.orch.CompleteEmailAuth(context.Background(), walletauth.CompleteEmailAuthRequest{
			Email:        "alice@example.com",
			ContinueWith: walletauth.ContinueWithEmail,
		})
		require.Error(t, err)
		assert.False(t, ok)
		assert.True(t, walletauth.IsInvalidInput(err))
		f.injector.AssertNotCalled(t, "InjectCredentialBundle", mock.Anything, mock.Anything)
	})

	t.Run("wrong continuation literal is invalid input", func(t *testing.T) {
		f := newOrchestratorFixture()

		ok, err := f.orch.CompleteEmailAuth(context.Background(), walletauth.CompleteEmailAuthRequest{
			Email:            "alice@example.com",
			ContinueWith:     "sms",
			CredentialBundle: "bundle",
		})
		require.Error(t, err)
		assert.False(t, ok)
		assert.True(t, walletauth.IsInvalidInput(err))
	})

	t.Run("organization mismatch fails hard", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.injector.On("InjectCredentialBundle", mock.Anything, "bundle").Return(nil)
		f.injector.On("TargetPublicKey").Return("target-pk")
		f.injector.On("ReadWriteSessionLogin", mock.Anything, "target-pk").Return(&walletauth.LoginResponse{
			OrganizationID: "org_other",
			UserID:         "u1",
		}, nil)
		f.directory.On("FetchDetails", mock.Anything, "alice@example.com").
			Return(&walletauth.Account{
				Username:       "alice",
				Email:          "alice@example.com",
				OrganizationID: "org_1",
			}, nil)

		ok, err := f.orch.CompleteEmailAuth(context.Background(), validReq)
		require.Error(t, err)
		assert.False(t, ok)
		assert.True(t, walletauth.IsOrganizationMismatch(err))
		assert.Nil(t, f.storedUser(t))
	})

	t.Run("broken bundle reports false without panicking", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.injector.On("InjectCredentialBundle", mock.Anything, "bundle").
			Return(errors.New("malformed bundle"))

		ok, err := f.orch.CompleteEmailAuth(context.Background(), validReq)
		require.Error(t, err)
		assert.False(t, ok)
		assert.Equal(t, walletauth.FlowError, f.orch.State().Status)
	})
}

func TestLoginWithPasskey(t *testing.T) {
	account := func() *walletauth.Account {
		return &walletauth.Account{
			Username:       "alice",
			Email:          "alice@example.com",
			OrganizationID: "org_1",
			HasPasskey:     true,
		}
	}

	t.Run("unknown identifier fails before any ceremony", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "ghost").
			Return(false, nil, nil)

		err := f.orch.LoginWithPasskey(context.Background(), "ghost")
		require.Error(t, err)
		assert.True(t, walletauth.IsAccountNotFound(err))

		f.passkeys.AssertNotCalled(t, "Login", mock.Anything)
		assert.Equal(t, walletauth.FlowError, f.orch.State().Status)
	})

	t.Run("no sub-organization fails before any ceremony", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.directory.On("Exists", mock.Anything, walletauth.FieldEmail, "alice@example.com").
			Return(true, account(), nil)
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterEmail, "alice@example.com").
			Return([]string{}, nil)

		err := f.orch.LoginWithPasskey(context.Background(), "alice@example.com")
		require.Error(t, err)
		assert.True(t, walletauth.IsAccountNotFound(err))
		f.passkeys.AssertNotCalled(t, "Login", mock.Anything)
	})

	t.Run("account without passkey is rejected before the prompt", func(t *testing.T) {
		f := newOrchestratorFixture()

		noPasskey := account()
		noPasskey.HasPasskey = false

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(true, noPasskey, nil)
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterUsername, "alice").
			Return([]string{"org_1"}, nil)

		err := f.orch.LoginWithPasskey(context.Background(), "alice")
		require.Error(t, err)
		assert.True(t, walletauth.IsNoPasskeyRegistered(err))
		f.passkeys.AssertNotCalled(t, "Login", mock.Anything)
	})

	t.Run("organization mismatch rejects a valid ceremony", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(true, account(), nil)
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterUsername, "alice").
			Return([]string{"org_1"}, nil)
		f.passkeys.On("Login", mock.Anything).Return(&walletauth.LoginResponse{
			OrganizationID: "org_2",
			UserID:         "u1",
		}, nil)

		err := f.orch.LoginWithPasskey(context.Background(), "alice")
		require.Error(t, err)
		assert.True(t, walletauth.IsOrganizationMismatch(err))
		assert.Nil(t, f.orch.CurrentUser())
		assert.Nil(t, f.storedUser(t))
	})

	t.Run("successful login commits the session", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(true, account(), nil)
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterUsername, "alice").
			Return([]string{"org_1"}, nil)
		f.passkeys.On("Login", mock.Anything).Return(&walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
		}, nil)

		err := f.orch.LoginWithPasskey(context.Background(), "alice")
		require.NoError(t, err)

		state := f.orch.State()
		assert.Equal(t, walletauth.FlowAuthenticated, state.Status)
		require.NotNil(t, state.User)
		assert.Equal(t, "u1", state.User.UserID)
		assert.Equal(t, "alice", state.User.Username)
		assert.Equal(t, "org_1", state.User.Organization.OrganizationID)
		assert.Equal(t, walletauth.AuthClientPasskey, state.User.Session.AuthClient)

		assert.Equal(t, "/dashboard", f.navigator.Last())
		assert.Contains(t, f.sink.Types(), walletauth.ActivityEventPasskeyLogin)
	})
}

func TestSignupWithPasskey(t *testing.T) {
	t.Run("duplicate username conflicts before sub-organization creation", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(true, &walletauth.Account{Username: "alice"}, nil)

		err := f.orch.SignupWithPasskey(context.Background(), "alice@example.com", "alice")
		require.Error(t, err)
		assert.True(t, walletauth.IsDuplicateEntry(err))

		f.manager.AssertNotCalled(t, "CreateSubOrganization", mock.Anything, mock.Anything)
		f.passkeys.AssertNotCalled(t, "CreateUserPasskey", mock.Anything, mock.Anything)
	})

	t.Run("invalid email rejected before any ceremony", func(t *testing.T) {
		f := newOrchestratorFixture()

		err := f.orch.SignupWithPasskey(context.Background(), "nope", "alice")
		require.Error(t, err)
		assert.True(t, walletauth.IsInvalidInput(err))
		f.passkeys.AssertNotCalled(t, "CreateUserPasskey", mock.Anything, mock.Anything)
	})

	t.Run("signup then login round trip", func(t *testing.T) {
		f := newOrchestratorFixture()

		credential := &walletauth.PasskeyCredential{Challenge: "ch", Attestation: []byte("att")}

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(false, nil, nil).Once()
		f.passkeys.On("CreateUserPasskey", mock.Anything, "alice@example.com").
			Return(credential, nil)
		f.manager.On("CreateSubOrganization", mock.Anything, walletauth.CreateSubOrganizationRequest{
			Email:    "alice@example.com",
			Username: "alice",
			Passkey:  credential,
		}).Return(&walletauth.SubOrganizationResult{
			SubOrganizationID:   "org_1",
			SubOrganizationName: "alice",
			WalletAddress:       "0xabc",
		}, nil)

		created := &walletauth.Account{
			Username:         "alice",
			Email:            "alice@example.com",
			OrganizationID:   "org_1",
			OrganizationName: "alice",
			WalletAddress:    "0xabc",
			HasPasskey:       true,
		}
		f.directory.On("Create", mock.Anything, mock.MatchedBy(func(a *walletauth.Account) bool {
			return a.Username == "alice" && a.OrganizationID == "org_1" && a.HasPasskey
		})).Return(created, nil)

		require.NoError(t, f.orch.SignupWithPasskey(context.Background(), "alice@example.com", "alice"))
		assert.Equal(t, walletauth.FlowAuthenticated, f.orch.State().Status)
		assert.Equal(t, "/dashboard", f.navigator.Last())

		// Log out, then log back in with the passkey registered at signup.
		f.manager.On("InvalidateSession", mock.Anything).Return(nil)
		result := f.orch.Logout(context.Background())
		assert.True(t, result.RemoteInvalidated)
		assert.Equal(t, walletauth.FlowIdle, f.orch.State().Status)

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(true, created, nil).Once()
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterUsername, "alice").
			Return([]string{"org_1"}, nil)
		f.passkeys.On("Login", mock.Anything).Return(&walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
		}, nil)

		require.NoError(t, f.orch.LoginWithPasskey(context.Background(), "alice"))

		user := f.orch.CurrentUser()
		require.NotNil(t, user)
		assert.Equal(t, "u1", user.UserID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "org_1", user.Organization.OrganizationID)

		stored := f.storedUser(t)
		require.NotNil(t, stored)
		assert.Equal(t, "u1", stored.UserID)
	})

	t.Run("directory write failure after creation is a partial failure", func(t *testing.T) {
		f := newOrchestratorFixture()

		credential := &walletauth.PasskeyCredential{Challenge: "ch"}

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(false, nil, nil)
		f.passkeys.On("CreateUserPasskey", mock.Anything, "alice@example.com").
			Return(credential, nil)
		f.manager.On("CreateSubOrganization", mock.Anything, mock.Anything).
			Return(&walletauth.SubOrganizationResult{SubOrganizationID: "org_orphan"}, nil)
		f.directory.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("db down"))

		err := f.orch.SignupWithPasskey(context.Background(), "alice@example.com", "alice")
		require.Error(t, err)
		assert.True(t, walletauth.IsPartialFailure(err))
		assert.Contains(t, f.sink.Types(), walletauth.ActivityEventPartialFailure)

		// Orphaned sub-organization id travels with the event for cleanup.
		var partial *walletauth.ActivityEvent
		for _, event := range f.sink.Events() {
			if event.EventType == walletauth.ActivityEventPartialFailure {
				e := event
				partial = &e
			}
		}
		require.NotNil(t, partial)
		assert.Equal(t, "org_orphan", partial.Metadata["sub_organization_id"])
	})
}

func TestLoginWithWallet(t *testing.T) {
	t.Run("existing key logs in against its organization", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.wallet.On("PublicKey", mock.Anything).Return("pk_1", nil)
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterPublicKey, "pk_1").
			Return([]string{"org_1"}, nil)
		f.wallet.On("Login", mock.Anything).Return(&walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
		}, nil)

		require.NoError(t, f.orch.LoginWithWallet(context.Background()))

		user := f.orch.CurrentUser()
		require.NotNil(t, user)
		assert.Equal(t, walletauth.AuthClientWallet, user.Session.AuthClient)
		assert.Equal(t, "/dashboard", f.navigator.Last())
	})

	t.Run("unknown key signs up a new sub-organization", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.wallet.On("PublicKey", mock.Anything).Return("pk_new", nil)
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterPublicKey, "pk_new").
			Return([]string{}, nil)
		f.manager.On("CreateSubOrganization", mock.Anything, walletauth.CreateSubOrganizationRequest{
			Username:  "pk_new",
			PublicKey: "pk_new",
		}).Return(&walletauth.SubOrganizationResult{
			SubOrganizationID: "org_new",
			WalletAddress:     "0xdef",
		}, nil)
		f.directory.On("Create", mock.Anything, mock.MatchedBy(func(a *walletauth.Account) bool {
			return a.Username == "pk_new" && a.OrganizationID == "org_new" && !a.HasPasskey
		})).Return(&walletauth.Account{
			Username:       "pk_new",
			OrganizationID: "org_new",
			WalletAddress:  "0xdef",
		}, nil)

		require.NoError(t, f.orch.LoginWithWallet(context.Background()))

		// New wallet accounts have no durable username yet.
		assert.Equal(t, "/dashboard/user/profile", f.navigator.Last())
		assert.Contains(t, f.sink.Types(), walletauth.ActivityEventWalletSignup)
	})

	t.Run("organization mismatch fails hard", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.wallet.On("PublicKey", mock.Anything).Return("pk_1", nil)
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterPublicKey, "pk_1").
			Return([]string{"org_1"}, nil)
		f.wallet.On("Login", mock.Anything).Return(&walletauth.LoginResponse{
			OrganizationID: "org_2",
			UserID:         "u1",
		}, nil)

		err := f.orch.LoginWithWallet(context.Background())
		require.Error(t, err)
		assert.True(t, walletauth.IsOrganizationMismatch(err))
	})
}

func TestClaimUsername(t *testing.T) {
	t.Run("claims and navigates to dashboard", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(false, nil, nil)
		f.directory.On("Update", mock.Anything, "alice@example.com", mock.MatchedBy(func(p walletauth.AccountPatch) bool {
			return p.Username != nil && *p.Username == "alice"
		})).Return(&walletauth.Account{Username: "alice"}, nil)

		require.NoError(t, f.orch.ClaimUsername(context.Background(), "alice@example.com", "alice"))
		assert.Equal(t, "/dashboard", f.navigator.Last())
	})

	t.Run("taken username conflicts", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.directory.On("Exists", mock.Anything, walletauth.FieldUsername, "alice").
			Return(true, &walletauth.Account{Username: "alice"}, nil)

		err := f.orch.ClaimUsername(context.Background(), "alice@example.com", "alice")
		require.Error(t, err)
		assert.True(t, walletauth.IsDuplicateEntry(err))
		f.directory.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("short username is invalid", func(t *testing.T) {
		f := newOrchestratorFixture()

		err := f.orch.ClaimUsername(context.Background(), "alice@example.com", "al")
		require.Error(t, err)
		assert.True(t, walletauth.IsInvalidInput(err))
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears local state even when remote invalidation throws", func(t *testing.T) {
		f := newOrchestratorFixture()

		// Authenticate first so there is something to clear.
		f.wallet.On("PublicKey", mock.Anything).Return("pk_1", nil)
		f.manager.On("SubOrganizationIDs", mock.Anything, walletauth.FilterPublicKey, "pk_1").
			Return([]string{"org_1"}, nil)
		f.wallet.On("Login", mock.Anything).Return(&walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
		}, nil)
		require.NoError(t, f.orch.LoginWithWallet(context.Background()))
		require.NotNil(t, f.storedUser(t))

		f.manager.On("InvalidateSession", mock.Anything).Return(errors.New("remote boom"))

		result := f.orch.Logout(context.Background())
		assert.False(t, result.RemoteInvalidated)
		assert.Error(t, result.RemoteErr)

		state := f.orch.State()
		assert.Equal(t, walletauth.FlowIdle, state.Status)
		assert.Nil(t, state.User)
		assert.Nil(t, f.storedUser(t))
		assert.Equal(t, "/", f.navigator.Last())
	})

	t.Run("reports remote success", func(t *testing.T) {
		f := newOrchestratorFixture()

		f.manager.On("InvalidateSession", mock.Anything).Return(nil)

		result := f.orch.Logout(context.Background())
		assert.True(t, result.RemoteInvalidated)
		assert.NoError(t, result.RemoteErr)
		assert.Contains(t, f.sink.Types(), walletauth.ActivityEventLogout)
	})
}

func TestHydrate(t *testing.T) {
	t.Run("restores a committed session", func(t *testing.T) {
		f := newOrchestratorFixture()

		committed := &walletauth.User{
			UserID:       "u1",
			Username:     "alice",
			Organization: walletauth.SubOrganization{OrganizationID: "org_1"},
			Session:      walletauth.SessionInfo{AuthClient: walletauth.AuthClientPasskey},
		}
		require.NoError(t, f.store.SetSessionValue(context.Background(), walletauth.StorageUserSession, committed))

		user, err := f.orch.Hydrate(context.Background())
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "u1", user.UserID)
		assert.Equal(t, walletauth.FlowAuthenticated, f.orch.State().Status)
	})

	t.Run("missing session is not an error", func(t *testing.T) {
		f := newOrchestratorFixture()

		user, err := f.orch.Hydrate(context.Background())
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Equal(t, walletauth.FlowIdle, f.orch.State().Status)
	})
}
