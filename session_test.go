package walletauth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	walletauth "github.com/goliatone/go-wallet-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginResponseToUser(t *testing.T) {
	t.Run("maps all fields", func(t *testing.T) {
		user := walletauth.LoginResponseToUser(walletauth.LoginResponse{
			OrganizationID:   "org_1",
			OrganizationName: "alice",
			UserID:           "u1",
			Username:         "alice",
		}, walletauth.AuthClientPasskey)

		assert.Equal(t, "u1", user.UserID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "org_1", user.Organization.OrganizationID)
		assert.Equal(t, "alice", user.Organization.OrganizationName)
		assert.Equal(t, walletauth.AuthClientPasskey, user.Session.AuthClient)
		assert.Nil(t, user.Session.Read)
	})

	t.Run("explicit expiry wins", func(t *testing.T) {
		user := walletauth.LoginResponseToUser(walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
			Session:        "opaque-token",
			SessionExpiry:  4200,
		}, walletauth.AuthClientIframe)

		require.NotNil(t, user.Session.Read)
		assert.Equal(t, "opaque-token", user.Session.Read.Token)
		assert.Equal(t, int64(4200), user.Session.Read.Expiry)
	})

	t.Run("derives expiry from token exp claim", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		user := walletauth.LoginResponseToUser(walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
			Session:        signedToken(t, exp),
		}, walletauth.AuthClientWallet)

		require.NotNil(t, user.Session.Read)
		assert.Equal(t, exp.Unix(), user.Session.Read.Expiry)
	})

	t.Run("opaque token without exp leaves expiry zero", func(t *testing.T) {
		user := walletauth.LoginResponseToUser(walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
			Session:        "not-a-jwt",
		}, walletauth.AuthClientWallet)

		require.NotNil(t, user.Session.Read)
		assert.Zero(t, user.Session.Read.Expiry)
	})
}

func TestMaterializerMaterialize(t *testing.T) {
	m := walletauth.NewMaterializer(walletauth.NewMemorySessionStore())

	t.Run("rejects missing organization id", func(t *testing.T) {
		_, err := m.Materialize(walletauth.LoginResponse{UserID: "u1"}, walletauth.AuthClientPasskey)
		require.Error(t, err)
		assert.True(t, walletauth.IsServiceUnavailable(err))
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		_, err := m.Materialize(walletauth.LoginResponse{OrganizationID: "org_1"}, walletauth.AuthClientPasskey)
		require.Error(t, err)
	})

	t.Run("produces canonical user", func(t *testing.T) {
		user, err := m.Materialize(walletauth.LoginResponse{
			OrganizationID: "org_1",
			UserID:         "u1",
			Username:       "alice",
		}, walletauth.AuthClientIframe)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.UserID)
		assert.Equal(t, walletauth.AuthClientIframe, user.Session.AuthClient)
	})
}

func TestMaterializerCommitAndHydrate(t *testing.T) {
	t.Run("commit then hydrate round trips", func(t *testing.T) {
		store := walletauth.NewMemorySessionStore()
		m := walletauth.NewMaterializer(store)

		user := &walletauth.User{
			UserID:       "u1",
			Username:     "alice",
			Organization: walletauth.SubOrganization{OrganizationID: "org_1"},
			Session:      walletauth.SessionInfo{AuthClient: walletauth.AuthClientPasskey},
		}
		require.NoError(t, m.Commit(context.Background(), user))

		restored, err := m.Hydrate(context.Background())
		require.NoError(t, err)
		require.NotNil(t, restored)
		assert.Equal(t, user.UserID, restored.UserID)
		assert.Equal(t, user.Organization.OrganizationID, restored.Organization.OrganizationID)
	})

	t.Run("commit replaces the prior session", func(t *testing.T) {
		store := walletauth.NewMemorySessionStore()
		m := walletauth.NewMaterializer(store)

		require.NoError(t, m.Commit(context.Background(), &walletauth.User{UserID: "u1"}))
		require.NoError(t, m.Commit(context.Background(), &walletauth.User{UserID: "u2"}))

		restored, err := m.Hydrate(context.Background())
		require.NoError(t, err)
		require.NotNil(t, restored)
		assert.Equal(t, "u2", restored.UserID)
	})

	t.Run("nil user is invalid input", func(t *testing.T) {
		m := walletauth.NewMaterializer(walletauth.NewMemorySessionStore())
		err := m.Commit(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, walletauth.IsInvalidInput(err))
	})

	t.Run("store failure is a partial failure", func(t *testing.T) {
		store := new(MockSessionStore)
		store.On("SetSessionValue", mock.Anything, walletauth.StorageUserSession, mock.Anything).
			Return(errors.New("disk full"))

		m := walletauth.NewMaterializer(store)
		err := m.Commit(context.Background(), &walletauth.User{UserID: "u1"})
		require.Error(t, err)
		assert.True(t, walletauth.IsPartialFailure(err))
	})

	t.Run("hydrate with no session returns nil", func(t *testing.T) {
		m := walletauth.NewMaterializer(walletauth.NewMemorySessionStore())
		user, err := m.Hydrate(context.Background())
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("clear drops the session", func(t *testing.T) {
		store := walletauth.NewMemorySessionStore()
		m := walletauth.NewMaterializer(store)

		require.NoError(t, m.Commit(context.Background(), &walletauth.User{UserID: "u1"}))
		require.NoError(t, m.Clear(context.Background()))

		user, err := m.Hydrate(context.Background())
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestReadSessionExpired(t *testing.T) {
	now := time.Now()

	var nilUser *walletauth.User
	assert.False(t, nilUser.ReadSessionExpired(now))

	noRead := &walletauth.User{UserID: "u1"}
	assert.False(t, noRead.ReadSessionExpired(now))

	zeroExpiry := &walletauth.User{
		Session: walletauth.SessionInfo{Read: &walletauth.ReadOnlySession{Token: "t"}},
	}
	assert.False(t, zeroExpiry.ReadSessionExpired(now))

	expired := &walletauth.User{
		Session: walletauth.SessionInfo{Read: &walletauth.ReadOnlySession{
			Token:  "t",
			Expiry: now.Add(-time.Minute).Unix(),
		}},
	}
	assert.True(t, expired.ReadSessionExpired(now))

	live := &walletauth.User{
		Session: walletauth.SessionInfo{Read: &walletauth.ReadOnlySession{
			Token:  "t",
			Expiry: now.Add(time.Hour).Unix(),
		}},
	}
	assert.False(t, live.ReadSessionExpired(now))
}
