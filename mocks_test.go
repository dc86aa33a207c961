package walletauth_test

import (
	"context"
	"sync"

	walletauth "github.com/goliatone/go-wallet-auth"
	"github.com/stretchr/testify/mock"
)

// MockKeyManager implements walletauth.KeyManager
type MockKeyManager struct {
	mock.Mock
}

func (m *MockKeyManager) SubOrganizationIDs(ctx context.Context, kind walletauth.FilterKind, value string) ([]string, error) {
	args := m.Called(ctx, kind, value)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKeyManager) CreateSubOrganization(ctx context.Context, req walletauth.CreateSubOrganizationRequest) (*walletauth.SubOrganizationResult, error) {
	args := m.Called(ctx, req)
	if result, ok := args.Get(0).(*walletauth.SubOrganizationResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKeyManager) SendEmailAuthLink(ctx context.Context, email, targetPublicKey, redirectTemplate string) error {
	args := m.Called(ctx, email, targetPublicKey, redirectTemplate)
	return args.Error(0)
}

func (m *MockKeyManager) RegisterAuthenticator(ctx context.Context, organizationID, userID string, credential walletauth.PasskeyCredential) error {
	args := m.Called(ctx, organizationID, userID, credential)
	return args.Error(0)
}

func (m *MockKeyManager) InvalidateSession(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDirectory implements walletauth.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Exists(ctx context.Context, field walletauth.DirectoryField, value string) (bool, *walletauth.Account, error) {
	args := m.Called(ctx, field, value)
	account, _ := args.Get(1).(*walletauth.Account)
	return args.Bool(0), account, args.Error(2)
}

func (m *MockDirectory) Create(ctx context.Context, record *walletauth.Account) (*walletauth.Account, error) {
	args := m.Called(ctx, record)
	if account, ok := args.Get(0).(*walletauth.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) Update(ctx context.Context, email string, patch walletauth.AccountPatch) (*walletauth.Account, error) {
	args := m.Called(ctx, email, patch)
	if account, ok := args.Get(0).(*walletauth.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) FetchDetails(ctx context.Context, email string) (*walletauth.Account, error) {
	args := m.Called(ctx, email)
	if account, ok := args.Get(0).(*walletauth.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPasskeyClient implements walletauth.PasskeyClient
type MockPasskeyClient struct {
	mock.Mock
}

func (m *MockPasskeyClient) CreateUserPasskey(ctx context.Context, displayName string) (*walletauth.PasskeyCredential, error) {
	args := m.Called(ctx, displayName)
	if credential, ok := args.Get(0).(*walletauth.PasskeyCredential); ok {
		return credential, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasskeyClient) Login(ctx context.Context) (*walletauth.LoginResponse, error) {
	args := m.Called(ctx)
	if resp, ok := args.Get(0).(*walletauth.LoginResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockWalletClient implements walletauth.WalletClient
type MockWalletClient struct {
	mock.Mock
}

func (m *MockWalletClient) PublicKey(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockWalletClient) Login(ctx context.Context) (*walletauth.LoginResponse, error) {
	args := m.Called(ctx)
	if resp, ok := args.Get(0).(*walletauth.LoginResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCredentialInjector implements walletauth.CredentialInjector
type MockCredentialInjector struct {
	mock.Mock
}

func (m *MockCredentialInjector) TargetPublicKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockCredentialInjector) InjectCredentialBundle(ctx context.Context, bundle string) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockCredentialInjector) ReadWriteSessionLogin(ctx context.Context, publicKey string) (*walletauth.LoginResponse, error) {
	args := m.Called(ctx, publicKey)
	if resp, ok := args.Get(0).(*walletauth.LoginResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSessionStore implements walletauth.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SetSessionValue(ctx context.Context, key walletauth.StorageKey, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSessionStore) GetSessionValue(ctx context.Context, key walletauth.StorageKey, out any) error {
	args := m.Called(ctx, key, out)
	return args.Error(0)
}

func (m *MockSessionStore) RemoveSessionValue(ctx context.Context, key walletauth.StorageKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// recordingNavigator captures every navigated route in order.
type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.routes))
	copy(out, n.routes)
	return out
}

func (n *recordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

// capturingSink collects every recorded activity event.
type capturingSink struct {
	mu     sync.Mutex
	events []walletauth.ActivityEvent
}

func (s *capturingSink) Record(_ context.Context, event walletauth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *capturingSink) Events() []walletauth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]walletauth.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *capturingSink) Types() []walletauth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]walletauth.ActivityEventType, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event.EventType)
	}
	return out
}
