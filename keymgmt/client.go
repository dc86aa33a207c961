// Package keymgmt implements the REST client for the remote key-management
// service: sub-organization lookup and creation, email auth links,
// authenticator registration, and session invalidation.
package keymgmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	walletauth "github.com/goliatone/go-wallet-auth"
)

const (
	pathListSubOrganizations  = "/v1/query/list_suborgs"
	pathCreateSubOrganization = "/v1/submit/create_sub_organization"
	pathEmailAuth             = "/v1/submit/email_auth"
	pathCreateAuthenticators  = "/v1/submit/create_authenticators"
	pathInvalidateSession     = "/v1/submit/invalidate_session"
)

// Config holds key-management client configuration.
type Config struct {
	BaseURL        string
	OrganizationID string
	AppName        string

	Stamper    Stamper
	HTTPClient *http.Client
}

// Client talks to the key-management service. It implements
// walletauth.KeyManager.
type Client struct {
	config     Config
	httpClient *http.Client
}

var _ walletauth.KeyManager = (*Client)(nil)

// New creates a key-management client.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config:     cfg,
		httpClient: client,
	}
}

// SubOrganizationIDs implements walletauth.KeyManager.
func (c *Client) SubOrganizationIDs(ctx context.Context, kind walletauth.FilterKind, value string) ([]string, error) {
	payload := listSubOrgsRequest{
		OrganizationID: c.config.OrganizationID,
		FilterType:     string(kind),
		FilterValue:    value,
	}

	var result listSubOrgsResponse
	if err := c.submit(ctx, "list_suborgs", pathListSubOrganizations, payload, &result); err != nil {
		return nil, err
	}

	return result.OrganizationIDs, nil
}

// CreateSubOrganization implements walletauth.KeyManager. The new
// sub-organization gets exactly one root user and a default wallet account.
func (c *Client) CreateSubOrganization(ctx context.Context, req walletauth.CreateSubOrganizationRequest) (*walletauth.SubOrganizationResult, error) {
	name := req.Username
	if name == "" {
		name = req.Email
	}

	rootUser := rootUserParams{
		UserName:  name,
		UserEmail: req.Email,
	}

	if req.Passkey != nil {
		rootUser.Authenticators = append(rootUser.Authenticators, authenticatorParams{
			AuthenticatorName: "Default Passkey",
			Challenge:         req.Passkey.Challenge,
			Attestation:       req.Passkey.Attestation,
		})
	}

	if req.PublicKey != "" {
		rootUser.APIKeys = append(rootUser.APIKeys, apiKeyParams{
			APIKeyName: fmt.Sprintf("Wallet Auth - %s", req.PublicKey),
			PublicKey:  req.PublicKey,
			CurveType:  "API_KEY_CURVE_SECP256K1",
		})
	}

	payload := createSubOrgRequest{
		OrganizationID:      c.config.OrganizationID,
		SubOrganizationName: name,
		RootUsers:           []rootUserParams{rootUser},
		RootQuorumThreshold: 1,
		Wallet: walletParams{
			WalletName: "Default Wallet",
			Accounts:   defaultEthereumAccounts(),
		},
	}

	var result createSubOrgResponse
	if err := c.submit(ctx, "create_sub_organization", pathCreateSubOrganization, payload, &result); err != nil {
		return nil, err
	}

	out := &walletauth.SubOrganizationResult{
		SubOrganizationID:   result.SubOrganizationID,
		SubOrganizationName: name,
		RootUserIDs:         result.RootUserIDs,
	}
	if len(result.Wallet.Addresses) > 0 {
		out.WalletAddress = result.Wallet.Addresses[0]
	}

	return out, nil
}

// SendEmailAuthLink implements walletauth.KeyManager.
func (c *Client) SendEmailAuthLink(ctx context.Context, email, targetPublicKey, redirectTemplate string) error {
	ids, err := c.SubOrganizationIDs(ctx, walletauth.FilterEmail, email)
	if err != nil {
		return err
	}

	orgID := c.config.OrganizationID
	if len(ids) > 0 {
		orgID = ids[0]
	}

	payload := emailAuthRequest{
		OrganizationID:  orgID,
		Email:           email,
		TargetPublicKey: targetPublicKey,
		APIKeyName:      fmt.Sprintf("Email Auth - %s", c.config.AppName),
		MagicLink:       redirectTemplate,
	}

	return c.submit(ctx, "email_auth", pathEmailAuth, payload, nil)
}

// RegisterAuthenticator implements walletauth.KeyManager.
func (c *Client) RegisterAuthenticator(ctx context.Context, organizationID, userID string, credential walletauth.PasskeyCredential) error {
	payload := createAuthenticatorsRequest{
		OrganizationID: organizationID,
		UserID:         userID,
		Authenticators: []authenticatorParams{{
			AuthenticatorName: "Passkey",
			Challenge:         credential.Challenge,
			Attestation:       credential.Attestation,
		}},
	}

	return c.submit(ctx, "create_authenticators", pathCreateAuthenticators, payload, nil)
}

// InvalidateSession implements walletauth.KeyManager.
func (c *Client) InvalidateSession(ctx context.Context) error {
	payload := invalidateSessionRequest{
		OrganizationID: c.config.OrganizationID,
	}

	return c.submit(ctx, "invalidate_session", pathInvalidateSession, payload, nil)
}

// submit POSTs a stamped JSON payload and decodes the activity envelope into
// out when the call succeeds.
func (c *Client) submit(ctx context.Context, operation, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.config.Stamper != nil {
		if err := c.config.Stamper.Stamp(req, body); err != nil {
			return serviceError(operation, 0, "stamp_failed", "failed to stamp request", err, nil)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return serviceError(operation, 0, "transport", "request failed", err, nil)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return serviceError(operation, resp.StatusCode, "read_failed", "failed to read response", err, nil)
	}

	if resp.StatusCode != http.StatusOK {
		code, message, meta := parseServiceError(raw)
		return serviceError(operation, resp.StatusCode, code, message, nil, meta)
	}

	if out == nil {
		return nil
	}

	var envelope activityEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return serviceError(operation, resp.StatusCode, "invalid_response", "failed to decode response", err, nil)
	}

	result := envelope.Activity.Result
	if len(result) == 0 {
		// Query endpoints answer without the activity wrapper.
		result = raw
	}

	if err := json.Unmarshal(result, out); err != nil {
		return serviceError(operation, resp.StatusCode, "invalid_response", "failed to decode result", err, nil)
	}

	return nil
}

type listSubOrgsRequest struct {
	OrganizationID string `json:"organizationId"`
	FilterType     string `json:"filterType"`
	FilterValue    string `json:"filterValue"`
}

type listSubOrgsResponse struct {
	OrganizationIDs []string `json:"organizationIds"`
}

type authenticatorParams struct {
	AuthenticatorName string `json:"authenticatorName"`
	Challenge         string `json:"challenge"`
	Attestation       []byte `json:"attestation"`
}

type apiKeyParams struct {
	APIKeyName string `json:"apiKeyName"`
	PublicKey  string `json:"publicKey"`
	CurveType  string `json:"curveType"`
}

type rootUserParams struct {
	UserName       string                `json:"userName"`
	UserEmail      string                `json:"userEmail,omitempty"`
	Authenticators []authenticatorParams `json:"authenticators"`
	APIKeys        []apiKeyParams        `json:"apiKeys"`
}

type walletAccountParams struct {
	Curve         string `json:"curve"`
	PathFormat    string `json:"pathFormat"`
	Path          string `json:"path"`
	AddressFormat string `json:"addressFormat"`
}

type walletParams struct {
	WalletName string                `json:"walletName"`
	Accounts   []walletAccountParams `json:"accounts"`
}

func defaultEthereumAccounts() []walletAccountParams {
	return []walletAccountParams{{
		Curve:         "CURVE_SECP256K1",
		PathFormat:    "PATH_FORMAT_BIP32",
		Path:          "m/44'/60'/0'/0/0",
		AddressFormat: "ADDRESS_FORMAT_ETHEREUM",
	}}
}

type createSubOrgRequest struct {
	OrganizationID      string            `json:"organizationId"`
	SubOrganizationName string            `json:"subOrganizationName"`
	RootUsers           []rootUserParams  `json:"rootUsers"`
	RootQuorumThreshold int               `json:"rootQuorumThreshold"`
	Wallet              walletParams      `json:"wallet"`
	Tags                map[string]string `json:"tags,omitempty"`
}

type createSubOrgResponse struct {
	SubOrganizationID string   `json:"subOrganizationId"`
	RootUserIDs       []string `json:"rootUserIds"`
	Wallet            struct {
		WalletID  string   `json:"walletId"`
		Addresses []string `json:"addresses"`
	} `json:"wallet"`
}

type emailAuthRequest struct {
	OrganizationID  string `json:"organizationId"`
	Email           string `json:"email"`
	TargetPublicKey string `json:"targetPublicKey"`
	APIKeyName      string `json:"apiKeyName"`
	MagicLink       string `json:"magicLink"`
}

type createAuthenticatorsRequest struct {
	OrganizationID string                `json:"organizationId"`
	UserID         string                `json:"userId"`
	Authenticators []authenticatorParams `json:"authenticators"`
}

type invalidateSessionRequest struct {
	OrganizationID string `json:"organizationId"`
}

type activityEnvelope struct {
	Activity struct {
		ID     string          `json:"id"`
		Status string          `json:"status"`
		Result json.RawMessage `json:"result"`
	} `json:"activity"`
}

type serviceErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func parseServiceError(body []byte) (string, string, map[string]any) {
	var plain serviceErrorResponse
	if err := json.Unmarshal(body, &plain); err == nil && (plain.Code != "" || plain.Message != "") {
		return plain.Code, plain.Message, map[string]any{
			"code":    plain.Code,
			"message": plain.Message,
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "key management request failed"
	}

	return "", msg, nil
}
