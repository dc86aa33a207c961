package walletauth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the directory record for one registered end user. It mirrors a
// sub-organization in the key-management service: OrganizationID must match
// the id returned by any successful login for this account.
//
// Passkey state is a flat boolean; the authenticator itself lives in the
// key-management service and is never persisted locally.
type Account struct {
	bun.BaseModel    `bun:"table:accounts,alias:acct"`
	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username         string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email            string     `bun:"email,nullzero,unique" json:"email,omitempty"`
	OrganizationID   string     `bun:"organization_id" json:"organization_id,omitempty"`
	OrganizationName string     `bun:"organization_name" json:"organization_name,omitempty"`
	WalletAddress    string     `bun:"wallet_address" json:"wallet_address,omitempty"`
	HasPasskey       bool       `bun:"has_passkey" json:"has_passkey,omitempty"`
	CreatedAt        *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt        *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasUsername reports whether a durable username has been claimed. Email
// auth can complete before a username is chosen; callers use this to decide
// between the dashboard and the profile-completion route.
func (a *Account) HasUsername() bool {
	return a != nil && strings.TrimSpace(a.Username) != ""
}

// Apply merges a patch into the record, skipping nil members.
func (a *Account) Apply(patch AccountPatch) *Account {
	if a == nil {
		return nil
	}

	if patch.Username != nil {
		a.Username = *patch.Username
	}
	if patch.OrganizationID != nil {
		a.OrganizationID = *patch.OrganizationID
	}
	if patch.OrganizationName != nil {
		a.OrganizationName = *patch.OrganizationName
	}
	if patch.WalletAddress != nil {
		a.WalletAddress = *patch.WalletAddress
	}
	if patch.HasPasskey != nil {
		a.HasPasskey = *patch.HasPasskey
	}

	return a
}
