package walletauth

import (
	"context"
	"net/mail"
	"strings"
)

// Identifier is a tagged filter-kind/filter-value pair. Constructors pin the
// kind at the call site so lookups never probe value shapes at runtime.
type Identifier struct {
	kind  FilterKind
	value string
}

// ByEmail builds an email identifier.
func ByEmail(email string) Identifier {
	return Identifier{kind: FilterEmail, value: strings.TrimSpace(email)}
}

// ByUsername builds a username identifier.
func ByUsername(username string) Identifier {
	return Identifier{kind: FilterUsername, value: strings.TrimSpace(username)}
}

// ByPublicKey builds a public-key identifier.
func ByPublicKey(publicKey string) Identifier {
	return Identifier{kind: FilterPublicKey, value: strings.TrimSpace(publicKey)}
}

// ByOIDCToken builds an OIDC-token identifier.
func ByOIDCToken(token string) Identifier {
	return Identifier{kind: FilterOIDCToken, value: strings.TrimSpace(token)}
}

// ParseIdentifier classifies a free-form login identifier as an email or a
// username. Anything that parses as an RFC 5322 address is an email.
func ParseIdentifier(identifier string) Identifier {
	trimmed := strings.TrimSpace(identifier)
	if isEmail(trimmed) {
		return Identifier{kind: FilterEmail, value: trimmed}
	}
	return Identifier{kind: FilterUsername, value: trimmed}
}

func (i Identifier) Kind() FilterKind { return i.kind }

func (i Identifier) Value() string { return i.value }

func (i Identifier) IsZero() bool { return i.kind == "" || i.value == "" }

// DirectoryField maps the identifier onto the directory column it is unique
// on. Public keys and OIDC tokens have no directory column.
func (i Identifier) DirectoryField() (DirectoryField, bool) {
	switch i.kind {
	case FilterEmail:
		return FieldEmail, true
	case FilterUsername:
		return FieldUsername, true
	default:
		return "", false
	}
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Resolver maps identifiers to sub-organization ids via the key-management
// service's directory search. Pure read-only lookup: "no match" is a normal
// empty result, not an error.
type Resolver struct {
	manager KeyManager
	logger  Logger
}

// NewResolver returns a Resolver backed by the given KeyManager.
func NewResolver(manager KeyManager) *Resolver {
	return &Resolver{
		manager: manager,
		logger:  defLogger{},
	}
}

func (r *Resolver) WithLogger(logger Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// SubOrganizationID returns the sub-organization id matching the identifier,
// or "" when nothing matches. A non-nil error means the lookup itself failed;
// callers distinguish "not found" from "lookup failed" on their own.
func (r *Resolver) SubOrganizationID(ctx context.Context, id Identifier) (string, error) {
	if id.IsZero() {
		return "", ErrInvalidInput.WithMetadata(map[string]any{
			"reason": "empty identifier",
		})
	}

	ids, err := r.manager.SubOrganizationIDs(ctx, id.Kind(), id.Value())
	if err != nil {
		r.logger.Error("sub-organization lookup failed", "kind", id.Kind(), "error", err)
		return "", wrapService(err, "sub-organization lookup failed")
	}

	if len(ids) == 0 {
		return "", nil
	}

	return ids[0], nil
}

// Exists reports whether the identifier maps to a sub-organization.
func (r *Resolver) Exists(ctx context.Context, id Identifier) (bool, error) {
	orgID, err := r.SubOrganizationID(ctx, id)
	if err != nil {
		return false, err
	}
	return orgID != "", nil
}
