package walletauth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidInput         = "INVALID_INPUT"
	textCodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	textCodeDuplicateEntry       = "DUPLICATE_ENTRY"
	textCodeOrganizationMismatch = "ORGANIZATION_MISMATCH"
	textCodeNoPasskey            = "NO_PASSKEY_REGISTERED"
	textCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	textCodePartialFailure       = "PARTIAL_FAILURE"
	textCodeOperationInFlight    = "AUTH_OPERATION_IN_FLIGHT"
)

// ErrInvalidInput covers local validation failures. Inputs failing this check
// never reach an external collaborator.
var ErrInvalidInput = goerrors.New("invalid input", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidInput).
	WithCode(goerrors.CodeBadRequest)

// ErrAccountNotFound is returned when an identifier resolves to nothing.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrDuplicateEntry is returned when a username or email is already claimed.
var ErrDuplicateEntry = goerrors.New("username or email already exists", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateEntry).
	WithCode(goerrors.CodeConflict)

// ErrOrganizationMismatch is the trusted-but-verify check: a remote login
// reported success but the returned organization id does not match the
// directory-stored owner of the identifier. Hard fails the attempt.
var ErrOrganizationMismatch = goerrors.New(
	"invalid passkey, make sure you are using the passkey associated with this account",
	goerrors.CategoryAuth,
).
	WithTextCode(textCodeOrganizationMismatch).
	WithCode(goerrors.CodeForbidden)

// ErrNoPasskeyRegistered is returned before any ceremony is invoked when the
// directory record shows no registered passkey.
var ErrNoPasskeyRegistered = goerrors.New("no passkey registered for this account", goerrors.CategoryAuth).
	WithTextCode(textCodeNoPasskey).
	WithCode(goerrors.CodeForbidden)

// ErrServiceUnavailable wraps external calls that threw or returned
// non-success.
var ErrServiceUnavailable = goerrors.New("key management service unavailable", goerrors.CategoryInternal).
	WithTextCode(textCodeServiceUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrPartialFailure flags a multi-step flow that succeeded remotely but
// failed to persist locally (or vice versa). Surfaced distinctly because it
// implies manual reconciliation, e.g. an orphaned sub-organization.
var ErrPartialFailure = goerrors.New("authentication flow partially completed", goerrors.CategoryOperation).
	WithTextCode(textCodePartialFailure).
	WithCode(goerrors.CodeInternal)

// ErrOperationInFlight rejects a second auth operation while one is still
// running. A single orchestrator expects one operation at a time.
var ErrOperationInFlight = goerrors.New("another auth operation is in flight", goerrors.CategoryOperation).
	WithTextCode(textCodeOperationInFlight).
	WithCode(goerrors.CodeConflict)

// IsInvalidInput reports whether err is a local validation failure.
func IsInvalidInput(err error) bool {
	return hasTextCode(err, textCodeInvalidInput)
}

// IsAccountNotFound reports whether err means the identifier resolved to
// nothing.
func IsAccountNotFound(err error) bool {
	return hasTextCode(err, textCodeAccountNotFound) || goerrors.IsNotFound(err)
}

// IsDuplicateEntry reports whether err is a username/email conflict.
func IsDuplicateEntry(err error) bool {
	return hasTextCode(err, textCodeDuplicateEntry)
}

// IsOrganizationMismatch reports whether err is the anti-spoofing check
// failure.
func IsOrganizationMismatch(err error) bool {
	return hasTextCode(err, textCodeOrganizationMismatch)
}

// IsNoPasskeyRegistered reports whether err means the account has no
// registered passkey.
func IsNoPasskeyRegistered(err error) bool {
	return hasTextCode(err, textCodeNoPasskey)
}

// IsPartialFailure reports whether err requires out-of-band reconciliation.
func IsPartialFailure(err error) bool {
	return hasTextCode(err, textCodePartialFailure)
}

// IsServiceUnavailable reports whether err came from a failed external call.
func IsServiceUnavailable(err error) bool {
	return hasTextCode(err, textCodeServiceUnavailable)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}

	return false
}

// wrapService converts a remote failure into ErrServiceUnavailable while
// keeping the cause in the chain.
func wrapService(err error, msg string) error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode != "" {
		return richErr
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(textCodeServiceUnavailable).
		WithCode(goerrors.CodeInternal)
}
