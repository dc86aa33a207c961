package walletauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ClaimUsernameMessage reserves a username for an account that completed
// email or wallet auth before choosing one.
type ClaimUsernameMessage struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	OnResponse func(*Account)
}

func (e ClaimUsernameMessage) Type() string { return "account.claim_username" }

type ClaimUsernameHandler struct {
	repo RepositoryManager
}

func NewClaimUsernameHandler(repo RepositoryManager) *ClaimUsernameHandler {
	return &ClaimUsernameHandler{repo: repo}
}

func (h *ClaimUsernameHandler) Execute(ctx context.Context, event ClaimUsernameMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during username claim",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ClaimUsernameHandler) execute(ctx context.Context, event ClaimUsernameMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var account *Account

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// The uniqueness check and the write share the transaction so two
		// concurrent claims on the same name cannot both pass.
		taken, _, err := h.repo.Accounts().ExistsByFieldTx(ctx, tx, FieldUsername, event.Username)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "username check failed")
		}
		if taken {
			return ErrDuplicateEntry.WithMetadata(map[string]any{
				"username": event.Username,
			})
		}

		if account, err = h.repo.Accounts().ClaimUsernameTx(ctx, tx, event.Email, event.Username); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not claim username")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "username claim transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	return nil
}
