package walletauth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// RepositoryDirectory adapts the Accounts repository onto the narrow
// Directory contract the orchestrator consumes; repository errors are mapped
// into the auth taxonomy at this boundary.
type RepositoryDirectory struct {
	repo   RepositoryManager
	logger Logger
}

var _ Directory = (*RepositoryDirectory)(nil)

// NewRepositoryDirectory returns a Directory backed by the Bun repositories.
func NewRepositoryDirectory(repo RepositoryManager) *RepositoryDirectory {
	return &RepositoryDirectory{
		repo:   repo,
		logger: defLogger{},
	}
}

func (d *RepositoryDirectory) WithLogger(logger Logger) *RepositoryDirectory {
	if logger != nil {
		d.logger = logger
	}
	return d
}

func (d *RepositoryDirectory) Exists(ctx context.Context, field DirectoryField, value string) (bool, *Account, error) {
	exists, record, err := d.repo.Accounts().ExistsByField(ctx, field, value)
	if err != nil {
		return false, nil, d.mapError(err, "existence check failed")
	}
	return exists, record, nil
}

func (d *RepositoryDirectory) Create(ctx context.Context, record *Account) (*Account, error) {
	created, err := d.repo.Accounts().Create(ctx, record)
	if err != nil {
		return nil, d.mapError(err, "account create failed")
	}
	return created, nil
}

func (d *RepositoryDirectory) Update(ctx context.Context, email string, patch AccountPatch) (*Account, error) {
	updated, err := d.repo.Accounts().Patch(ctx, email, patch)
	if err != nil {
		return nil, d.mapError(err, "account update failed")
	}
	return updated, nil
}

func (d *RepositoryDirectory) FetchDetails(ctx context.Context, email string) (*Account, error) {
	record, err := d.repo.Accounts().GetByEmail(ctx, email)
	if err != nil {
		return nil, d.mapError(err, "account fetch failed")
	}
	return record, nil
}

func (d *RepositoryDirectory) mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if repository.IsRecordNotFound(err) {
		return ErrAccountNotFound
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
		return ErrDuplicateEntry
	}

	d.logger.Error("directory error", "error", err)
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
