package walletauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the directory record store backing the Directory interface.
type Accounts interface {
	repository.Repository[*Account]

	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error)
	GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error)

	ExistsByField(ctx context.Context, field DirectoryField, value string) (bool, *Account, error)
	ExistsByFieldTx(ctx context.Context, tx bun.IDB, field DirectoryField, value string) (bool, *Account, error)

	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	GetOrCreate(ctx context.Context, record *Account) (*Account, error)
	GetOrCreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)

	Patch(ctx context.Context, email string, patch AccountPatch) (*Account, error)
	PatchTx(ctx context.Context, tx bun.IDB, email string, patch AccountPatch) (*Account, error)
	ClaimUsername(ctx context.Context, email, username string) (*Account, error)
	ClaimUsernameTx(ctx context.Context, tx bun.IDB, email, username string) (*Account, error)
	MarkPasskeyRegistered(ctx context.Context, email string, registered bool) (*Account, error)
	MarkPasskeyRegisteredTx(ctx context.Context, tx bun.IDB, email string, registered bool) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

// GetByIdentifierTx looks a record up by id, email, or username depending on
// the identifier's shape, trying the most specific column first.
func (a *accounts) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	for _, opt := range resolveAccountIdentifier(identifier) {
		record := &Account{}
		q := tx.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return a.getByColumnTx(ctx, tx, "email", email)
}

func (a *accounts) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *accounts) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error) {
	return a.getByColumnTx(ctx, tx, "username", username)
}

func (a *accounts) getByColumnTx(ctx context.Context, tx bun.IDB, column, value string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) ExistsByField(ctx context.Context, field DirectoryField, value string) (bool, *Account, error) {
	return a.ExistsByFieldTx(ctx, a.db, field, value)
}

func (a *accounts) ExistsByFieldTx(ctx context.Context, tx bun.IDB, field DirectoryField, value string) (bool, *Account, error) {
	var record *Account
	var err error

	switch field {
	case FieldEmail:
		record, err = a.GetByEmailTx(ctx, tx, value)
	case FieldUsername:
		record, err = a.GetByUsernameTx(ctx, tx, value)
	default:
		return false, nil, ErrInvalidInput.WithMetadata(map[string]any{
			"field": string(field),
		})
	}

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil, nil
		}
		return false, nil, err
	}

	return true, record, nil
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accounts) GetOrCreate(ctx context.Context, record *Account) (*Account, error) {
	return a.GetOrCreateTx(ctx, a.db, record)
}

func (a *accounts) GetOrCreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	identifier := record.Email
	if record.ID != uuid.Nil {
		identifier = record.ID.String()
	}

	existing, err := a.GetByIdentifierTx(ctx, tx, identifier)
	if err == nil {
		return existing, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return a.CreateTx(ctx, tx, record)
}

func (a *accounts) Patch(ctx context.Context, email string, patch AccountPatch) (*Account, error) {
	return a.PatchTx(ctx, a.db, email, patch)
}

func (a *accounts) PatchTx(ctx context.Context, tx bun.IDB, email string, patch AccountPatch) (*Account, error) {
	record, err := a.GetByEmailTx(ctx, tx, email)
	if err != nil {
		return nil, err
	}

	record.Apply(patch)

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
}

func (a *accounts) ClaimUsername(ctx context.Context, email, username string) (*Account, error) {
	return a.ClaimUsernameTx(ctx, a.db, email, username)
}

func (a *accounts) ClaimUsernameTx(ctx context.Context, tx bun.IDB, email, username string) (*Account, error) {
	return a.PatchTx(ctx, tx, email, AccountPatch{Username: &username})
}

func (a *accounts) MarkPasskeyRegistered(ctx context.Context, email string, registered bool) (*Account, error) {
	return a.MarkPasskeyRegisteredTx(ctx, a.db, email, registered)
}

func (a *accounts) MarkPasskeyRegisteredTx(ctx context.Context, tx bun.IDB, email string, registered bool) (*Account, error) {
	return a.PatchTx(ctx, tx, email, AccountPatch{HasPasskey: &registered})
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.Username = strings.TrimSpace(record.Username)
	record.Email = strings.TrimSpace(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveAccountIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 3)

	if isUUID(trimmed) {
		options = append(options, identifierOption{column: "id", value: trimmed})
	}

	if isEmail(trimmed) {
		options = append(options, identifierOption{column: "email", value: trimmed})
	}

	options = append(options, identifierOption{column: "username", value: trimmed})

	return options
}

func isUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}
