package docrepo

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/docstore-toolkit/docdb"
	"github.com/raywall/docstore-toolkit/mapper"
)

type account struct {
	ID    string `validate:"required"`
	Email string `validate:"required,email"`
	Plan  string
}

func newAccountRegistry(t *testing.T) *mapper.Registry {
	t.Helper()

	m := mapper.NewEntity[account]("account",
		mapper.NewField("id", mapper.String,
			func(a *account) string { return a.ID },
			func(a *account, v string) *account { a.ID = v; return a }),
		mapper.NewField("email", mapper.String,
			func(a *account) string { return a.Email },
			func(a *account, v string) *account { a.Email = v; return a }),
		mapper.NewField("plan", mapper.String,
			func(a *account) string { return a.Plan },
			func(a *account, v string) *account { a.Plan = v; return a }),
	)

	reg := mapper.NewRegistry()
	require.NoError(t, reg.Register(m))
	return reg
}

func newAccountService(t *testing.T, store docdb.Store) *Service[account] {
	t.Helper()

	service, err := NewService[account](newAccountRegistry(t), store,
		func(a *account) any { return a.ID }, zerolog.Nop())
	require.NoError(t, err)
	return service
}

func TestService_Create(t *testing.T) {
	t.Run("should persist the mapped document with the key injected", func(t *testing.T) {
		var saved mapper.Document
		store := &docdb.MockStore{
			InsertFn: func(ctx context.Context, doc mapper.Document) error {
				saved = doc
				return nil
			},
		}
		service := newAccountService(t, store)

		err := service.Create(context.Background(), &account{ID: "a1", Email: "a@b.com", Plan: "pro"})
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.Equal(t, "a1", saved[mapper.FieldID])
		assert.Equal(t, "a@b.com", saved["email"])
		assert.Equal(t, "pro", saved["plan"])
	})

	t.Run("should return error when item is invalid", func(t *testing.T) {
		service := newAccountService(t, &docdb.MockStore{})

		err := service.Create(context.Background(), &account{ID: "a1", Email: "não é email"})
		assert.Error(t, err)
	})

	t.Run("should translate key collision into ErrItemAlreadyExists", func(t *testing.T) {
		store := &docdb.MockStore{
			InsertFn: func(ctx context.Context, doc mapper.Document) error {
				return docdb.ErrDuplicateID
			},
		}
		service := newAccountService(t, store)

		err := service.Create(context.Background(), &account{ID: "a1", Email: "a@b.com"})
		assert.Equal(t, ErrItemAlreadyExists, err)
	})

	t.Run("should run BeforeCreate hooks before persisting", func(t *testing.T) {
		store := &docdb.MockStore{
			InsertFn: func(ctx context.Context, doc mapper.Document) error {
				assert.Equal(t, "free", doc["plan"])
				return nil
			},
		}
		service := newAccountService(t, store)
		service.RegisterHook(BeforeCreate, func(ctx context.Context, item, existing *account) error {
			if item.Plan == "" {
				item.Plan = "free"
			}
			return nil
		})

		err := service.Create(context.Background(), &account{ID: "a1", Email: "a@b.com"})
		require.NoError(t, err)
	})

	t.Run("should fail validation for custom rule", func(t *testing.T) {
		service := newAccountService(t, &docdb.MockStore{})
		err := service.RegisterValidation("is-admin", func(fl validator.FieldLevel) bool {
			return fl.Field().String() == "admin"
		})
		assert.NoError(t, err)
	})
}

func TestService_Get(t *testing.T) {
	t.Run("should materialize the stored document", func(t *testing.T) {
		store := &docdb.MockStore{
			FindFn: func(ctx context.Context, id any) (mapper.Document, error) {
				assert.Equal(t, "a1", id)
				return mapper.Document{
					mapper.FieldID: "a1",
					"id":           "a1",
					"email":        "a@b.com",
					"plan":         "pro",
				}, nil
			},
		}
		service := newAccountService(t, store)

		item, err := service.Get(context.Background(), "a1")
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", item.Email)
		assert.Equal(t, "pro", item.Plan)
	})

	t.Run("should return ErrInvalidInput when the key is missing", func(t *testing.T) {
		service := newAccountService(t, &docdb.MockStore{})
		_, err := service.Get(context.Background(), nil)
		assert.Equal(t, ErrInvalidInput, err)
	})

	t.Run("should return ErrItemNotFound for a missing document", func(t *testing.T) {
		service := newAccountService(t, &docdb.MockStore{})
		_, err := service.Get(context.Background(), "nope")
		assert.Equal(t, ErrItemNotFound, err)
	})

	t.Run("should tolerate schema drift in the stored document", func(t *testing.T) {
		store := &docdb.MockStore{
			FindFn: func(ctx context.Context, id any) (mapper.Document, error) {
				return mapper.Document{
					mapper.FieldID: "a1",
					"id":           "a1",
					"email":        "a@b.com",
					"legacy":       true,
				}, nil
			},
		}
		service := newAccountService(t, store)

		item, err := service.Get(context.Background(), "a1")
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", item.Email)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("should offer the stored version to BeforeUpdate hooks", func(t *testing.T) {
		store := &docdb.MockStore{
			FindFn: func(ctx context.Context, id any) (mapper.Document, error) {
				return mapper.Document{mapper.FieldID: "a1", "id": "a1", "email": "old@b.com"}, nil
			},
			UpdateFn: func(ctx context.Context, doc mapper.Document) error {
				assert.Equal(t, "new@b.com", doc["email"])
				return nil
			},
		}
		service := newAccountService(t, store)

		var sawExisting *account
		service.RegisterHook(BeforeUpdate, func(ctx context.Context, item, existing *account) error {
			sawExisting = existing
			return nil
		})

		err := service.Update(context.Background(), &account{ID: "a1", Email: "new@b.com"})
		require.NoError(t, err)
		require.NotNil(t, sawExisting)
		assert.Equal(t, "old@b.com", sawExisting.Email)
	})

	t.Run("should return ErrItemNotFound when the item never existed", func(t *testing.T) {
		service := newAccountService(t, &docdb.MockStore{})
		err := service.Update(context.Background(), &account{ID: "a1", Email: "a@b.com"})
		assert.Equal(t, ErrItemNotFound, err)
	})
}

func TestService_List(t *testing.T) {
	store := &docdb.MockStore{
		FindAllFn: func(ctx context.Context, token string, limit int32) ([]mapper.Document, string, error) {
			return []mapper.Document{
				{mapper.FieldID: "a1", "id": "a1", "email": "a@b.com"},
				{mapper.FieldID: "a2", "id": "a2", "email": "c@d.com"},
			}, "next-token", nil
		},
	}
	service := newAccountService(t, store)

	items, token, err := service.List(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "next-token", token)
	assert.Equal(t, "c@d.com", items[1].Email)
}

func TestService_Delete(t *testing.T) {
	t.Run("should reject a nil key", func(t *testing.T) {
		service := newAccountService(t, &docdb.MockStore{})
		assert.Equal(t, ErrInvalidInput, service.Delete(context.Background(), nil))
	})

	t.Run("should remove by key", func(t *testing.T) {
		removed := false
		store := &docdb.MockStore{
			RemoveFn: func(ctx context.Context, id any) error {
				removed = true
				return nil
			},
		}
		service := newAccountService(t, store)
		require.NoError(t, service.Delete(context.Background(), "a1"))
		assert.True(t, removed)
	})
}
