package docrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/raywall/docstore-toolkit/docdb"
	"github.com/raywall/docstore-toolkit/mapper"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrItemAlreadyExists = errors.New("item already exists")
)

type HookType int

const (
	BeforeCreate HookType = iota
	BeforeUpdate
)

// BeforeSaveHook allows you to create custom validation and/or transformation
// functions which are applied before performing the update or create, allowing
// code injection customized in the docrepo library
type BeforeSaveHook[T any] func(ctx context.Context, item *T, existing *T) error

// Hooks stores the data validations and business logic registered for
// execution before creates and updates
type Hooks[T any] struct {
	BeforeCreate []BeforeSaveHook[T]
	BeforeUpdate []BeforeSaveHook[T]
}

// Service centralizes business logic, data validation and the
// entity⇄document conversion for a single mapped entity type
type Service[T any] struct {
	valid  *validator.Validate
	entity *mapper.EntityMapper
	store  docdb.Store
	keyOf  func(*T) any
	hooks  *Hooks[T]
	log    zerolog.Logger
}

// NewService creates a new Service instance bound to the entity mapper
// registered for *T. keyOf extracts the document key from an entity.
func NewService[T any](reg *mapper.Registry, store docdb.Store, keyOf func(*T) any, log zerolog.Logger) (*Service[T], error) {
	if store == nil || keyOf == nil {
		return nil, ErrInvalidInput
	}
	m, err := mapper.MapperOf[T](reg)
	if err != nil {
		return nil, err
	}
	return &Service[T]{
		valid:  validator.New(),
		entity: m,
		store:  store,
		keyOf:  keyOf,
		hooks: &Hooks[T]{
			BeforeCreate: make([]BeforeSaveHook[T], 0),
			BeforeUpdate: make([]BeforeSaveHook[T], 0),
		},
		log: log,
	}, nil
}

// RegisterHook allows the injection of custom logic for validating and
// handling the request
func (s *Service[T]) RegisterHook(hookType HookType, fn BeforeSaveHook[T]) {
	switch hookType {
	case BeforeCreate:
		s.hooks.BeforeCreate = append(s.hooks.BeforeCreate, fn)
	case BeforeUpdate:
		s.hooks.BeforeUpdate = append(s.hooks.BeforeUpdate, fn)
	}
}

// RegisterValidation allows adding custom validation rules to validator
func (s *Service[T]) RegisterValidation(name string, fn validator.Func) error {
	return s.valid.RegisterValidation(name, fn)
}

// Get retrieves an entity through its document key.
// Returns ErrInvalidInput if the key is nil.
func (s *Service[T]) Get(ctx context.Context, id any) (*T, error) {
	if id == nil {
		return nil, ErrInvalidInput
	}
	doc, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, docdb.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return s.materialize(doc)
}

// List returns a page of entities (Scan operation) and the cursor for
// pagination
func (s *Service[T]) List(ctx context.Context, token string, limit int32) ([]*T, string, error) {
	docs, next, err := s.store.FindAll(ctx, token, limit)
	if err != nil {
		return nil, "", err
	}
	items := make([]*T, 0, len(docs))
	for _, doc := range docs {
		item, err := s.materialize(doc)
		if err != nil {
			return nil, "", err
		}
		items = append(items, item)
	}
	return items, next, nil
}

// Create validates the struct according to the `validate` tags, maps it to a
// document and persists it. Returns ErrItemAlreadyExists on key collision.
func (s *Service[T]) Create(ctx context.Context, item *T) error {
	if item == nil {
		return ErrInvalidInput
	}
	if err := s.valid.StructCtx(ctx, *item); err != nil {
		return err
	}
	for _, hook := range s.hooks.BeforeCreate {
		if err := hook(ctx, item, nil); err != nil {
			return err
		}
	}
	doc, err := s.document(item)
	if err != nil {
		return err
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		if errors.Is(err, docdb.ErrDuplicateID) {
			return ErrItemAlreadyExists
		}
		return err
	}
	return nil
}

// Update validates the entity and overwrites the stored document. The current
// stored version is loaded and offered to the BeforeUpdate hooks.
func (s *Service[T]) Update(ctx context.Context, item *T) error {
	if item == nil {
		return ErrInvalidInput
	}
	if err := s.valid.StructCtx(ctx, *item); err != nil {
		return err
	}

	existing, err := s.Get(ctx, s.keyOf(item))
	if err != nil {
		return err
	}
	for _, hook := range s.hooks.BeforeUpdate {
		if err := hook(ctx, item, existing); err != nil {
			return err
		}
	}
	doc, err := s.document(item)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, doc); err != nil {
		if errors.Is(err, docdb.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

// Delete removes an entity based on its document key
func (s *Service[T]) Delete(ctx context.Context, id any) error {
	if id == nil {
		return ErrInvalidInput
	}
	return s.store.Remove(ctx, id)
}

// Count returns the total number of stored documents
func (s *Service[T]) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// document converte a entidade para a forma persistida, injetando a chave do
// documento. Erros de conversão impedem a escrita: documento parcial nunca é
// persistido.
func (s *Service[T]) document(item *T) (mapper.Document, error) {
	raw, err := s.entity.ToDB(item)
	if err != nil {
		return nil, fmt.Errorf("docrepo: map to document failed: %w", err)
	}
	doc, ok := raw.(mapper.Document)
	if !ok || doc == nil {
		return nil, fmt.Errorf("docrepo: entity mapped to no document")
	}
	if _, ok := doc[mapper.FieldID]; !ok {
		doc[mapper.FieldID] = s.keyOf(item)
	}
	return doc, nil
}

// materialize converte o documento lido de volta para a entidade. Problemas
// não fatais (desvio de esquema) são logados e a entidade parcial é devolvida.
func (s *Service[T]) materialize(doc mapper.Document) (*T, error) {
	v, err := s.entity.FromDB(doc)
	if v == nil {
		if err == nil {
			err = ErrItemNotFound
		}
		return nil, fmt.Errorf("docrepo: map from document failed: %w", err)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("entity", s.entity.Name()).Msg("document mapped with issues")
	}
	item, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf("docrepo: mapped entity is %T, not the service type", v)
	}
	return item, nil
}
