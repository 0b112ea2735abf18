package mapper

import (
	"math"
	"reflect"
	"strings"
)

// NoMaxVersion é o limite superior aberto da janela de versões de um campo ou
// super-entidade.
const NoMaxVersion = math.MaxInt

// BindMode define como um Field acessa a propriedade da entidade.
type BindMode int

const (
	// BindAccessor usa getter e setter em tempo de execução.
	BindAccessor BindMode = iota
	// BindConstructor injeta o valor via construtor da entidade; o campo
	// nunca expõe um setter de runtime (o getter segue disponível para a
	// escrita).
	BindConstructor
)

// Field vincula uma chave do documento a exatamente uma propriedade da
// entidade, através de um ValueMapper e de closures de acesso.
//
// As closures são resolvidas uma única vez, na declaração — nunca há
// re-resolução por conversão. Um Field é imutável depois de inicializado e
// pertence a exatamente um EntityMapper.
type Field struct {
	name   string
	mapper ValueMapper
	mode   BindMode

	get func(entity any) any
	set func(entity any, v any) any

	minVersion int
	maxVersion int

	owner       *EntityMapper
	initialized bool
}

// NewField cria um campo com getter e setter. O setter pode devolver uma nova
// instância da entidade, suportando tanto objetos mutáveis quanto imutáveis.
func NewField[E, V any](name string, m ValueMapper, get func(E) V, set func(E, V) E) *Field {
	f := newField(name, m, BindAccessor)
	f.get = func(e any) any { return get(e.(E)) }
	f.set = func(e any, v any) any { return set(e.(E), v.(V)) }
	return f
}

// NewPtrField cria um campo para uma propriedade opcional representada por
// ponteiro: ponteiro nil lê/escreve como valor nulo (chave omitida).
func NewPtrField[E, V any](name string, m ValueMapper, get func(E) *V, set func(E, *V) E) *Field {
	f := newField(name, m, BindAccessor)
	f.get = func(e any) any {
		p := get(e.(E))
		if p == nil {
			return nil
		}
		return *p
	}
	f.set = func(e any, v any) any {
		val := v.(V)
		return set(e.(E), &val)
	}
	return f
}

// NewSliceField cria um campo de coleção ordenada sobre o mapper de elemento
// informado.
func NewSliceField[E, V any](name string, elem ValueMapper, get func(E) []V, set func(E, []V) E) *Field {
	f := newField(name, NewCollection(elem), BindAccessor)
	f.get = func(e any) any {
		vs := get(e.(E))
		if vs == nil {
			return nil
		}
		out := make([]any, len(vs))
		for i, v := range vs {
			out[i] = v
		}
		return out
	}
	f.set = func(e any, v any) any {
		raw := v.([]any)
		vs := make([]V, len(raw))
		for i, rv := range raw {
			vs[i] = rv.(V)
		}
		return set(e.(E), vs)
	}
	return f
}

// NewConstructorField cria um campo vinculado ao construtor da entidade: o
// valor lido do documento é passado como argumento do construtor, na posição
// correspondente à ordem do constructor-field-extent.
func NewConstructorField[E, V any](name string, m ValueMapper, get func(E) V) *Field {
	f := newField(name, m, BindConstructor)
	f.get = func(e any) any { return get(e.(E)) }
	return f
}

func newField(name string, m ValueMapper, mode BindMode) *Field {
	return &Field{
		name:       name,
		mapper:     m,
		mode:       mode,
		minVersion: 0,
		maxVersion: NoMaxVersion,
	}
}

// Versions restringe o campo à janela inclusiva [min, max] de versões de
// esquema. O padrão é [0, NoMaxVersion].
func (f *Field) Versions(min, max int) *Field {
	f.minVersion = min
	f.maxVersion = max
	return f
}

// Name retorna a chave do documento vinculada ao campo.
func (f *Field) Name() string { return f.name }

// Mapper retorna o ValueMapper do campo.
func (f *Field) Mapper() ValueMapper { return f.mapper }

// ConstructorBound informa se o campo é injetado via construtor.
func (f *Field) ConstructorBound() bool { return f.mode == BindConstructor }

// Compatible informa se o campo participa da versão de esquema informada.
func (f *Field) Compatible(version int) bool {
	return f.minVersion <= version && version <= f.maxVersion
}

// initialize valida o campo e resolve mappers de entidade aninhados.
// Idempotente; um campo não pode ser compartilhado entre dois EntityMappers.
func (f *Field) initialize(owner *EntityMapper, reg *Registry) error {
	if f.initialized {
		if f.owner != owner {
			return schemaErrorf("field %q is already bound to entity %s", f.name, f.owner.Name())
		}
		return nil
	}
	if strings.TrimSpace(f.name) == "" {
		return schemaErrorf("entity %s declares a field with an empty name", owner.Name())
	}
	if strings.TrimSpace(f.name) != f.name {
		return schemaErrorf("field name %q has surrounding whitespace", f.name)
	}
	if f.mapper == nil {
		return schemaErrorf("field %q of entity %s has no mapper", f.name, owner.Name())
	}
	if f.minVersion > f.maxVersion {
		return schemaErrorf("field %q has an inverted version window [%d, %d]", f.name, f.minVersion, f.maxVersion)
	}
	if err := resolveNested(f.mapper, reg); err != nil {
		return err
	}
	f.owner = owner
	f.initialized = true
	return nil
}

// resolveNested garante que mappers de entidade usados como mapper de campo
// (diretos ou como elemento de coleção) estejam registrados e inicializados.
func resolveNested(m ValueMapper, reg *Registry) error {
	switch vm := m.(type) {
	case *EntityMapper:
		return reg.ensureLocked(vm)
	case *CollectionMapper:
		return resolveNested(vm.elem, reg)
	default:
		return nil
	}
}

// DocToEntity lê document[name] via o mapper do campo e, se o valor produzido
// for não-nulo, devolve a entidade atualizada. Falhas de conversão são
// acrescentadas ao sink (atribuídas a entidade.campo) e a entidade retorna
// inalterada — o erro é local e não interrompe os campos irmãos.
func (f *Field) DocToEntity(entity any, doc Document, errs *ErrorList) any {
	raw, ok := doc[f.name]
	if !ok || raw == nil {
		return entity
	}
	v, err := f.mapper.FromDB(raw)
	if err != nil {
		// Mappers de entidade aninhados podem devolver um valor parcial junto
		// com erros acumulados; os erros são locais e o valor é aproveitado.
		f.sink(errs, err)
	}
	if v == nil {
		return entity
	}
	if f.set == nil {
		return entity
	}
	updated, err := f.safeSet(entity, v)
	if err != nil {
		f.sink(errs, err)
		return entity
	}
	return updated
}

// EntityToDoc lê a propriedade via getter, converte via mapper e, se o
// resultado for não-nulo, escreve document[name]. Qualquer falha é acumulada
// no sink e o campo é simplesmente omitido do documento.
func (f *Field) EntityToDoc(entity any, doc Document, errs *ErrorList) {
	v, err := f.safeGet(entity)
	if err != nil {
		f.sink(errs, err)
		return
	}
	out, err := f.mapper.ToDB(normalizeNil(v))
	if err != nil {
		f.sink(errs, err)
		return
	}
	if out == nil {
		return
	}
	doc[f.name] = out
}

// readValue lê e converte o valor do documento para uso na injeção via
// construtor, com atribuição de origem aplicada.
func (f *Field) readValue(doc Document) (any, error) {
	raw, ok := doc[f.name]
	if !ok || raw == nil {
		return nil, nil
	}
	v, err := f.mapper.FromDB(raw)
	if err != nil {
		var local ErrorList
		f.sink(&local, err)
		return nil, local.Err()
	}
	return v, nil
}

func (f *Field) safeGet(entity any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Errorf(ErrAccess, "getter failed: %v", r)
		}
	}()
	return f.get(entity), nil
}

func (f *Field) safeSet(entity, v any) (updated any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Errorf(ErrAccess, "setter failed: %v", r)
		}
	}()
	return f.set(entity, v), nil
}

// sink acrescenta err ao ErrorList com a origem entidade.campo aplicada a
// cada erro que ainda não tenha origem (a falha mais interna vence).
func (f *Field) sink(errs *ErrorList, err error) {
	var local ErrorList
	local.Add(err)
	owner := "?"
	if f.owner != nil {
		owner = f.owner.Name()
	}
	for _, e := range local.errs {
		e.setSource(owner, f.name)
	}
	errs.AddAll(&local)
}

// normalizeNil converte nils tipados (ponteiro, slice, map e interface nulos)
// para o nil não tipado esperado pelos mappers.
func normalizeNil(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}
