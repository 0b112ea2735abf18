package mapper

import (
	"reflect"
	"sync"
)

type subEntry struct {
	mapper *EntityMapper
	window versionWindow
}

type specificKey struct {
	mapper *EntityMapper
	typ    reflect.Type
}

// Registry é o catálogo explícito dos EntityMappers de um processo.
//
// Constrói-se um Registry único no startup (fase de registro monothread) e,
// depois disso, todos os mappers são imutáveis e seguros para leituras
// concorrentes sem sincronização. A única estrutura mutada em regime é o
// cache de resolução polimórfica, protegido por RWMutex: lookups simultâneos
// da mesma chave podem recomputar o resultado, o que é aceitável por ser uma
// função pura e idempotente das entradas.
type Registry struct {
	mu      sync.Mutex
	ordered []*EntityMapper
	members map[*EntityMapper]struct{}
	byType  map[reflect.Type]*EntityMapper
	subs    map[*EntityMapper][]subEntry

	memoMu sync.RWMutex
	memo   map[specificKey]*EntityMapper
}

// NewRegistry cria um Registry vazio. Os mappers de valor embutidos são
// singletons de pacote e não precisam de registro.
func NewRegistry() *Registry {
	return &Registry{
		members: make(map[*EntityMapper]struct{}),
		byType:  make(map[reflect.Type]*EntityMapper),
		subs:    make(map[*EntityMapper][]subEntry),
		memo:    make(map[specificKey]*EntityMapper),
	}
}

// Register pré-inicializa, inicializa e valida cada mapper informado,
// registrando transitivamente super-entidades e mappers de entidade
// aninhados em campos. Reconstrói o índice reverso de sub-entidades ao final.
// Idempotente para instâncias já registradas; qualquer defeito estrutural
// devolve um *SchemaError e deve abortar o startup.
func (r *Registry) Register(mappers ...*EntityMapper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range mappers {
		if m == nil {
			return schemaErrorf("cannot register a nil mapper")
		}
		if err := r.ensureLocked(m); err != nil {
			return err
		}
	}

	r.rebuildSubIndexLocked()
	r.clearMemo()
	return nil
}

// ensureLocked registra e inicializa um mapper sob o lock de registro.
// Chamado reentrantemente pela inicialização para supers e campos aninhados.
func (r *Registry) ensureLocked(m *EntityMapper) error {
	if _, ok := r.members[m]; !ok {
		if err := m.preInitialize(); err != nil {
			return err
		}
		gt := m.entityType.goType
		if prev, dup := r.byType[gt]; dup && prev != m {
			return schemaErrorf("type %s is mapped by two entity mappers", gt)
		}
		r.members[m] = struct{}{}
		r.ordered = append(r.ordered, m)
		r.byType[gt] = m
	}
	return m.initialize(r)
}

// rebuildSubIndexLocked reconstrói o índice reverso super→subs em ordem de
// registro, para resolução polimórfica determinística.
func (r *Registry) rebuildSubIndexLocked() {
	subs := make(map[*EntityMapper][]subEntry, len(r.subs))
	for _, m := range r.ordered {
		for _, s := range m.supers {
			subs[s.mapper] = append(subs[s.mapper], subEntry{mapper: m, window: s.window})
		}
	}
	r.subs = subs
}

// subsOf retorna as entidades que declaram m como super-entidade.
func (r *Registry) subsOf(m *EntityMapper) []subEntry {
	return r.subs[m]
}

// MapperFor resolve o mapper registrado para o tipo de entidade informado.
func (r *Registry) MapperFor(t reflect.Type) (*EntityMapper, error) {
	m, ok := r.byType[t]
	if !ok {
		return nil, schemaErrorf("no mapper registered for type %s", t)
	}
	return m, nil
}

// MapperOf resolve o mapper registrado para entidades *T.
func MapperOf[T any](r *Registry) (*EntityMapper, error) {
	return r.MapperFor(reflect.TypeOf((*T)(nil)))
}

// AbstractMapperOf resolve o mapper registrado para a entidade abstrata I.
func AbstractMapperOf[I any](r *Registry) (*EntityMapper, error) {
	return r.MapperFor(reflect.TypeOf((*I)(nil)).Elem())
}

// Mappers retorna os mappers registrados, em ordem de registro.
func (r *Registry) Mappers() []*EntityMapper {
	out := make([]*EntityMapper, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// mostSpecific resolve, com memoização, o mapper mais específico para o tipo
// de runtime t a partir do mapper base m.
func (r *Registry) mostSpecific(m *EntityMapper, t reflect.Type) *EntityMapper {
	key := specificKey{mapper: m, typ: t}

	r.memoMu.RLock()
	cached, ok := r.memo[key]
	r.memoMu.RUnlock()
	if ok {
		return cached
	}

	res := r.computeMostSpecific(m, t)

	r.memoMu.Lock()
	r.memo[key] = res
	r.memoMu.Unlock()
	return res
}

// computeMostSpecific desce pelo grafo de sub-entidades preferindo casamentos
// exatos de tipo e, entre atribuíveis, o mais profundo.
func (r *Registry) computeMostSpecific(m *EntityMapper, t reflect.Type) *EntityMapper {
	for _, sub := range r.subsOf(m) {
		if sub.mapper.entityType.goType == t {
			return r.computeMostSpecific(sub.mapper, t)
		}
	}
	for _, sub := range r.subsOf(m) {
		if t.AssignableTo(sub.mapper.entityType.goType) {
			return r.computeMostSpecific(sub.mapper, t)
		}
	}
	return m
}

func (r *Registry) clearMemo() {
	r.memoMu.Lock()
	r.memo = make(map[specificKey]*EntityMapper)
	r.memoMu.Unlock()
}
