package mapper

import (
	"reflect"
)

// EntityType identifica o tipo de domínio de um EntityMapper e o seu
// discriminador opcional (vazio = sem discriminador).
type EntityType struct {
	goType        reflect.Type
	discriminator string
}

// Type declara um EntityType para o tipo E (ponteiro de struct para entidades
// concretas, interface para entidades abstratas).
func Type[E any](discriminator string) EntityType {
	return EntityType{
		goType:        reflect.TypeOf((*E)(nil)).Elem(),
		discriminator: discriminator,
	}
}

// GoType retorna o tipo de runtime das entidades mapeadas.
func (t EntityType) GoType() reflect.Type { return t.goType }

// Discriminator retorna o discriminador declarado, ou vazio.
func (t EntityType) Discriminator() string { return t.discriminator }

// Abstract informa se o tipo de domínio é abstrato (interface).
func (t EntityType) Abstract() bool {
	return t.goType != nil && t.goType.Kind() == reflect.Interface
}

// Name retorna o nome curto do tipo, para atribuição de erros.
func (t EntityType) Name() string {
	if t.goType == nil {
		return "<undeclared>"
	}
	gt := t.goType
	if gt.Kind() == reflect.Pointer {
		gt = gt.Elem()
	}
	if gt.Name() != "" {
		return gt.Name()
	}
	return gt.String()
}

type versionWindow struct {
	min, max int
}

func allVersions() versionWindow { return versionWindow{min: 0, max: NoMaxVersion} }

func (w versionWindow) contains(v int) bool { return w.min <= v && v <= w.max }

func (w versionWindow) trivial() bool { return w.min == 0 && w.max == NoMaxVersion }

// SuperEntity declara que a representação em documento desta entidade também
// inclui todos os campos do mapper de outra entidade, para versões de
// documento dentro da janela. O grafo de super-entidades deve ser acíclico e
// o tipo da super-entidade deve ser atribuível a partir do tipo desta.
type SuperEntity struct {
	mapper *EntityMapper
	window versionWindow
}

// Super declara uma super-entidade válida para todas as versões.
func Super(m *EntityMapper) SuperEntity {
	return SuperEntity{mapper: m, window: allVersions()}
}

// SuperVersioned declara uma super-entidade com janela de compatibilidade
// [min, max] inclusiva.
func SuperVersioned(m *EntityMapper, min, max int) SuperEntity {
	return SuperEntity{mapper: m, window: versionWindow{min: min, max: max}}
}

type mapperState int

const (
	stateDeclared mapperState = iota
	statePreInitialized
	stateInitializing
	stateInitialized
)

// EntityMapper declara o esquema em nível de documento de uma entidade de
// domínio: a lista ordenada de campos próprios, as super-entidades (herança
// por composição), o discriminador e o tipo da entidade.
//
// Ciclo de vida: Declared → PreInitialized → Initialized. A inicialização é
// idempotente, acontece uma única vez por instância, e é conduzida pelo
// Registry; um mapper não inicializado nunca deve ser usado para conversão.
// Depois de inicializado o mapper é imutável e seguro para leituras
// concorrentes.
type EntityMapper struct {
	entityType    EntityType
	typeDeclCount int

	fields []*Field
	supers []SuperEntity

	currentVersion  int
	versionDeclared bool

	factory   func() any
	construct func(args []any) (any, error)
	ctorArity int

	state mapperState

	// computados na inicialização
	versionKnown     bool
	effectiveVersion int
	extentOrder      []string
	extentByName     map[string]*Field
	ctorFields       []*Field
	registry         *Registry
}

// NewMapper cria um EntityMapper vazio no estado Declared.
func NewMapper() *EntityMapper {
	return &EntityMapper{}
}

// NewEntity cria o mapper de uma entidade concreta representada por *T, com
// fábrica padrão new(T). O discriminador pode ser vazio.
func NewEntity[T any](discriminator string, fields ...*Field) *EntityMapper {
	m := NewMapper().
		DeclareType(Type[*T](discriminator)).
		AddFields(fields...)
	m.SetFactory(func() any { return new(T) })
	return m
}

// NewAbstractEntity cria o mapper de uma entidade abstrata representada pela
// interface I. Entidades abstratas não possuem fábrica: a leitura depende da
// resolução polimórfica para um sub-mapper concreto.
func NewAbstractEntity[I any](discriminator string, fields ...*Field) *EntityMapper {
	return NewMapper().
		DeclareType(Type[I](discriminator)).
		AddFields(fields...)
}

func (m *EntityMapper) assertDeclared() {
	if m.state != stateDeclared {
		panic(schemaErrorf("mapper %s mutated after initialization", m.Name()))
	}
}

// DeclareType registra o tipo da entidade. Deve ser chamado exatamente uma
// vez antes da inicialização; zero ou mais de uma declaração é um erro de
// esquema detectado na pré-inicialização.
func (m *EntityMapper) DeclareType(t EntityType) *EntityMapper {
	m.assertDeclared()
	m.entityType = t
	m.typeDeclCount++
	return m
}

// AddFields acrescenta campos próprios, na ordem declarada.
func (m *EntityMapper) AddFields(fields ...*Field) *EntityMapper {
	m.assertDeclared()
	m.fields = append(m.fields, fields...)
	return m
}

// AddSuper acrescenta uma declaração de super-entidade.
func (m *EntityMapper) AddSuper(supers ...SuperEntity) *EntityMapper {
	m.assertDeclared()
	m.supers = append(m.supers, supers...)
	return m
}

// SetCurrentVersion declara a versão corrente do esquema da entidade.
//
// O mecanismo de negociação de versões é declarativo e permanece inerte: as
// janelas são validadas e aplicadas como filtro, mas em uso corrente a versão
// efetiva é sempre 0. Declarar uma versão aqui quando uma super-entidade já
// declara a sua é um erro de esquema.
func (m *EntityMapper) SetCurrentVersion(v int) *EntityMapper {
	m.assertDeclared()
	m.currentVersion = v
	m.versionDeclared = true
	return m
}

// SetFactory define a construção sem argumentos da entidade.
func (m *EntityMapper) SetFactory(fn func() any) *EntityMapper {
	m.assertDeclared()
	m.factory = fn
	return m
}

// SetConstructor define o construtor da entidade para campos vinculados por
// construtor. arity deve ser igual ao tamanho do constructor-field-extent
// (campos herdados primeiro); os argumentos chegam na mesma ordem, com nil
// para valores ausentes no documento.
func (m *EntityMapper) SetConstructor(arity int, fn func(args []any) (any, error)) *EntityMapper {
	m.assertDeclared()
	m.ctorArity = arity
	m.construct = fn
	return m
}

// EntityType retorna o tipo declarado da entidade.
func (m *EntityMapper) EntityType() EntityType { return m.entityType }

// Discriminator retorna o discriminador declarado, ou vazio.
func (m *EntityMapper) Discriminator() string { return m.entityType.discriminator }

// Name retorna o nome curto da entidade, para logs e atribuição de erros.
func (m *EntityMapper) Name() string { return m.entityType.Name() }

// CurrentVersion retorna a versão efetiva computada na inicialização.
func (m *EntityMapper) CurrentVersion() int { return m.effectiveVersion }

// Fields retorna os campos próprios, na ordem de declaração.
func (m *EntityMapper) Fields() []*Field {
	out := make([]*Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// FieldsIncludingSupers retorna o field extent completo (campos herdados
// primeiro, sombreados pelos próprios), na ordem topológica computada.
func (m *EntityMapper) FieldsIncludingSupers() []*Field {
	out := make([]*Field, 0, len(m.extentOrder))
	for _, name := range m.extentOrder {
		out = append(out, m.extentByName[name])
	}
	return out
}

// FieldByName retorna o campo do extent vinculado à chave informada.
func (m *EntityMapper) FieldByName(name string) (*Field, bool) {
	f, ok := m.extentByName[name]
	return f, ok
}

// SubMapper localiza, no grafo de sub-entidades registrado, o mapper cujo
// tipo de domínio é exatamente t.
func (m *EntityMapper) SubMapper(t reflect.Type) (*EntityMapper, error) {
	if m.entityType.goType == t {
		return m, nil
	}
	if m.registry != nil {
		for _, sub := range m.registry.subsOf(m) {
			if r, err := sub.mapper.SubMapper(t); err == nil {
				return r, nil
			}
		}
	}
	return nil, schemaErrorf("entity %s has no sub-mapper for type %s", m.Name(), t)
}

// preInitialize valida a declaração do tipo da entidade.
func (m *EntityMapper) preInitialize() error {
	if m.state >= statePreInitialized {
		return nil
	}
	if m.typeDeclCount == 0 {
		return schemaErrorf("mapper has no entity type declared")
	}
	if m.typeDeclCount > 1 {
		return schemaErrorf("mapper %s declares its entity type %d times", m.Name(), m.typeDeclCount)
	}
	m.state = statePreInitialized
	return nil
}

// initialize resolve super-entidades, versões, campos e o extent. Idempotente;
// reentrada através da própria cadeia de super-entidades é herança cíclica.
func (m *EntityMapper) initialize(reg *Registry) error {
	switch m.state {
	case stateInitialized:
		return nil
	case stateInitializing:
		return schemaErrorf("cyclic inheritance detected involving entity %s", m.Name())
	}
	if err := m.preInitialize(); err != nil {
		return err
	}
	if m.registry != nil && m.registry != reg {
		return schemaErrorf("mapper %s is already registered in another registry", m.Name())
	}
	m.registry = reg
	m.state = stateInitializing

	if err := m.initSupers(reg); err != nil {
		return err
	}
	if err := m.reconcileVersions(); err != nil {
		return err
	}
	for _, f := range m.fields {
		if err := f.initialize(m, reg); err != nil {
			return err
		}
	}
	if err := m.buildExtent(); err != nil {
		return err
	}
	if err := m.checkConstruction(); err != nil {
		return err
	}

	m.state = stateInitialized
	return nil
}

func (m *EntityMapper) initSupers(reg *Registry) error {
	for _, s := range m.supers {
		if s.mapper == nil {
			return schemaErrorf("entity %s declares a nil super-entity", m.Name())
		}
		if s.window.min > s.window.max {
			return schemaErrorf("entity %s declares super-entity %s with inverted version window [%d, %d]",
				m.Name(), s.mapper.Name(), s.window.min, s.window.max)
		}
		if err := reg.ensureLocked(s.mapper); err != nil {
			return err
		}
		// O tipo da super-entidade deve aceitar o tipo desta entidade.
		superType := s.mapper.entityType.goType
		if !m.entityType.goType.AssignableTo(superType) {
			return schemaErrorf("entity %s (%s) is not assignable to its super-entity %s (%s)",
				m.Name(), m.entityType.goType, s.mapper.Name(), superType)
		}
	}
	return nil
}

// reconcileVersions computa a versão efetiva. Uma entidade não pode declarar
// versão própria quando uma super-entidade já declara a dela; janelas não
// triviais exigem que a informação de versão exista em algum nível.
func (m *EntityMapper) reconcileVersions() error {
	inheritedKnown := false
	inherited := 0
	for _, s := range m.supers {
		if !s.mapper.versionKnown {
			continue
		}
		if inheritedKnown && inherited != s.mapper.effectiveVersion {
			return schemaErrorf("entity %s inherits conflicting schema versions (%d and %d)",
				m.Name(), inherited, s.mapper.effectiveVersion)
		}
		inheritedKnown = true
		inherited = s.mapper.effectiveVersion
	}
	if m.versionDeclared && inheritedKnown {
		return schemaErrorf("entity %s declares a schema version but a super-entity already defines one", m.Name())
	}

	switch {
	case m.versionDeclared:
		m.versionKnown = true
		m.effectiveVersion = m.currentVersion
	case inheritedKnown:
		m.versionKnown = true
		m.effectiveVersion = inherited
	default:
		m.effectiveVersion = 0
	}

	if !m.versionKnown && m.hasNonTrivialWindows() {
		return schemaErrorf("entity %s uses version windows but no schema version is declared", m.Name())
	}
	return nil
}

func (m *EntityMapper) hasNonTrivialWindows() bool {
	for _, f := range m.fields {
		if !(versionWindow{min: f.minVersion, max: f.maxVersion}).trivial() {
			return true
		}
	}
	for _, s := range m.supers {
		if !s.window.trivial() {
			return true
		}
	}
	return false
}

// buildExtent computa o field extent transitivo: campos das super-entidades
// primeiro (merge topológico), depois os próprios, que sombreiam por chave.
func (m *EntityMapper) buildExtent() error {
	order := make([]string, 0, len(m.fields))
	byName := make(map[string]*Field, len(m.fields))
	add := func(f *Field) {
		if _, ok := byName[f.name]; !ok {
			order = append(order, f.name)
		}
		byName[f.name] = f
	}

	for _, s := range m.supers {
		for _, name := range s.mapper.extentOrder {
			add(s.mapper.extentByName[name])
		}
	}

	seenOwn := make(map[string]struct{}, len(m.fields))
	for _, f := range m.fields {
		if IsReservedField(f.name) {
			return schemaErrorf("entity %s declares field %q, which is a reserved document key", m.Name(), f.name)
		}
		if _, dup := seenOwn[f.name]; dup {
			return schemaErrorf("entity %s declares field %q twice", m.Name(), f.name)
		}
		seenOwn[f.name] = struct{}{}
		add(f)
	}

	m.extentOrder = order
	m.extentByName = byName

	m.ctorFields = nil
	for _, name := range order {
		if f := byName[name]; f.ConstructorBound() {
			m.ctorFields = append(m.ctorFields, f)
		}
	}
	return nil
}

// checkConstruction valida a forma de instanciação de entidades concretas:
// havendo campos de construtor, um construtor com aridade compatível é
// obrigatório; sem eles, a fábrica sem argumentos.
func (m *EntityMapper) checkConstruction() error {
	if m.entityType.Abstract() {
		return nil
	}
	if len(m.ctorFields) > 0 {
		if m.construct == nil {
			return schemaErrorf("entity %s has %d constructor-bound fields but no constructor",
				m.Name(), len(m.ctorFields))
		}
		if m.ctorArity != len(m.ctorFields) {
			return schemaErrorf("entity %s constructor takes %d arguments but the constructor field extent has %d",
				m.Name(), m.ctorArity, len(m.ctorFields))
		}
		return nil
	}
	if m.factory == nil && m.construct == nil {
		return schemaErrorf("concrete entity %s has no factory", m.Name())
	}
	return nil
}

func (m *EntityMapper) checkInitialized() error {
	if m.state != stateInitialized {
		return schemaErrorf("mapper %s used before initialization", m.Name())
	}
	return nil
}

// FromDB converte um documento em entidade. Os erros acumulados da conversão
// são devolvidos agrupados em um único *ConversionError; a entidade parcial é
// devolvida mesmo na presença de erros, e o chamador decide se a lista é
// fatal.
//
// Aceita Document, map[string]any ou nil (nil converte para nil).
func (m *EntityMapper) FromDB(v any) (any, error) {
	if err := m.checkInitialized(); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	doc, ok := asDocument(v)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected document, got %T", v)
	}
	var errs ErrorList
	entity := m.FromDBWithErrors(doc, &errs)
	return entity, errs.Err()
}

// FromDBWithErrors converte um documento em entidade acumulando os erros no
// sink informado, sem nunca interromper os campos irmãos.
func (m *EntityMapper) FromDBWithErrors(doc Document, errs *ErrorList) any {
	if doc == nil {
		return nil
	}
	if err := m.checkInitialized(); err != nil {
		errs.Add(WrapError(ErrNoInstance, err, "mapper not initialized"))
		return nil
	}

	version := m.readVersion(doc, errs)
	target := m.resolveReadTarget(doc, version, errs)

	entity := target.instantiate(doc, errs)
	if entity == nil {
		return nil
	}
	entity = target.applyFields(entity, doc, version, errs)
	target.reportUnknownKeys(doc, errs)
	return entity
}

// readVersion lê a versão inteira do documento; ausente ou não-inteira vale 0
// (o tipo errado é registrado como erro não fatal).
func (m *EntityMapper) readVersion(doc Document, errs *ErrorList) int {
	raw, ok := doc[FieldVersion]
	if !ok || raw == nil {
		return 0
	}
	n, ok := asInt64(raw)
	if !ok {
		errs.Add(Errorf(ErrWrongType, "entity %s: document version must be an integer, got %T", m.Name(), raw))
		return 0
	}
	return int(n)
}

// resolveReadTarget resolve o sub-mapper mais específico pelo discriminador
// lido do documento, com fallback para o próprio mapper.
func (m *EntityMapper) resolveReadTarget(doc Document, version int, errs *ErrorList) *EntityMapper {
	raw, ok := doc[FieldType]
	if !ok || raw == nil {
		return m
	}
	disc, ok := raw.(string)
	if !ok {
		errs.Add(Errorf(ErrWrongType, "entity %s: discriminator must be a string, got %T", m.Name(), raw))
		return m
	}
	if t := m.resolveByDiscriminator(disc, version); t != nil {
		return t
	}
	return m
}

// resolveByDiscriminator percorre recursivamente o grafo de sub-entidades
// registrado em busca do mapper cujo discriminador casa e cuja janela de
// versão cobre a versão lida.
func (m *EntityMapper) resolveByDiscriminator(disc string, version int) *EntityMapper {
	if disc == "" {
		return nil
	}
	if m.entityType.discriminator == disc {
		return m
	}
	if m.registry == nil {
		return nil
	}
	for _, sub := range m.registry.subsOf(m) {
		if !sub.window.contains(version) {
			continue
		}
		if r := sub.mapper.resolveByDiscriminator(disc, version); r != nil {
			return r
		}
	}
	return nil
}

// instantiate cria a entidade: pelo construtor declarado quando existem
// campos de construtor (qualquer erro de mapeamento aborta a instanciação e
// propaga todos os erros coletados), senão pela fábrica sem argumentos.
func (m *EntityMapper) instantiate(doc Document, errs *ErrorList) any {
	if len(m.ctorFields) > 0 && m.construct != nil {
		args := make([]any, len(m.ctorFields))
		var local ErrorList
		for i, f := range m.ctorFields {
			v, err := f.readValue(doc)
			if err != nil {
				local.Add(err)
				continue
			}
			args[i] = v
		}
		if !local.Empty() {
			errs.AddAll(&local)
			return nil
		}
		entity, err := m.safeConstruct(args)
		if err != nil {
			errs.Add(WrapError(ErrNoInstance, err, "entity %s could not be constructed", m.Name()))
			return nil
		}
		return entity
	}
	if m.factory != nil {
		return m.factory()
	}
	errs.Add(Errorf(ErrNoInstance, "cannot instantiate abstract entity %s (no concrete sub-mapper matched)", m.Name()))
	return nil
}

// safeConstruct invoca o construtor declarado convertendo qualquer panic em
// erro. Chaves ausentes passam nil nos args e um construtor com type asserts
// diretos entra em panic; a falha fica contida no documento corrente.
func (m *EntityMapper) safeConstruct(args []any) (entity any, err error) {
	defer func() {
		if r := recover(); r != nil {
			entity = nil
			err = Errorf(ErrNoInstance, "constructor failed: %v", r)
		}
	}()
	return m.construct(args)
}

// applyFields aplica primeiro as super-entidades compatíveis com a versão
// lida, depois os campos próprios não vinculados ao construtor.
func (m *EntityMapper) applyFields(entity any, doc Document, version int, errs *ErrorList) any {
	for _, s := range m.supers {
		if !s.window.contains(version) {
			continue
		}
		entity = s.mapper.applyFields(entity, doc, version, errs)
	}
	for _, f := range m.fields {
		if f.ConstructorBound() {
			continue
		}
		if !f.Compatible(version) {
			continue
		}
		entity = f.DocToEntity(entity, doc, errs)
	}
	return entity
}

// reportUnknownKeys sinaliza desvio de esquema: chaves do documento fora das
// reservadas que não correspondem a nenhum campo do extent. Diagnóstico
// não fatal, executado apenas no nível de topo de cada documento.
func (m *EntityMapper) reportUnknownKeys(doc Document, errs *ErrorList) {
	for k := range doc {
		if IsReservedField(k) {
			continue
		}
		if _, ok := m.extentByName[k]; !ok {
			errs.Add(Errorf(ErrNotMapped, "field %q of entity %s was not mapped", k, m.Name()))
		}
	}
}

// ToDB converte uma entidade em documento. Falhas por campo são agrupadas em
// um único *ConversionError e os campos afetados omitidos do documento
// (política de documento parcial).
func (m *EntityMapper) ToDB(v any) (any, error) {
	if err := m.checkInitialized(); err != nil {
		return nil, err
	}
	var errs ErrorList
	doc := m.ToDBWithErrors(v, &errs)
	if doc == nil {
		if err := errs.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return doc, errs.Err()
}

// ToDBWithErrors converte uma entidade em documento acumulando os erros no
// sink informado.
//
// O mapper mais específico para o tipo de runtime da entidade é resolvido no
// grafo de sub-entidades (com memoização no Registry); o discriminador só é
// carimbado em `_type` quando a resolução avançou além do mapper chamado —
// uma escrita polimórfica de fato.
func (m *EntityMapper) ToDBWithErrors(entity any, errs *ErrorList) Document {
	entity = normalizeNil(entity)
	if entity == nil {
		return nil
	}
	if err := m.checkInitialized(); err != nil {
		errs.Add(WrapError(ErrNoInstance, err, "mapper not initialized"))
		return nil
	}

	t := reflect.TypeOf(entity)
	if !t.AssignableTo(m.entityType.goType) {
		errs.Add(Errorf(ErrWrongType, "entity %s cannot map value of type %s", m.Name(), t))
		return nil
	}

	target := m
	if m.registry != nil {
		target = m.registry.mostSpecific(m, t)
	}

	doc := Document{}
	target.writeFields(entity, doc, errs)
	if target != m && target.Discriminator() != "" {
		doc[FieldType] = target.Discriminator()
	}
	return doc
}

// writeFields emite primeiro os campos das super-entidades, depois os
// próprios (incluindo os vinculados ao construtor, que mantêm getter).
func (m *EntityMapper) writeFields(entity any, doc Document, errs *ErrorList) {
	for _, s := range m.supers {
		if !s.window.contains(m.effectiveVersion) {
			continue
		}
		s.mapper.writeFields(entity, doc, errs)
	}
	for _, f := range m.fields {
		if !f.Compatible(m.effectiveVersion) {
			continue
		}
		f.EntityToDoc(entity, doc, errs)
	}
}
