package mapper

import (
	"fmt"
	"strings"
)

// SchemaError indica uma declaração de mapeamento estruturalmente inválida:
// tipo de entidade ausente ou duplicado, herança cíclica, constante de enum
// não mapeada, construtor incompatível, conflito de versão.
//
// É sempre fatal e detectado na inicialização — o processo deve falhar no
// startup, nunca no primeiro uso.
type SchemaError struct {
	msg string
}

func (e *SchemaError) Error() string {
	return "mapper: schema error: " + e.msg
}

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{msg: fmt.Sprintf(format, args...)}
}

// ErrorKind classifica um defeito de dado encontrado durante uma conversão.
type ErrorKind string

const (
	// ErrWrongType indica representação incompatível no documento
	// (ex: esperado número, encontrado string).
	ErrWrongType ErrorKind = "wrong_type"
	// ErrUnparseable indica um valor armazenado que não pôde ser interpretado.
	ErrUnparseable ErrorKind = "unparseable"
	// ErrAccess indica falha do getter/setter da entidade.
	ErrAccess ErrorKind = "access_failed"
	// ErrNotMapped indica uma chave do documento sem campo declarado
	// (desvio de esquema, diagnóstico não-fatal).
	ErrNotMapped ErrorKind = "not_mapped"
	// ErrNoInstance indica que a entidade não pôde ser instanciada.
	ErrNoInstance ErrorKind = "no_instance"
)

// Error é um defeito de dado individual, por valor convertido.
//
// A origem (entidade.campo) é anexada de forma tardia enquanto o erro propaga
// pelas conversões aninhadas: apenas se ainda não estiver definida — a falha
// mais interna vence a atribuição.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
	Source  string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("mapper: ")
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// setSource anexa a origem apenas se ainda não definida.
func (e *Error) setSource(entity, field string) {
	if e.Source == "" {
		e.Source = entity + "." + field
	}
}

// Errorf cria um Error de conversão.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError cria um Error de conversão preservando a causa original.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ErrorList acumula erros de conversão de uma chamada fromDb/toDb.
//
// Os erros não interrompem o processamento dos campos irmãos; o chamador
// decide se uma lista não vazia é fatal.
type ErrorList struct {
	errs []*Error
}

// Add acrescenta um erro à lista. ConversionError aninhado é achatado; erros
// de outros tipos são encapsulados em um Error genérico. Listas inteiras são
// mescladas via AddAll.
func (l *ErrorList) Add(err error) {
	switch e := err.(type) {
	case nil:
	case *Error:
		l.errs = append(l.errs, e)
	case *ConversionError:
		l.errs = append(l.errs, e.Errs...)
	default:
		l.errs = append(l.errs, &Error{Kind: ErrUnparseable, Message: "conversion failed", Cause: err})
	}
}

// AddAll acrescenta todos os erros de outra lista.
func (l *ErrorList) AddAll(other *ErrorList) {
	l.errs = append(l.errs, other.errs...)
}

// Empty informa se nenhum erro foi acumulado.
func (l *ErrorList) Empty() bool { return len(l.errs) == 0 }

// Len retorna a quantidade de erros acumulados.
func (l *ErrorList) Len() int { return len(l.errs) }

// Errors devolve os erros acumulados, na ordem em que ocorreram.
func (l *ErrorList) Errors() []*Error {
	out := make([]*Error, len(l.errs))
	copy(out, l.errs)
	return out
}

// Err agrupa a lista em um único ConversionError, ou nil se vazia.
func (l *ErrorList) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return &ConversionError{Errs: l.Errors()}
}

// ConversionError agrupa todos os erros de uma única chamada de conversão
// de topo. Carrega a lista completa para que o chamador possa tolerar e
// pular o registro (checagem em lote) ou tratar como fatal (leitura normal).
type ConversionError struct {
	Errs []*Error
}

func (e *ConversionError) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "mapper: %d conversion errors:", len(e.Errs))
	for _, err := range e.Errs {
		b.WriteString("\n\t")
		b.WriteString(err.Error())
	}
	return b.String()
}
