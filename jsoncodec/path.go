package jsoncodec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raywall/docstore-toolkit/mapper"
)

// Extrator é responsável por extrair valores de documentos usando JSONPath
type Extrator struct {
	doc mapper.Document
}

// NovoExtrator cria uma nova instância do extrator a partir de bytes JSON
func NovoExtrator(jsonBytes []byte) (*Extrator, error) {
	doc, err := UnmarshalDocument(jsonBytes)
	if err != nil {
		return nil, err
	}
	return &Extrator{doc: doc}, nil
}

// NovoExtratorDeDocumento cria uma nova instância do extrator a partir de um
// documento já materializado
func NovoExtratorDeDocumento(doc mapper.Document) *Extrator {
	return &Extrator{doc: doc}
}

// Extrair extrai um valor do documento usando um caminho no formato JSONPath
// Exemplos de caminhos válidos:
//   - "nome" -> retorna valor direto
//   - "endereco" -> retorna objeto completo
//   - "endereco.rua" -> navega em objetos aninhados
//   - "tags" -> retorna array completo
//   - "tags[0]" -> retorna primeiro elemento do array
//   - "cursos[1].nome" -> retorna campo de um elemento do array
func (e *Extrator) Extrair(caminho string) (interface{}, error) {
	// Remove espaços em branco
	caminho = strings.TrimSpace(caminho)

	// Se o caminho estiver vazio, retorna o documento completo
	if caminho == "" {
		return e.doc, nil
	}

	// Divide o caminho em partes
	partes := parseCaminho(caminho)

	// Navega pela estrutura
	var atual interface{} = e.doc

	for i, parte := range partes {
		// Verifica se é acesso a array
		if parte.isArray {
			atual = navegarArray(atual, parte)
			if atual == nil {
				return nil, fmt.Errorf("erro ao acessar array no caminho: %s", caminho)
			}
		} else {
			// Navegação normal em objetos
			m, ok := asObject(atual)
			if !ok {
				return nil, fmt.Errorf("esperado objeto no caminho '%s', mas encontrou %T", construirCaminhoAteAqui(partes, i), atual)
			}

			valor, existe := m[parte.campo]
			if !existe {
				return nil, fmt.Errorf("campo '%s' não encontrado no caminho '%s'", parte.campo, construirCaminhoAteAqui(partes, i+1))
			}

			atual = valor
		}
	}

	return atual, nil
}

// ExtrairString é um helper que extrai e converte para string
func (e *Extrator) ExtrairString(caminho string) (string, error) {
	valor, err := e.Extrair(caminho)
	if err != nil {
		return "", err
	}

	switch v := valor.(type) {
	case string:
		return v, nil
	case nil:
		return "", fmt.Errorf("valor é null")
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// ExtrairInt é um helper que extrai e converte para int64
func (e *Extrator) ExtrairInt(caminho string) (int64, error) {
	valor, err := e.Extrair(caminho)
	if err != nil {
		return 0, err
	}

	switch v := valor.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("não foi possível converter %T para int64", valor)
	}
}

// ExtrairFloat é um helper que extrai e converte para float64
func (e *Extrator) ExtrairFloat(caminho string) (float64, error) {
	valor, err := e.Extrair(caminho)
	if err != nil {
		return 0, err
	}

	switch v := valor.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("não foi possível converter %T para float64", valor)
	}
}

// ExtrairBool é um helper que extrai e converte para bool
func (e *Extrator) ExtrairBool(caminho string) (bool, error) {
	valor, err := e.Extrair(caminho)
	if err != nil {
		return false, err
	}

	switch v := valor.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("não foi possível converter %T para bool", valor)
	}
}

// ExtrairArray é um helper que extrai e retorna um slice
func (e *Extrator) ExtrairArray(caminho string) ([]interface{}, error) {
	valor, err := e.Extrair(caminho)
	if err != nil {
		return nil, err
	}

	arr, ok := valor.([]interface{})
	if !ok {
		return nil, fmt.Errorf("valor em '%s' não é um array, encontrado %T", caminho, valor)
	}

	return arr, nil
}

// ExtrairDocumento é um helper que extrai e retorna um documento aninhado
func (e *Extrator) ExtrairDocumento(caminho string) (mapper.Document, error) {
	valor, err := e.Extrair(caminho)
	if err != nil {
		return nil, err
	}

	obj, ok := asObject(valor)
	if !ok {
		return nil, fmt.Errorf("valor em '%s' não é um objeto, encontrado %T", caminho, valor)
	}

	return obj, nil
}

// Existe verifica se um caminho existe no documento
func (e *Extrator) Existe(caminho string) bool {
	_, err := e.Extrair(caminho)
	return err == nil
}

// ExtrairMultiplos extrai múltiplos caminhos de uma só vez
func (e *Extrator) ExtrairMultiplos(caminhos ...string) (map[string]interface{}, error) {
	resultado := make(map[string]interface{})

	for _, caminho := range caminhos {
		valor, err := e.Extrair(caminho)
		if err != nil {
			return nil, fmt.Errorf("erro ao extrair '%s': %w", caminho, err)
		}
		resultado[caminho] = valor
	}

	return resultado, nil
}

// --- Estruturas e funções auxiliares ---

// parteCaminho representa uma parte do caminho JSONPath
type parteCaminho struct {
	campo   string
	isArray bool
	indice  int
}

// asObject aceita tanto mapper.Document quanto map[string]interface{}
func asObject(v interface{}) (mapper.Document, bool) {
	switch t := v.(type) {
	case mapper.Document:
		return t, true
	case map[string]interface{}:
		return mapper.Document(t), true
	default:
		return nil, false
	}
}

// parseCaminho converte uma string de caminho em partes estruturadas
func parseCaminho(caminho string) []parteCaminho {
	var partes []parteCaminho

	// Divide por pontos, mas preserva arrays
	segmentos := strings.Split(caminho, ".")

	for _, segmento := range segmentos {
		if segmento == "" {
			continue
		}

		// Verifica se tem acesso a array
		if strings.Contains(segmento, "[") {
			// Exemplo: "cursos[0]" ou apenas "[0]"
			abreBracket := strings.Index(segmento, "[")
			fechaBracket := strings.Index(segmento, "]")

			if fechaBracket == -1 {
				// Bracket não fechado, trata como campo normal
				partes = append(partes, parteCaminho{campo: segmento})
				continue
			}

			// Extrai o nome do campo (se existir)
			nomeCampo := segmento[:abreBracket]
			if nomeCampo != "" {
				partes = append(partes, parteCaminho{campo: nomeCampo})
			}

			// Extrai o índice
			indiceStr := segmento[abreBracket+1 : fechaBracket]
			indice, err := strconv.Atoi(indiceStr)
			if err != nil {
				// Índice inválido, ignora
				continue
			}

			partes = append(partes, parteCaminho{
				isArray: true,
				indice:  indice,
			})

			// Verifica se há algo após o bracket
			restoSegmento := segmento[fechaBracket+1:]
			if restoSegmento != "" {
				// Recursivamente processa o resto
				partesResto := parseCaminho(restoSegmento)
				partes = append(partes, partesResto...)
			}
		} else {
			partes = append(partes, parteCaminho{campo: segmento})
		}
	}

	return partes
}

// navegarArray navega em um array e retorna o elemento no índice especificado
func navegarArray(atual interface{}, parte parteCaminho) interface{} {
	arr, ok := atual.([]interface{})
	if !ok {
		return nil
	}

	if parte.indice < 0 || parte.indice >= len(arr) {
		return nil
	}

	return arr[parte.indice]
}

// construirCaminhoAteAqui reconstrói o caminho até um determinado índice (para mensagens de erro)
func construirCaminhoAteAqui(partes []parteCaminho, ate int) string {
	var builder strings.Builder

	for i := 0; i < ate && i < len(partes); i++ {
		if i > 0 && !partes[i].isArray {
			builder.WriteString(".")
		}

		if partes[i].isArray {
			builder.WriteString(fmt.Sprintf("[%d]", partes[i].indice))
		} else {
			builder.WriteString(partes[i].campo)
		}
	}

	return builder.String()
}
