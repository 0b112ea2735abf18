package jsoncodec

import (
	"testing"

	"github.com/raywall/docstore-toolkit/mapper"
)

func TestExtrairCampoSimples(t *testing.T) {
	extrator, err := NovoExtrator(jsonTeste)
	if err != nil {
		t.Fatalf("Erro ao criar extrator: %v", err)
	}

	valor, err := extrator.Extrair("nome")
	if err != nil {
		t.Fatalf("Erro ao extrair nome: %v", err)
	}

	if valor != "jose" {
		t.Errorf("Esperado 'jose', obtido '%v'", valor)
	}
}

func TestExtrairNumero(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	valor, err := extrator.ExtrairInt("idade")
	if err != nil {
		t.Fatalf("Erro ao extrair idade: %v", err)
	}

	if valor != 17 {
		t.Errorf("Esperado 17, obtido %v", valor)
	}
}

func TestExtrairFloat(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	valor, err := extrator.ExtrairFloat("salario")
	if err != nil {
		t.Fatalf("Erro ao extrair salario: %v", err)
	}

	if valor != 5000.50 {
		t.Errorf("Esperado 5000.50, obtido %v", valor)
	}
}

func TestExtrairAninhado(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	valor, err := extrator.ExtrairString("dados_profissionais.cargo.titulo")
	if err != nil {
		t.Fatalf("Erro ao extrair caminho aninhado: %v", err)
	}

	if valor != "Desenvolvedor" {
		t.Errorf("Esperado 'Desenvolvedor', obtido '%v'", valor)
	}
}

func TestExtrairElementoDeArray(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	valor, err := extrator.ExtrairString("cursos[1].nome")
	if err != nil {
		t.Fatalf("Erro ao extrair elemento do array: %v", err)
	}

	if valor != "digitacao" {
		t.Errorf("Esperado 'digitacao', obtido '%v'", valor)
	}
}

func TestExtrairArrayCompleto(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	tags, err := extrator.ExtrairArray("tags")
	if err != nil {
		t.Fatalf("Erro ao extrair array: %v", err)
	}

	if len(tags) != 3 || tags[0] != "golang" {
		t.Errorf("Array inesperado: %v", tags)
	}
}

func TestExtrairDocumento(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	obj, err := extrator.ExtrairDocumento("dados_profissionais")
	if err != nil {
		t.Fatalf("Erro ao extrair documento: %v", err)
	}

	if obj["empregador"] != "itau" {
		t.Errorf("Esperado 'itau', obtido %v", obj["empregador"])
	}
}

func TestExtrairCampoInexistente(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	if _, err := extrator.Extrair("inexistente"); err == nil {
		t.Fatal("Deveria retornar erro para campo inexistente")
	}

	if extrator.Existe("inexistente") {
		t.Error("Existe deveria retornar false")
	}
	if !extrator.Existe("nome") {
		t.Error("Existe deveria retornar true para 'nome'")
	}
}

func TestExtrairIndiceForaDoLimite(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	if _, err := extrator.Extrair("cursos[9]"); err == nil {
		t.Fatal("Deveria retornar erro para índice fora do limite")
	}
}

func TestExtrairMultiplos(t *testing.T) {
	extrator, _ := NovoExtrator(jsonTeste)

	valores, err := extrator.ExtrairMultiplos("nome", "idade", "dados_profissionais.empregador")
	if err != nil {
		t.Fatalf("Erro ao extrair múltiplos: %v", err)
	}

	if valores["nome"] != "jose" || valores["idade"] != int64(17) {
		t.Errorf("Valores inesperados: %v", valores)
	}
}

func TestExtratorDeDocumento(t *testing.T) {
	doc := mapper.Document{
		"home": mapper.Document{"street": "rua um"},
	}
	extrator := NovoExtratorDeDocumento(doc)

	valor, err := extrator.ExtrairString("home.street")
	if err != nil {
		t.Fatalf("Erro ao extrair: %v", err)
	}
	if valor != "rua um" {
		t.Errorf("Esperado 'rua um', obtido '%v'", valor)
	}
}
