package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *CheckerConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Field(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *CheckerConfig) error {
	// 1. Timeout, quando informado, precisa ser uma duração válida
	if cfg.Checker.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Checker.Timeout); err != nil {
			return fmt.Errorf("timeout inválido: '%s'. Use formatos como '30s' ou '5m'", cfg.Checker.Timeout)
		}
	}

	// 2. O atributo de chave não pode colidir com os metadados do documento
	switch cfg.Checker.Table.KeyAttribute {
	case "", "_id":
		// default
	case "_ver", "_type", "_modified":
		return fmt.Errorf("key_attribute inválido: '%s' é um metadado reservado de documento", cfg.Checker.Table.KeyAttribute)
	}

	return nil
}
