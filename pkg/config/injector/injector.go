package injector

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
)

// Regex para capturar padrões ${env.chave}
// Ex: ${env.API_KEY}, ${env.DOCSTORE_TABLE_NAME}
var pattern = regexp.MustCompile(`\$\{env\.([^}]+)\}`)

type Injector struct{}

func New() *Injector {
	return &Injector{}
}

// Inject percorre o target (ponteiro para struct) resolvendo tags `env` e
// interpolando placeholders `${env.X}` em strings, recursivamente.
func (i *Injector) Inject(target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(v.Elem())
}

func (i *Injector) injectRecursive(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for k := 0; k < t.NumField(); k++ {
			field := t.Field(k)
			value := v.Field(k)

			// 1. Processa Tags (env:"...")
			if err := i.processStructTags(field, value); err != nil {
				return err
			}

			// 2. Processa Strings com Interpolação "${...}"
			if value.Kind() == reflect.String && value.CanSet() {
				value.SetString(i.interpolateString(value.String()))
			}

			// 3. Recursão
			if value.CanSet() || value.Kind() == reflect.Ptr {
				if err := i.injectRecursive(value); err != nil {
					return err
				}
			}
		}

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			if !v.IsNil() {
				i.injectMap(v)
			}
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// processStructTags mantém a lógica legado de tags
func (i *Injector) processStructTags(field reflect.StructField, value reflect.Value) error {
	if !value.CanSet() {
		return nil
	}
	if tag := field.Tag.Get("env"); tag != "" {
		if val, exists := os.LookupEnv(tag); exists {
			return setField(value, val)
		}
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(input string) string {
	if !strings.Contains(input, "${") {
		return input
	}

	return pattern.ReplaceAllStringFunc(input, func(match string) string {
		// match é algo como "${env.VAR_NAME}"
		key := match[len("${env.") : len(match)-1]
		if val, exists := os.LookupEnv(key); exists {
			return val
		}
		// Variável não encontrada resolve para vazio
		return ""
	})
}

// injectMap lida com mapas dinâmicos
func (i *Injector) injectMap(v reflect.Value) {
	iter := v.MapRange()
	updates := make(map[string]interface{})

	for iter.Next() {
		key := iter.Key()
		val := iter.Value()

		elem := val
		if val.Kind() == reflect.Interface {
			elem = val.Elem()
		}

		if !elem.IsValid() {
			continue
		}

		if elem.Kind() == reflect.String {
			updates[key.String()] = i.interpolateString(elem.String())
		} else if elem.Kind() == reflect.Map {
			if subMap, ok := elem.Interface().(map[string]interface{}); ok {
				i.injectMap(reflect.ValueOf(subMap))
			}
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k), reflect.ValueOf(val))
	}
}

func setField(field reflect.Value, val interface{}) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(fmt.Sprintf("%v", val))
	}
	return nil
}
