package contracts

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"property-explorer/internal/core/port"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemasFS embed.FS

var missingPropertyRe = regexp.MustCompile(`'([^']+)'`)

// FormValidator проверяет формы по JSON-схемам из schemas/.
type FormValidator struct {
	schemas map[string]*jsonschema.Schema
}

var _ port.FormValidatorPort = (*FormValidator)(nil)

// NewFormValidator компилирует все встроенные схемы. Имя формы - имя файла без расширения.
func NewFormValidator() (*FormValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	files, err := fs.Glob(schemasFS, "schemas/*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	// Сначала добавляем все схемы как ресурсы, чтобы работали $ref между ними
	for _, file := range files {
		f, err := schemasFS.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open schema %s: %w", file, err)
		}
		err = compiler.AddResource(file, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to add schema resource %s: %w", file, err)
		}
	}

	v := &FormValidator{schemas: make(map[string]*jsonschema.Schema, len(files))}
	for _, file := range files {
		schema, err := compiler.Compile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", file, err)
		}
		v.schemas[strings.TrimSuffix(path.Base(file), ".json")] = schema
	}
	return v, nil
}

// Validate проверяет payload (структуру или карту) по схеме формы.
// Ошибка возвращается только для неизвестной формы или несериализуемых данных.
func (v *FormValidator) Validate(form string, payload any) (map[string]string, error) {
	schema, ok := v.schemas[form]
	if !ok {
		return nil, fmt.Errorf("schema for form '%s' not found", form)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("form payload is not serializable: %w", err)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("form payload is not a valid JSON: %w", err)
	}

	fields := make(map[string]string)
	err = schema.Validate(doc)
	if err == nil {
		return fields, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("JSON schema validation failed: %w", err)
	}

	object, _ := doc.(map[string]any)
	for _, leaf := range leaves(verr) {
		if strings.HasSuffix(leaf.KeywordLocation, "/required") {
			for _, m := range missingPropertyRe.FindAllStringSubmatch(leaf.Message, -1) {
				fields[m[1]] = port.ReasonRequired
			}
			continue
		}
		field := strings.TrimPrefix(leaf.InstanceLocation, "/")
		if i := strings.Index(field, "/"); i >= 0 {
			field = field[:i]
		}
		if field == "" {
			continue
		}
		if _, done := fields[field]; done {
			continue
		}
		fields[field] = reasonFor(object[field])
	}
	return fields, nil
}

// пустое после обрезки значение считается незаполненным
func reasonFor(value any) string {
	switch v := value.(type) {
	case nil:
		return port.ReasonRequired
	case string:
		if strings.TrimSpace(v) == "" {
			return port.ReasonRequired
		}
	}
	return port.ReasonInvalid
}

func leaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, c := range err.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}
