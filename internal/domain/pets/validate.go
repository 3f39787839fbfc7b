package pets

import (
	"fmt"
	"strings"
)

// FieldError es un error de validación a nivel de campo.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa los errores de campo de un intento de escritura.
// Si la validación falla no se persiste nada (sin escrituras parciales).
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// rule es una regla declarativa sobre un campo del Pet.
// check devuelve el mensaje de violación o "" si pasa.
type rule struct {
	field string
	check func(p Pet) string
}

// petRules es el set de reglas para persistir un Pet:
// {name: required, description: required, type: required + memberOf(ValidTypes)}.
// Las reglas se evalúan todas; el resultado es la lista completa de violaciones.
var petRules = []rule{
	{field: "name", check: requiredString(func(p Pet) string { return p.Name })},
	{field: "description", check: requiredString(func(p Pet) string { return p.Description })},
	{field: "type", check: memberOfTypes(func(p Pet) PetType { return p.Type })},
}

func requiredString(get func(Pet) string) func(Pet) string {
	return func(p Pet) string {
		if strings.TrimSpace(get(p)) == "" {
			return "required"
		}
		return ""
	}
}

func memberOfTypes(get func(Pet) PetType) func(Pet) string {
	return func(p Pet) string {
		t := get(p)
		if strings.TrimSpace(string(t)) == "" {
			return "required"
		}
		if _, ok := ValidTypes[t]; !ok {
			return fmt.Sprintf("must be one of the recognized pet types, got %q", t)
		}
		return ""
	}
}

// Validate evalúa todas las reglas y devuelve *ValidationError con los
// errores por campo, o nil si el Pet es persistible.
func Validate(p Pet) error {
	var fields []FieldError
	for _, r := range petRules {
		if msg := r.check(p); msg != "" {
			fields = append(fields, FieldError{Field: r.field, Message: msg})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
