package pets

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_AllTypesAccepted(t *testing.T) {
	for typ := range ValidTypes {
		p := Pet{Name: "Max", Description: "Perro mestizo", Type: typ}
		if err := Validate(p); err != nil {
			t.Fatalf("expected type %q valid, got %v", typ, err)
		}
	}
}

func TestValidate_UnknownTypeRejected(t *testing.T) {
	p := Pet{Name: "Max", Description: "desc", Type: PetType("fish")}

	err := Validate(p)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "type" {
		t.Fatalf("expected single type violation, got %#v", ve.Fields)
	}
	if !strings.Contains(ve.Fields[0].Message, "fish") {
		t.Fatalf("expected message to name the bad value, got %q", ve.Fields[0].Message)
	}
}

func TestValidate_WhitespaceCountsAsEmpty(t *testing.T) {
	p := Pet{Name: "  ", Description: "\t", Type: "cat"}

	err := Validate(p)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected name+description violations, got %#v", ve.Fields)
	}
}

func TestValidationError_MessageListsFields(t *testing.T) {
	ve := &ValidationError{Fields: []FieldError{
		{Field: "name", Message: "required"},
		{Field: "type", Message: "required"},
	}}
	msg := ve.Error()
	if !strings.Contains(msg, "name: required") || !strings.Contains(msg, "type: required") {
		t.Fatalf("unexpected message: %q", msg)
	}
}
