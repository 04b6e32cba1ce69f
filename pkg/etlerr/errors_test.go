package etlerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassification(t *testing.T) {
	wrapped := fmt.Errorf("extract: %w", &FormatError{Op: "read", Path: "in.csv", Err: ErrUnsupportedFormat})
	if !IsFormat(wrapped) || !IsFatal(wrapped) {
		t.Fatal("wrapped format error not classified")
	}
	if !errors.Is(wrapped, ErrUnsupportedFormat) {
		t.Fatal("format error does not unwrap to sentinel")
	}
	conv := &ConversionError{Field: "age", Row: 3, Value: "abc", Target: "int"}
	if IsFatal(conv) || !IsConversion(conv) {
		t.Fatal("conversion error must not be fatal")
	}
	if !strings.Contains(conv.Error(), `"age" row 3`) {
		t.Fatalf("message misses field/row: %s", conv.Error())
	}
	if !IsFatal(&StateError{Op: "load", State: "idle"}) {
		t.Fatal("state error must be fatal")
	}
	if !IsFatal(&ConfigurationError{Key: "batch_size", Value: 0}) {
		t.Fatal("configuration error must be fatal")
	}
	m := Missing("normalize", "price")
	if !errors.Is(m, ErrColumnNotFound) {
		t.Fatal("missing column error lost sentinel")
	}
}
