package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("holt-winters forecast", 24, 10)

	if !IsInsufficientData(err) {
		t.Fatal("expected insufficient data error to match sentinel")
	}

	var ide *InsufficientDataError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &ide) {
		t.Fatal("expected errors.As to find InsufficientDataError through wrapping")
	}
	if ide.Required != 24 || ide.Got != 10 {
		t.Errorf("unexpected counts: required=%d got=%d", ide.Required, ide.Got)
	}
	if IsNotFoundError(err) {
		t.Error("insufficient data must not be reported as not found")
	}
}

func TestColumnNotFoundError(t *testing.T) {
	err := NewColumnNotFoundError("revenue")
	if !IsNotFoundError(err) {
		t.Error("expected column error to be a not-found error")
	}
	if !errors.Is(err, ErrColumnNotFound) {
		t.Error("expected column error to match ErrColumnNotFound")
	}
}

func TestIsInvalidRequest(t *testing.T) {
	if !IsInvalidRequest(fmt.Errorf("forecast: %w", ErrUnknownMethod)) {
		t.Error("unknown method should be an invalid request")
	}
	if IsInvalidRequest(ErrInsufficientData) {
		t.Error("insufficient data is not an invalid request")
	}
}
