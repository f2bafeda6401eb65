package errors

import (
	"errors"
	"fmt"
	"testing"
)

var (
	testCode  = MustNewCode("test.code")
	testCode2 = MustNewCode("test.other")
)

func TestNew(t *testing.T) {
	err := New(CommonInternal, "boom", nil)

	if err.Message != "boom" {
		t.Errorf("expected message 'boom', got %q", err.Message)
	}
	if err.Code.String() != "common.internal" {
		t.Errorf("expected code 'common.internal', got %q", err.Code.String())
	}
	if err.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if len(err.Stack) == 0 {
		t.Error("expected stack trace to be captured")
	}
}

func TestNewWithCause(t *testing.T) {
	cause := errors.New("root cause")
	err := New(testCode, "wrapper", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if got := err.Error(); got != "wrapper: root cause" {
		t.Errorf("unexpected Error() output: %q", got)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(testCode, "pass #%d failed", 3)
	if err.Message != "pass #3 failed" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Cause != nil {
		t.Error("Newf must not set a cause")
	}
}

func TestAddContext(t *testing.T) {
	err := New(testCode, "boom", nil).
		AddContext("database", "analytics").
		AddContext("table", "events")

	if err.Context["database"] != "analytics" || err.Context["table"] != "events" {
		t.Errorf("unexpected context: %v", err.Context)
	}
}

func TestHasCode(t *testing.T) {
	inner := New(testCode, "inner", nil)
	outer := New(testCode2, "outer", inner)
	wrapped := fmt.Errorf("plain wrap: %w", outer)

	if !HasCode(outer, testCode2) {
		t.Error("expected outer code to match")
	}
	if !HasCode(outer, testCode) {
		t.Error("expected inner code to be found through the chain")
	}
	if !HasCode(wrapped, testCode) {
		t.Error("expected code to be found through fmt wrapping")
	}
	if HasCode(outer, CommonTimeout) {
		t.Error("did not expect an unrelated code to match")
	}
	if HasCode(nil, testCode) {
		t.Error("nil error must not match any code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(testCode, "x", nil)); got != "test.code" {
		t.Errorf("unexpected code %q", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("expected empty code for plain error, got %q", got)
	}
}
