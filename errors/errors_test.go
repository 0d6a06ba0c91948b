package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := New(PhaseLink, KindSignatureMismatch).
		Path("env", "send").
		Detail("requested (i32) -> i32").
		Build()

	msg := err.Error()
	if !strings.Contains(msg, "[link]") {
		t.Errorf("message missing phase: %q", msg)
	}
	if !strings.Contains(msg, "signature_mismatch") {
		t.Errorf("message missing kind: %q", msg)
	}
	if !strings.Contains(msg, "env.send") {
		t.Errorf("message missing path: %q", msg)
	}
	if !strings.Contains(msg, "requested (i32) -> i32") {
		t.Errorf("message missing detail: %q", msg)
	}
}

func TestError_CauseChain(t *testing.T) {
	cause := stderrors.New("boom")
	err := Instantiation(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be in the chain")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("message missing cause: %q", err.Error())
	}
}

func TestError_Is_MatchesPhaseAndKind(t *testing.T) {
	a := OutOfBounds(PhaseMarshal, 10, 20, 16)
	b := &Error{Phase: PhaseMarshal, Kind: KindOutOfBounds}
	c := &Error{Phase: PhaseDecode, Kind: KindOutOfBounds}

	if !stderrors.Is(a, b) {
		t.Error("same phase+kind should match")
	}
	if stderrors.Is(a, c) {
		t.Error("different phase should not match")
	}
}

func TestError_As(t *testing.T) {
	var structured *Error
	err := HandleNotFound(7, 2)

	if !stderrors.As(err, &structured) {
		t.Fatal("expected *Error in chain")
	}
	if structured.Kind != KindHandleNotFound {
		t.Errorf("kind = %s, want %s", structured.Kind, KindHandleNotFound)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"OutOfBounds", OutOfBounds(PhaseMarshal, 0, 8, 4), PhaseMarshal, KindOutOfBounds},
		{"MissingImport", MissingImport("env", "pol"), PhaseLink, KindMissingImport},
		{"SignatureMismatch", SignatureMismatch("env", "send", ""), PhaseLink, KindSignatureMismatch},
		{"MissingExport", MissingExport("handle"), PhaseInvoke, KindMissingExport},
		{"HandleNotFound", HandleNotFound(3, 1), PhaseDispatch, KindHandleNotFound},
		{"DecodeFailed", DecodeFailed("request", nil), PhaseDecode, KindInvalidData},
		{"Instantiation", Instantiation(nil), PhaseLink, KindInstantiation},
		{"Load", Load("compile failed", nil), PhaseLoad, KindInvalidData},
		{"NotInitialized", NotInitialized(PhaseInvoke, "instance"), PhaseInvoke, KindNotInitialized},
		{"InvalidInput", InvalidInput(PhaseHost, "empty namespace"), PhaseHost, KindInvalidInput},
		{"Trap", Trap("storage_read", stderrors.New("oob")), PhaseHost, KindTrap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("phase = %s, want %s", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", tt.err.Kind, tt.kind)
			}
		})
	}
}

func TestOutOfBounds_NoOverflowInDetail(t *testing.T) {
	// offset+count can exceed uint32; the message must not wrap around.
	err := OutOfBounds(PhaseMarshal, 0xFFFFFFFF, 2, 64)
	if !strings.Contains(err.Error(), "4294967297") {
		t.Errorf("detail should use 64-bit end offset: %q", err.Error())
	}
}
