package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTextFormat_SortedAndLeveled(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, App: "ledger", Output: &buf})

	l.Debug("hidden", nil)
	l.With(map[string]any{"request_id": "r1"}).Info("moved", map[string]any{"animal_id": 7})

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug should be filtered at info level: %q", out)
	}
	if strings.Count(out, "\n") != 0 {
		t.Fatalf("expected a single line, got %q", out)
	}
	idxAnimal := strings.Index(out, "animal_id=7")
	idxApp := strings.Index(out, "app=ledger")
	idxReq := strings.Index(out, "request_id=r1")
	if idxAnimal < 0 || idxApp < 0 || idxReq < 0 {
		t.Fatalf("missing fields: %q", out)
	}
	if !(idxAnimal < idxApp && idxApp < idxReq) {
		t.Fatalf("expected sorted keys: %q", out)
	}
}

func TestJSONFormat_ErrorsAsStrings(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, Output: &buf})

	l.Error("append failed", map[string]any{"err": errors.New("ledger down")})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry["level"] != "error" || entry["msg"] != "append failed" || entry["err"] != "ledger down" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Level: Debug, Output: &buf})
	_ = parent.With(map[string]any{"child": true})

	parent.Info("x", nil)
	if strings.Contains(buf.String(), "child") {
		t.Fatalf("parent logger got child fields: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})

	if got := FromContext(context.Background(), nil); got == nil {
		t.Fatal("expected nop fallback")
	}
	ctx := WithContext(context.Background(), l)
	FromContext(ctx, Nop()).Info("from ctx", nil)
	if !strings.Contains(buf.String(), "from ctx") {
		t.Fatalf("expected context logger to be used, got %q", buf.String())
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	cases := map[string]Level{"debug": Debug, "WARNING": Warn, "error": Error, "": Info, "nope": Info}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want)
		}
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("x") != FormatText {
		t.Fatal("unexpected format parsing")
	}
}
