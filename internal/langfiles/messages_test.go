package langfiles

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestMessagesPreserveInsertionOrder(t *testing.T) {
	m := NewMessages("zeta", "Z", "alpha", "A", "mid", "M")
	m.Set("alpha", "A2")
	m.Delete("mid")
	m.Delete("unknown")

	if got := m.Keys(); !slices.Equal(got, []string{"zeta", "alpha"}) {
		t.Fatalf("unexpected key order %v", got)
	}
	if v, _ := m.Get("alpha"); v != "A2" {
		t.Fatalf("expected overwritten value, got %q", v)
	}
}

func TestMessagesJSONKeepsOrder(t *testing.T) {
	m := NewMessages("b", "<b>", "a", "A")
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"b":"<b>","a":"A"}` {
		t.Fatalf("unexpected json %s", data)
	}

	var decoded Messages
	if err := json.Unmarshal([]byte(`{"second":"2","first":1,"none":null,"ok":true}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := decoded.Keys(); !slices.Equal(got, []string{"second", "first", "none", "ok"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if v, _ := decoded.Get("first"); v != "1" {
		t.Fatalf("expected literal number text, got %q", v)
	}
	if v, ok := decoded.Get("none"); !ok || v != "" {
		t.Fatalf("expected null to decode as blank, got %q %v", v, ok)
	}
}

func TestMessagesUnmarshalRejectsNested(t *testing.T) {
	var m Messages
	err := json.Unmarshal([]byte(`{"a":{"b":"c"}}`), &m)
	if !errors.Is(err, ErrNotFlat) {
		t.Fatalf("expected ErrNotFlat, got %v", err)
	}
}

func TestMessagesEqualIgnoresOrder(t *testing.T) {
	a := NewMessages("x", "1", "y", "2")
	b := NewMessages("y", "2", "x", "1")
	if !a.Equal(b) {
		t.Fatal("expected equal mappings")
	}
	b.Set("x", "changed")
	if a.Equal(b) {
		t.Fatal("expected different values to compare unequal")
	}
}

func TestIsBlank(t *testing.T) {
	for _, v := range []string{"", " ", "\t\n"} {
		if !IsBlank(v) {
			t.Fatalf("expected %q to be blank", v)
		}
	}
	if IsBlank(" x ") {
		t.Fatal("expected non-blank value")
	}
}

func TestMessagesUnmarshalRejectsInvalidUTF8(t *testing.T) {
	var decoded Messages
	err := json.Unmarshal([]byte("{\"failed\":\"\xff\xfe\"}"), &decoded)
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}
