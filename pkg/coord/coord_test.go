package coord

import (
	"encoding/json"
	"testing"
)

func TestParseLib(t *testing.T) {
	tests := []struct {
		in      string
		want    Lib
		wantErr bool
	}{
		{"org.clojure/clojure", Lib{"org.clojure", "clojure"}, false},
		{"clojure", Lib{"clojure", "clojure"}, false},
		{"com.google.guava/guava$tests", Lib{"com.google.guava", "guava$tests"}, false},
		{"  a/b  ", Lib{"a", "b"}, false},
		{"", Lib{}, true},
		{"/b", Lib{}, true},
		{"a/", Lib{}, true},
	}
	for _, tt := range tests {
		got, err := ParseLib(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLib(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseLib(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLibBase(t *testing.T) {
	l := Lib{Group: "com.google.guava", Name: "guava$tests"}
	if got := l.Base(); got.Name != "guava" {
		t.Errorf("Base name = %s, want guava", got.Name)
	}
	plain := Lib{Group: "a", Name: "b"}
	if plain.Base() != plain {
		t.Error("Base of a plain lib should be itself")
	}
}

func TestLibTextRoundTrip(t *testing.T) {
	in := map[Lib]string{
		{Group: "org.clojure", Name: "clojure"}: "1.9.0",
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[Lib]string
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out[Lib{Group: "org.clojure", Name: "clojure"}] != "1.9.0" {
		t.Errorf("round trip lost entry: %v", out)
	}
}

func TestCoordIsZero(t *testing.T) {
	if !(Coord{}).IsZero() {
		t.Error("zero coord should be zero")
	}
	if (Coord{Type: TypeMaven, Version: "1"}).IsZero() {
		t.Error("maven coord should not be zero")
	}
	// Exclusions alone do not make a coordinate concrete.
	if !(Coord{Exclusions: []Lib{{Group: "a", Name: "a"}}}).IsZero() {
		t.Error("exclusions-only coord should still be zero")
	}
}
