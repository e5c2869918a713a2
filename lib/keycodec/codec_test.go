package keycodec

import (
	"reflect"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     EncodedKey
		wantErr  bool
	}{
		{"SingleSegment", []string{"a"}, EncodedKey{"a", "", "", ""}, false},
		{"TwoSegments", []string{"doc", "abc123"}, EncodedKey{"doc", "abc123", "", ""}, false},
		{"FullKey", []string{"a", "b", "c", "d"}, EncodedKey{"a", "b", "c", "d"}, false},
		{"EmbeddedEmptySegment", []string{"a", "", "b"}, EncodedKey{"a", "", "b", ""}, false},
		{"EmptyKey", []string{}, EncodedKey{}, true},
		{"NilKey", nil, EncodedKey{}, true},
		{"TooManySegments", []string{"a", "b", "c", "d", "e"}, EncodedKey{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.segments)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Encode(%v) error = %v, wantErr = %v", tt.segments, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Encode(%v) = %v, want %v", tt.segments, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		encoded EncodedKey
		want    []string
	}{
		{"SingleSegment", EncodedKey{"a", "", "", ""}, []string{"a"}},
		{"TwoSegments", EncodedKey{"doc", "abc123", "", ""}, []string{"doc", "abc123"}},
		{"FullKey", EncodedKey{"a", "b", "c", "d"}, []string{"a", "b", "c", "d"}},
		{"EmbeddedEmptySegment", EncodedKey{"a", "", "b", ""}, []string{"a", "", "b"}},
		{"AllEmpty", EncodedKey{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.encoded)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%v) = %v, want %v", tt.encoded, got, tt.want)
			}
		})
	}
}

// TestRoundTrip verifies that Decode inverts Encode for keys that do not
// end in an empty segment.
func TestRoundTrip(t *testing.T) {
	keys := [][]string{
		{"a"},
		{"doc", "abc123"},
		{"doc", "abc123", "snapshot"},
		{"a", "b", "c", "d"},
		{"a", "", "b"},
		{"", "x"}, // empty segment in a non-trailing position survives
	}

	for _, key := range keys {
		encoded, err := Encode(key)
		if err != nil {
			t.Fatalf("Encode(%v) failed: %v", key, err)
		}
		decoded := Decode(encoded)
		if !reflect.DeepEqual(decoded, key) {
			t.Errorf("round trip of %v returned %v", key, decoded)
		}
	}
}

// TestTrailingEmptySegmentIsLossy documents the accepted padding
// ambiguity: a key ending in an empty segment decodes to its shorter
// padded form.
func TestTrailingEmptySegmentIsLossy(t *testing.T) {
	encoded, err := Encode([]string{"a", ""})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	short, err := Encode([]string{"a"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if encoded != short {
		t.Errorf("expected [a \"\"] and [a] to share an encoding, got %v and %v", encoded, short)
	}

	if got := Decode(encoded); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Decode(%v) = %v, want [a]", encoded, got)
	}
}

func TestMatchesPrefix(t *testing.T) {
	encoded := EncodedKey{"a", "b", "c", ""}

	tests := []struct {
		name   string
		prefix []string
		want   bool
	}{
		{"FirstSegment", []string{"a"}, true},
		{"TwoSegments", []string{"a", "b"}, true},
		{"ExactLogicalKey", []string{"a", "b", "c"}, true},
		{"IncludingPadding", []string{"a", "b", "c", ""}, true},
		{"WrongFirstSegment", []string{"x"}, false},
		{"WrongSecondSegment", []string{"a", "x"}, false},
		{"NoSubstringMatching", []string{"a", "bb"}, false},
		{"TooLong", []string{"a", "b", "c", "", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesPrefix(encoded, tt.prefix); got != tt.want {
				t.Errorf("MatchesPrefix(%v, %v) = %v, want %v", encoded, tt.prefix, got, tt.want)
			}
		})
	}
}
