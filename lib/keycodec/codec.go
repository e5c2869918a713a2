package keycodec

import "fmt"

// MaxSegments is the maximum number of segments a logical key may have.
// Every encoded key has exactly this many slots.
const MaxSegments = 4

// EncodedKey is the fixed-width representation of a logical key. Slots
// beyond the logical key's length are padded with the empty string.
type EncodedKey [MaxSegments]string

// Validate checks the segment-count bound shared by all store operations.
// A valid key or prefix has between 1 and MaxSegments segments.
func Validate(segments []string) error {
	if len(segments) == 0 {
		return fmt.Errorf("key must have at least one segment")
	}
	if len(segments) > MaxSegments {
		return fmt.Errorf("key cannot have more than %d segments (got %d)", MaxSegments, len(segments))
	}
	return nil
}

// Encode maps a logical key onto its fixed-width form by appending
// empty-string padding slots. It fails if the segment-count bound is
// violated.
func Encode(segments []string) (EncodedKey, error) {
	var encoded EncodedKey
	if err := Validate(segments); err != nil {
		return encoded, err
	}
	copy(encoded[:], segments)
	return encoded, nil
}

// Decode reconstructs the logical key from its fixed-width form by
// stripping all trailing empty slots.
//
// This is the exact inverse of Encode for any key that does not itself
// end in an empty segment. A logical key whose last segment is the empty
// string is indistinguishable from its shorter padded form ("a","") and
// ("a") both encode to ("a","","",""), so the trailing empty segment is
// lost here. Known limitation, kept for compatibility with the service
// this store was built for.
func Decode(encoded EncodedKey) []string {
	end := MaxSegments
	for end > 0 && encoded[end-1] == "" {
		end--
	}
	segments := make([]string, end)
	copy(segments, encoded[:end])
	return segments
}

// MatchesPrefix reports whether the leading len(prefix) slots of an
// encoded key are slot-wise equal to the prefix. Matching is exact
// string equality, never substring or glob matching.
func MatchesPrefix(encoded EncodedKey, prefix []string) bool {
	if len(prefix) > MaxSegments {
		return false
	}
	for i, segment := range prefix {
		if encoded[i] != segment {
			return false
		}
	}
	return true
}
