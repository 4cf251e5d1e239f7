package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %q, want %q", got, empty)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs share a checksum")
	}
}

func TestMatches(t *testing.T) {
	data := []byte(`{"pages":{}}`)
	if !Matches(data, Sum(data)) {
		t.Error("data should match its own sum")
	}
	if Matches(data, Sum([]byte("other"))) {
		t.Error("data matched a foreign sum")
	}
	if Matches(nil, "") {
		t.Error("empty sum must never match")
	}
}
