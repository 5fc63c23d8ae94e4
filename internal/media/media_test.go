package media

import (
	"strings"
	"testing"
)

// TestDigest tests the SHA3-256 digest.
func TestDigest(t *testing.T) {
	t.Parallel()

	// SHA3-256 of the empty input.
	const empty = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := Digest(nil); got != empty {
		t.Errorf("Digest(nil) = %s, want %s", got, empty)
	}
	if Digest([]byte("a")) == Digest([]byte("b")) {
		t.Error("different inputs should have different digests")
	}
}

// TestInspect tests summaries of data without EXIF.
func TestInspect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		data        []byte
		contentType string
	}{
		{
			name:        "plain text",
			data:        []byte("hello world"),
			contentType: "text/plain",
		},
		{
			name:        "png header",
			data:        []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32)),
			contentType: "image/png",
		},
		{
			name:        "empty",
			data:        nil,
			contentType: "text/plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := Inspect("sample", tt.data)
			if s.Name != "sample" || s.Size != len(tt.data) {
				t.Errorf("unexpected summary %+v", s)
			}
			if !strings.HasPrefix(s.ContentType, tt.contentType) {
				t.Errorf("ContentType = %q, want prefix %q", s.ContentType, tt.contentType)
			}
			if s.Digest != Digest(tt.data) {
				t.Error("digest mismatch")
			}
			if len(s.Tags) != 0 || s.HasLocation() {
				t.Errorf("expected no EXIF tags, got %+v", s.Tags)
			}
		})
	}
}

// TestHasLocation tests GPS detection on the summary.
func TestHasLocation(t *testing.T) {
	t.Parallel()

	s := Summary{Tags: []Tag{{Category: CategoryDevice, Name: "Make", Value: "Canon"}}}
	if s.HasLocation() {
		t.Error("device tag should not count as location")
	}
	s.Tags = append(s.Tags, Tag{Category: CategoryLocation, Name: "GPSLatitude", Value: "1"})
	if !s.HasLocation() {
		t.Error("expected location")
	}
}
