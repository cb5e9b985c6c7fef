package markdown

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestNormalize(t *testing.T) {
	content := "---\ntitle: Images\n---\n\n# Images\n\n![inline](data:image/png;base64,AAAA)\n\n![relative](images/diagram.png)\n"

	normalized, err := Normalize(content,
		StripDataURL,
		RewriteImages(func(destination string) string {
			if strings.HasPrefix(destination, "images/") {
				return "https://blog.example.com/" + destination
			}
			return destination
		}),
	)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if !strings.HasPrefix(normalized, "---\ntitle: Images\n---\n") {
		t.Errorf("normalized: expected the header to be kept\n%s", normalized)
	}

	if strings.Contains(normalized, "data:image") {
		t.Errorf("normalized: expected the data url to be stripped\n%s", normalized)
	}

	for _, s := range []string{"#stripped", "https://blog.example.com/images/diagram.png", "# Images"} {
		if !strings.Contains(normalized, s) {
			t.Errorf("normalized: expected to contain '%s'\n%s", s, normalized)
		}
	}
}
