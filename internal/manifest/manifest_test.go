package manifest

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestManifestWireFormat(t *testing.T) {
	m := Manifest{
		Publication: "mwb25",
		Year:        2025,
		Issue:       "20250700",
		Language:    "1",
		Title:       "Parsed Publication",
		ExtractedAt: "2025-08-25T00:00:00Z",
		Documents: []Document{{
			ID:    1,
			Title: "Doc",
			HTML:  "<p>x</p>",
			References: []Reference{
				{Kind: RefBible, Link: "bible://1", Text: "Gen 1:1"},
			},
			Assets: []Asset{
				{FileName: "a.jpg", AltText: "alt", Kind: AssetImage},
			},
			Paragraphs: []string{"x"},
		}},
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)

	// Field names are the wire contract consumed by API clients.
	for _, want := range []string{
		`"publication":"mwb25"`,
		`"extracted_at":`,
		`"type":"bible"`,
		`"fileName":"a.jpg"`,
		`"altText":"alt"`,
		`"type":"image"`,
		`"paragraphs":["x"]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("marshaled manifest missing %s:\n%s", want, out)
		}
	}
}
