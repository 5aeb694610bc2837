package extractor

import (
	"reflect"
	"strings"
	"testing"

	"github.com/neri-gut/jwparse/internal/manifest"
)

func TestExtract_BibleReference(t *testing.T) {
	res := Extract(`<html><body><a href="bible://40003016">Read  Matthew 3:16</a></body></html>`)

	if len(res.References) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(res.References))
	}
	ref := res.References[0]
	if ref.Kind != manifest.RefBible {
		t.Errorf("expected bible kind, got %q", ref.Kind)
	}
	if ref.Link != "bible://40003016" {
		t.Errorf("unexpected link %q", ref.Link)
	}
	if ref.Text != "Read  Matthew 3:16" {
		t.Errorf("unexpected text %q", ref.Text)
	}
}

func TestExtract_PublicationReference(t *testing.T) {
	res := Extract(`<a href="jwpub://b/NWTR/40">The Gospel</a>`)

	if len(res.References) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(res.References))
	}
	if res.References[0].Kind != manifest.RefPublication {
		t.Errorf("expected publication kind, got %q", res.References[0].Kind)
	}
}

func TestExtract_PlainAnchorIgnored(t *testing.T) {
	res := Extract(`<a href="https://example.org">external</a>`)
	if len(res.References) != 0 {
		t.Errorf("expected no references, got %d", len(res.References))
	}
}

func TestExtract_ImageAssetAndRewrite(t *testing.T) {
	res := Extract(`<p><img src="jwpub-media://foo/bar.jpg" alt="X"></p>`)

	if len(res.Assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(res.Assets))
	}
	a := res.Assets[0]
	if a.FileName != "bar.jpg" || a.AltText != "X" || a.Kind != manifest.AssetImage {
		t.Errorf("unexpected asset %+v", a)
	}
	if !strings.Contains(res.HTML, "./assets/bar.jpg") {
		t.Errorf("rewritten markup missing local path: %s", res.HTML)
	}
	if strings.Contains(res.HTML, "jwpub-media://") {
		t.Errorf("original src survived rewrite: %s", res.HTML)
	}
}

func TestExtract_VideoFromDataAttribute(t *testing.T) {
	res := Extract(`<a data-video="webpubvid://vid1" href=""></a>`)

	if len(res.References) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(res.References))
	}
	ref := res.References[0]
	if ref.Kind != manifest.RefVideo || ref.Link != "webpubvid://vid1" || ref.Text != "Video" {
		t.Errorf("unexpected video reference %+v", ref)
	}

	if len(res.Assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(res.Assets))
	}
	asset := res.Assets[0]
	if asset.Kind != manifest.AssetVideo || asset.FileName != "webpubvid://vid1" || asset.AltText != "Video" {
		t.Errorf("unexpected video asset %+v", asset)
	}
}

func TestExtract_VideoIndependentOfPublicationLink(t *testing.T) {
	// A publication link that also declares a video yields both.
	res := Extract(`<a href="jwpub://v/1" data-video="webpubvid://clip">Watch</a>`)

	if len(res.References) != 2 {
		t.Fatalf("expected 2 references, got %d", len(res.References))
	}
	if res.References[0].Kind != manifest.RefPublication {
		t.Errorf("expected publication first, got %q", res.References[0].Kind)
	}
	if res.References[1].Kind != manifest.RefVideo || res.References[1].Link != "webpubvid://clip" {
		t.Errorf("unexpected video reference %+v", res.References[1])
	}
}

func TestExtract_VideoHrefWithText(t *testing.T) {
	res := Extract(`<a href="webpubvid://pub-mwbv_202105_1_VIDEO">Sample Conversation</a>`)

	if len(res.References) != 1 || res.References[0].Text != "Sample Conversation" {
		t.Fatalf("unexpected references %+v", res.References)
	}
	if res.References[0].Link != "webpubvid://pub-mwbv_202105_1_VIDEO" {
		t.Errorf("unexpected link %q", res.References[0].Link)
	}
}

func TestExtract_Paragraphs(t *testing.T) {
	res := Extract(`<body><p> First. </p><p></p><p>Second <b>bold</b></p></body>`)

	want := []string{"First.", "Second  bold"}
	if !reflect.DeepEqual(res.Paragraphs, want) {
		t.Errorf("paragraphs mismatch:\n got %q\nwant %q", res.Paragraphs, want)
	}
}

func TestExtract_OrderPreserved(t *testing.T) {
	res := Extract(`
		<a href="bible://1">one</a>
		<a href="jwpub://2">two</a>
		<a href="bible://3">three</a>
		<img src="a/x.png" alt="">
		<img src="b/y.jpg" alt="">
	`)

	links := []string{"bible://1", "jwpub://2", "bible://3"}
	for i, want := range links {
		if res.References[i].Link != want {
			t.Errorf("reference[%d]: expected %q, got %q", i, want, res.References[i].Link)
		}
	}
	names := []string{"x.png", "y.jpg"}
	for i, want := range names {
		if res.Assets[i].FileName != want {
			t.Errorf("asset[%d]: expected %q, got %q", i, want, res.Assets[i].FileName)
		}
	}
}

func TestExtract_NoDeduplication(t *testing.T) {
	res := Extract(`<a href="bible://1">x</a><a href="bible://1">x</a>`)
	if len(res.References) != 2 {
		t.Errorf("expected duplicates kept, got %d references", len(res.References))
	}
}

func TestExtract_Idempotent(t *testing.T) {
	markup := `<p>Text</p><a href="bible://1">ref</a><img src="jwpub-media://m/pic.jpg" alt="p">`

	a := Extract(markup)
	b := Extract(markup)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("extraction not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestExtract_MalformedMarkup(t *testing.T) {
	res := Extract(`<a href="bible://40001001">unclosed <p>still a paragraph`)

	if len(res.References) != 1 {
		t.Errorf("expected 1 reference from malformed markup, got %d", len(res.References))
	}
	if len(res.Paragraphs) != 1 || res.Paragraphs[0] != "still a paragraph" {
		t.Errorf("unexpected paragraphs %q", res.Paragraphs)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	res := Extract("")
	if len(res.References) != 0 || len(res.Assets) != 0 || len(res.Paragraphs) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}
