package extractor

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/neri-gut/jwparse/internal/manifest"
)

const (
	schemeBible    = "bible://"
	schemePub      = "jwpub://"
	schemeVideo    = "webpubvid://"
	schemeMedia    = "jwpub-media://"
	assetPathLocal = "./assets/"
)

// Result is everything mined from one document's markup.
type Result struct {
	HTML       string
	References []manifest.Reference
	Assets     []manifest.Asset
	Paragraphs []string
}

// Extract mines decrypted markup for typed references, media assets and
// paragraph text, and rewrites image paths to the local asset scheme.
// It is a pure function and tolerant of malformed markup: absent or
// broken elements simply contribute nothing.
func Extract(markup string) Result {
	res := Result{
		HTML:       markup,
		References: []manifest.Reference{},
		Assets:     []manifest.Asset{},
		Paragraphs: []string{},
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse only fails on reader errors, which a string
		// reader cannot produce; treat as empty markup regardless.
		return res
	}

	var anchors, images, paras []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				anchors = append(anchors, n)
			case "img":
				images = append(images, n)
			case "p":
				paras = append(paras, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, a := range anchors {
		href := attr(a, "href")
		dataVideo := attr(a, "data-video")
		text := textContent(a)

		switch {
		case strings.HasPrefix(href, schemeBible):
			res.References = append(res.References, manifest.Reference{
				Kind: manifest.RefBible,
				Link: href,
				Text: text,
			})
		case strings.HasPrefix(href, schemePub):
			res.References = append(res.References, manifest.Reference{
				Kind: manifest.RefPublication,
				Link: href,
				Text: text,
			})
		}

		// Video detection is independent of the branches above: a
		// webpubvid link yields both a reference and an asset.
		if strings.HasPrefix(href, schemeVideo) || strings.HasPrefix(dataVideo, schemeVideo) {
			link := href
			if dataVideo != "" {
				link = dataVideo
			}
			label := text
			if label == "" {
				label = "Video"
			}
			res.References = append(res.References, manifest.Reference{
				Kind: manifest.RefVideo,
				Link: link,
				Text: label,
			})
			res.Assets = append(res.Assets, manifest.Asset{
				FileName: link,
				AltText:  label,
				Kind:     manifest.AssetVideo,
			})
		}
	}

	for _, img := range images {
		src := attr(img, "src")
		if src == "" {
			continue
		}
		name := strings.ReplaceAll(src, schemeMedia, "")
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		res.Assets = append(res.Assets, manifest.Asset{
			FileName: name,
			AltText:  attr(img, "alt"),
			Kind:     manifest.AssetImage,
		})

		// Global text substitution rather than a DOM rewrite. If the
		// same src string happens to occur elsewhere in the markup it
		// is rewritten too; known limitation, kept for bit-identical
		// output.
		res.HTML = strings.ReplaceAll(res.HTML, src, assetPathLocal+name)
	}

	for _, p := range paras {
		if t := textContent(p); t != "" {
			res.Paragraphs = append(res.Paragraphs, t)
		}
	}

	return res
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// textContent joins the text of all descendant text nodes with single
// spaces and trims the result.
func textContent(n *html.Node) string {
	var parts []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(strings.Join(parts, " "))
}
