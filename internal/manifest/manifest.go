package manifest

// ReferenceKind classifies a cross-link found in document markup.
type ReferenceKind string

const (
	RefBible       ReferenceKind = "bible"
	RefPublication ReferenceKind = "publication"
	RefVideo       ReferenceKind = "video"
)

// AssetKind classifies a media asset.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
)

// Reference is a typed cross-link in encounter order. Duplicates are kept.
type Reference struct {
	Kind ReferenceKind `json:"type"`
	Link string        `json:"link"`
	Text string        `json:"text"`
}

// Asset is a media file referenced by or embedded in a document.
type Asset struct {
	FileName string    `json:"fileName"`
	AltText  string    `json:"altText"`
	Kind     AssetKind `json:"type"`
}

// Document is one decoded publication document.
type Document struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	HTML       string      `json:"html"`
	References []Reference `json:"references"`
	Assets     []Asset     `json:"assets"`
	Paragraphs []string    `json:"paragraphs"`
}

// Manifest is the aggregate result of one extraction run.
type Manifest struct {
	Publication string     `json:"publication"`
	Year        int        `json:"year"`
	Issue       string     `json:"issue"`
	Language    string     `json:"language"`
	Title       string     `json:"title"`
	ExtractedAt string     `json:"extracted_at"`
	Documents   []Document `json:"documents"`
}
