package storage

type Bucket string

const (
	BucketListingPhotos    Bucket = "listing-photos"
	BucketVerificationDocs Bucket = "verification-docs"
	BucketHighlights       Bucket = "highlights"
)

// Public buckets are served without a token.
func (b Bucket) Public() bool {
	return b == BucketListingPhotos || b == BucketHighlights
}

func (b Bucket) Valid() bool {
	return b == BucketListingPhotos || b == BucketVerificationDocs || b == BucketHighlights
}

type Kind string

const (
	KindPhoto     Kind = "photo"
	KindDocument  Kind = "document"
	KindHighlight Kind = "highlight"
)

type Limit struct {
	MaxBytes int64
	Types    map[string]string // mime -> extension
}

const mb = 1024 * 1024

var Limits = map[Kind]Limit{
	KindPhoto: {
		MaxBytes: 5 * mb,
		Types:    map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "image/webp": ".webp"},
	},
	KindDocument: {
		MaxBytes: 10 * mb,
		Types:    map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "application/pdf": ".pdf"},
	},
	KindHighlight: {
		MaxBytes: 10 * mb,
		Types:    map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "image/webp": ".webp", "video/mp4": ".mp4", "video/webm": ".webm"},
	},
}
