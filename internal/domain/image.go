package domain

// MaterializedImage is an image downloaded from a URL and re-encoded
// inline for embedding in the backend envelope. Filename is derived and
// not guaranteed unique.
type MaterializedImage struct {
	Filename    string
	ContentType string
	DataURI     string
	Size        int64
	OriginURL   string
}
