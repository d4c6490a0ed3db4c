package internal

// ExtractorSource reads one value from a request. It reports false when the
// value is absent or empty.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries its sources in order.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor returns an Extractor over sources.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Header(name)
		return v, v != ""
	}
}

// FromCookie reads a cookie through the app's cookie manager, so a signed
// cookie with a bad signature reads as absent.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.Cookie(name)
		if err != nil {
			return "", false
		}
		return v, v != ""
	}
}
