package httpapi

// Options configures the status HTTP surface.
type Options struct {
	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string
	// CORSMethods defaults to GET, OPTIONS.
	CORSMethods []string
	// CORSHeaders defaults to Accept, Content-Type, X-Request-Id.
	CORSHeaders []string
}

func (o Options) corsEnabled() bool { return len(o.CORSOrigins) > 0 }

func (o Options) methods() []string {
	if len(o.CORSMethods) > 0 {
		return o.CORSMethods
	}
	return []string{"GET", "OPTIONS"}
}

func (o Options) headers() []string {
	if len(o.CORSHeaders) > 0 {
		return o.CORSHeaders
	}
	return []string{"Accept", "Content-Type", "X-Request-Id"}
}
