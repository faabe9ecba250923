package server

import (
	"mime"
	"net/http"
	"strings"
)

const (
	// DefaultAPIVersion is served when the client does not ask for one.
	DefaultAPIVersion = "v1"

	// HeaderAPIVersion reports the API version used for a response.
	HeaderAPIVersion = "X-API-Version"

	vendorMediaPrefix = "application/vnd.pcbshop."
)

var supportedAPIVersions = map[string]struct{}{
	"v1": {},
}

// negotiateAPIVersion reads an Accept header such as
// application/vnd.pcbshop.v1+json. Unknown or malformed versions fall back
// to DefaultAPIVersion.
func negotiateAPIVersion(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil || !strings.HasPrefix(mt, vendorMediaPrefix) {
			continue
		}
		version, _, _ := strings.Cut(strings.TrimPrefix(mt, vendorMediaPrefix), "+")
		if isValidAPIVersion(version) {
			return version
		}
	}
	return DefaultAPIVersion
}

func isValidAPIVersion(version string) bool {
	_, ok := supportedAPIVersions[version]
	return ok
}
