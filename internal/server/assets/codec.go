// Package assets manages externally stored media objects: deriving storage
// keys from delivery URLs, talking to the S3-compatible backend, and running
// the upload-then-swap-then-cleanup protocol for single-slot assets.
package assets

import "strings"

// uploadMarker separates the public delivery prefix from the versioned
// object path in a delivery URL:
//
//	<base>/upload/v<version>/<objectID><ext>
const uploadMarker = "/upload/"

// ExtractObjectID derives the storage key from a delivery URL. The segment
// right after the marker is a cache-busting version and is dropped; the file
// extension is cosmetic and stripped. The result is the exact key of the
// object in the external store.
//
// ExtractObjectID is total: for any URL lacking the marker or the expected
// segments it returns "", meaning "nothing to clean up". Callers must treat
// "" as a skip-condition, not a failure.
func ExtractObjectID(url string) string {
	clean := url
	if i := strings.IndexByte(clean, '?'); i >= 0 {
		clean = clean[:i]
	}

	_, rest, found := strings.Cut(clean, uploadMarker)
	if !found {
		return ""
	}

	// drop the version segment
	_, id, found := strings.Cut(rest, "/")
	if !found || id == "" {
		return ""
	}

	// strip the extension of the last path segment
	if dot := strings.LastIndexByte(id, '.'); dot > strings.LastIndexByte(id, '/') && dot >= 0 {
		id = id[:dot]
	}

	return id
}
