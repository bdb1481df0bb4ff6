// Package fs provides the local file system side of ingestion: the local
// worker's directory source and the archive of raw downloads.
package fs

import (
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/spyder"
)

// URLToPath converts a download URL to a relative file path under its host.
// Example: https://example.com/files/act.pdf → example.com/files/act.pdf
// A root or trailing slash path is stored as index.html.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", spyder.WrapError(spyder.EINVALID, err, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return "", spyder.Errorf(spyder.EINVALID, "URL %q has no host", rawURL)
	}

	p := path.Clean("/" + u.Path)
	if p == "/" || strings.HasSuffix(u.Path, "/") {
		p = path.Join(p, "index.html")
	}
	return strings.ToLower(u.Hostname()) + p, nil
}
