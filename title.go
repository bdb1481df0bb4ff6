package spyder

import (
	"path"
	"strings"
)

// TitleFromContent returns the text of the first Markdown heading in
// content, or the empty string if there is none.
func TitleFromContent(content string) string {
	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		title := strings.TrimSpace(strings.TrimLeft(line, "#"))
		if title != "" {
			return title
		}
	}
	return ""
}

// TitleFromName returns the base name of a path or URL path without its
// extension.
func TitleFromName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
