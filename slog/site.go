package slog

import (
	"log/slog"

	"github.com/fwojciec/spyder"
)

var (
	_ spyder.SiteParser      = (*LoggingSiteParser)(nil)
	_ spyder.IndexPageParser = (*LoggingSiteParser)(nil)
)

// LoggingSiteParser wraps a SiteParser with debug logging.
type LoggingSiteParser struct {
	next   spyder.SiteParser
	logger *slog.Logger
}

// NewLoggingSiteParser creates a new LoggingSiteParser.
func NewLoggingSiteParser(next spyder.SiteParser, logger *slog.Logger) *LoggingSiteParser {
	return &LoggingSiteParser{next: next, logger: logger}
}

// Name delegates to the wrapped parser.
func (p *LoggingSiteParser) Name() string {
	return p.next.Name()
}

// ExtractLinks logs the number of links found on the page.
func (p *LoggingSiteParser) ExtractLinks(page *spyder.Page) (links []string, err error) {
	defer func() {
		p.logger.Debug("extract links",
			"parser", p.next.Name(),
			"url", page.URL,
			"links", len(links),
			"err", err,
		)
	}()
	return p.next.ExtractLinks(page)
}

// ExtractTable logs the number of table rows found on the page.
func (p *LoggingSiteParser) ExtractTable(page *spyder.Page) (rows []spyder.Row, err error) {
	defer func() {
		p.logger.Debug("extract table",
			"parser", p.next.Name(),
			"url", page.URL,
			"rows", len(rows),
			"err", err,
		)
	}()
	return p.next.ExtractTable(page)
}

// IsIndex delegates to the wrapped parser if it recognizes index pages.
func (p *LoggingSiteParser) IsIndex(page *spyder.Page) bool {
	if ip, ok := p.next.(spyder.IndexPageParser); ok {
		return ip.IsIndex(page)
	}
	return false
}
