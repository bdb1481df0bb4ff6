package ingest

import (
	"time"

	"github.com/fwojciec/spyder"
)

// Failure records a document that was produced by a source but could not be
// ingested.
type Failure struct {
	Source string
	Err    error
}

// Result is the outcome of one worker.
type Result struct {
	Worker   spyder.Worker
	Duration time.Duration

	// Documents counts documents whose chunks were all embedded.
	Documents int
	Chunks    int

	// Bytes is the size of the text of the ingested documents.
	Bytes int

	Inserted     int
	Duplicates   int
	FailedWrites int

	// Tokens is only counted when the Ingester has a token counter.
	Tokens int

	// Skipped holds the per-document errors reported by the source.
	Skipped []error

	// Failed holds documents whose embedding failed.
	Failed []Failure
}

// FetchFailures returns the number of skipped documents that could not be
// downloaded.
func (r *Result) FetchFailures() int {
	return r.countSkipped(spyder.EFETCH)
}

// Unreadable returns the number of skipped documents that could not be
// decoded.
func (r *Result) Unreadable() int {
	return r.countSkipped(spyder.EUNREADABLE)
}

func (r *Result) countSkipped(code string) int {
	var n int
	for _, err := range r.Skipped {
		if spyder.ErrorCode(err) == code {
			n++
		}
	}
	return n
}

// NoNewDocuments reports whether documents were processed but every entry
// already existed.
func (r *Result) NoNewDocuments() bool {
	return r.Documents > 0 && r.Inserted == 0 && r.FailedWrites == 0
}

// Report collects the results of a run, one per worker in run order.
type Report struct {
	Results []*Result
}

// Documents returns the number of documents ingested by all workers.
func (r *Report) Documents() int {
	return r.sum(func(res *Result) int { return res.Documents })
}

// Inserted returns the number of entries written by all workers.
func (r *Report) Inserted() int {
	return r.sum(func(res *Result) int { return res.Inserted })
}

// Duplicates returns the number of entries that already existed.
func (r *Report) Duplicates() int {
	return r.sum(func(res *Result) int { return res.Duplicates })
}

// FailedWrites returns the number of entries that could not be written.
func (r *Report) FailedWrites() int {
	return r.sum(func(res *Result) int { return res.FailedWrites })
}

// Skipped returns the number of documents skipped by all sources.
func (r *Report) Skipped() int {
	return r.sum(func(res *Result) int { return len(res.Skipped) })
}

func (r *Report) sum(f func(*Result) int) int {
	if r == nil {
		return 0
	}
	var n int
	for _, res := range r.Results {
		n += f(res)
	}
	return n
}
