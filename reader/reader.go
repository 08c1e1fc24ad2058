// Package reader supplies the chunked, pull-based event sources that
// drive a proc.DataFeed, and the ingestion passes (sort, timestamp
// correction, snapshot bracketing) applied before a series is fed to
// the core. Grounded on original_source/hftbacktest/proc/proc.py's
// reader.next()/reader.release() contract.
package reader

import "github.com/exchange/hftbacktest/event"

// Reader is a chunked, pull-based source of event rows. Next returns
// a zero-length, nil-error chunk at end of stream. Release lets the
// reader recycle or discard the backing storage of a chunk the caller
// is done with.
type Reader interface {
	Next() ([]event.Row, error)
	Release(chunk []event.Row)
	Close() error
}
