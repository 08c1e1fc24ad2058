package reader

import "github.com/exchange/hftbacktest/event"

// SliceReader serves an in-memory []event.Row in fixed-size chunks.
// Used by tests and by cmd/backtest (fixture cache hits and gob dumps),
// where the full series already fits in memory.
type SliceReader struct {
	rows      []event.Row
	chunkSize int
	pos       int
}

// NewSliceReader wraps rows for chunked delivery. A non-positive
// chunkSize serves the whole slice as one chunk.
func NewSliceReader(rows []event.Row, chunkSize int) *SliceReader {
	if chunkSize <= 0 {
		chunkSize = len(rows)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}
	return &SliceReader{rows: rows, chunkSize: chunkSize}
}

func (r *SliceReader) Next() ([]event.Row, error) {
	if r.pos >= len(r.rows) {
		return nil, nil
	}
	end := r.pos + r.chunkSize
	if end > len(r.rows) {
		end = len(r.rows)
	}
	chunk := r.rows[r.pos:end]
	r.pos = end
	return chunk, nil
}

func (r *SliceReader) Release(chunk []event.Row) {}

func (r *SliceReader) Close() error { return nil }
