package reader

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/exchange/hftbacktest/event"
)

// CSVReader reads the 6-column schema kind,exch_ts,local_ts,side,price,qty
// from a file, chunked by line count. A .gz extension is transparently
// decompressed. The header row, if present (first field is not
// numeric), is skipped.
type CSVReader struct {
	f         *os.File
	gz        *gzip.Reader
	csv       *csv.Reader
	tickSize  float64
	chunkSize int
	headerRow bool
}

// NewCSVReader opens path (gzip-transparent by .gz extension) for
// chunked ingestion. tickSize converts the schema's float price
// column to an integer tick, as spec'd for the external boundary.
func NewCSVReader(path string, tickSize float64, chunkSize int) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var src io.Reader = f
	var gz *gzip.Reader
	if strings.HasSuffix(path, ".gz") {
		gz, err = gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		src = gz
	}

	if chunkSize <= 0 {
		chunkSize = 4096
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	return &CSVReader{f: f, gz: gz, csv: cr, tickSize: tickSize, chunkSize: chunkSize, headerRow: true}, nil
}

func (r *CSVReader) Next() ([]event.Row, error) {
	out := make([]event.Row, 0, r.chunkSize)
	for len(out) < r.chunkSize {
		rec, err := r.csv.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if r.headerRow {
			r.headerRow = false
			if _, convErr := strconv.ParseFloat(rec[0], 64); convErr != nil {
				continue
			}
		}
		row, err := r.parseRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *CSVReader) parseRecord(rec []string) (event.Row, error) {
	kindF, err := strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return event.Row{}, err
	}
	exchTs, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return event.Row{}, err
	}
	localTs, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil {
		return event.Row{}, err
	}
	sideF, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return event.Row{}, err
	}
	price, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return event.Row{}, err
	}
	qty, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return event.Row{}, err
	}
	return event.Row{
		Kind:      event.Kind(int8(kindF)),
		ExchTs:    exchTs,
		LocalTs:   localTs,
		Side:      event.Side(int8(sideF)),
		PriceTick: event.PriceToTick(price, r.tickSize),
		Qty:       qty,
	}, nil
}

func (r *CSVReader) Release(chunk []event.Row) {}

func (r *CSVReader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.f.Close()
}
