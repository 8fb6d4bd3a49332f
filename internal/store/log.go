package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// walFile is the on-disk JSON-lines log. One transaction per line, appended
// and fsynced before the in-memory indexes see the batch. A crash mid-append
// leaves at most one partial trailing line, which replay discards.
type walFile struct {
	f *os.File
}

// openWAL opens (creating if needed) the log at path, replays every complete
// record, and trims any partial trailing line so future appends start on a
// clean boundary.
func openWAL(path string) (*walFile, []model.Transaction, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	txs, goodOffset, err := replay(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	if err := f.Truncate(goodOffset); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("trim partial record: %w", err)
	}
	if _, err := f.Seek(goodOffset, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("seek to log end: %w", err)
	}

	return &walFile{f: f}, txs, nil
}

// replay reads complete lines from the start of f. It returns the decoded
// transactions and the offset just past the last parseable record.
func replay(f *os.File) ([]model.Transaction, int64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log start: %w", err)
	}

	var (
		txs    []model.Transaction
		offset int64
		r      = bufio.NewReaderSize(f, 1<<20)
	)

	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// No trailing newline: partial write, drop it.
				return txs, offset, nil
			}
			return nil, 0, fmt.Errorf("read log: %w", err)
		}

		var tx model.Transaction
		if uerr := json.Unmarshal(bytes.TrimSpace(line), &tx); uerr != nil {
			// A corrupt line can only be the interrupted tail; everything
			// before it stays committed.
			return txs, offset, nil
		}

		txs = append(txs, tx)
		offset += int64(len(line))
	}
}

// Append durably writes one batch. The whole batch is encoded first so a
// marshal failure leaves the file untouched, then written and fsynced.
func (w *walFile) Append(txs []model.Transaction) error {
	var buf bytes.Buffer
	for _, tx := range txs {
		line, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("encode transaction: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if _, err := w.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}
	return nil
}

// Close syncs and closes the log file.
func (w *walFile) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("sync log: %w", err)
	}
	return w.f.Close()
}
