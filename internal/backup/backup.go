// Package backup reads Debrid Media Manager library exports.
//
// A DMM backup is a JSON array of records, each carrying an explicit info
// hash and optionally a filename and full magnet URI. [Scanner] streams the
// array in a single pass so arbitrarily large backups never need to be held
// as raw JSON in memory.
//
// # Record Tolerance
//
// Defects are handled at two levels:
//
//  1. Structural: a top-level value that is not an array, or a JSON syntax
//     error anywhere in the stream, makes the whole backup unreadable
//     ([shared.ErrBackupUnreadable]).
//  2. Per-record: a record missing a usable hash, or one that is not an
//     object at all, yields a [Record] with Err set. These surface in the
//     final report as skipped entries and never abort the scan.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dashed/tbsync/internal/magnet"
	"github.com/dashed/tbsync/internal/shared"
)

// Record is one backup entry in file order.
//
// Entry is valid when Err is nil. When Err is set the entry still carries
// whatever name was recoverable so reports can identify the record.
type Record struct {
	Index int
	Entry magnet.Entry
	Err   error
}

// rawRecord mirrors the DMM backup fields the importer consumes.
type rawRecord struct {
	Hash     string `json:"hash"`
	Filename string `json:"filename"`
	Magnet   string `json:"magnet"`
}

// Scanner streams records from a backup file in a single forward pass.
//
// Usage follows [bufio.Scanner]: call Scan until it returns false, read each
// item with Record, then check Err for a structural failure.
type Scanner struct {
	dec  *json.Decoder
	rec  Record
	next int
	err  error
	done bool
}

// NewScanner validates the backup's top-level structure and returns a scanner over its records.
//
// Returns [shared.ErrBackupUnreadable] when the content is not a JSON array.
func NewScanner(r io.Reader) (*Scanner, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrBackupUnreadable, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: top-level value is %v, want an array", shared.ErrBackupUnreadable, tok)
	}

	return &Scanner{dec: dec}, nil
}

// Scan advances to the next record. It returns false at the end of the
// backup or on a structural error; the two are distinguished by Err.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.done {
		return false
	}

	if !s.dec.More() {
		if _, err := s.dec.Token(); err != nil {
			s.err = fmt.Errorf("%w: %v", shared.ErrBackupUnreadable, err)
		}
		s.done = true
		return false
	}

	var raw rawRecord
	if err := s.dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Non-object element: a record-level defect, not a broken file.
			s.rec = Record{
				Index: s.next,
				Err:   fmt.Errorf("%w: record %d is not an object", shared.ErrInvalidEntry, s.next),
			}
			s.next++
			return true
		}
		s.err = fmt.Errorf("%w: record %d: %v", shared.ErrBackupUnreadable, s.next, err)
		return false
	}

	s.rec = buildRecord(s.next, raw)
	s.next++
	return true
}

// Record returns the record read by the last successful call to Scan.
func (s *Scanner) Record() Record { return s.rec }

// Err returns the structural error that stopped the scan, if any.
func (s *Scanner) Err() error { return s.err }

// buildRecord resolves a raw backup record into an Entry, preferring the
// explicit hash field over one embedded in a magnet URI.
func buildRecord(index int, raw rawRecord) Record {
	rec := Record{Index: index}
	name := raw.Filename

	switch {
	case raw.Hash != "":
		hash, err := magnet.NormalizeHash(raw.Hash)
		if err != nil {
			rec.Entry = magnet.Entry{DisplayName: name}
			rec.Err = fmt.Errorf("record %d: %w", index, err)
			return rec
		}
		rec.Entry = magnet.Entry{Hash: hash, DisplayName: name, RawURI: raw.Magnet}

	case raw.Magnet != "":
		hash, dn, err := magnet.ParseURI(raw.Magnet)
		if err != nil {
			rec.Entry = magnet.Entry{DisplayName: name}
			rec.Err = fmt.Errorf("record %d: %w", index, err)
			return rec
		}
		if name == "" {
			name = dn
		}
		rec.Entry = magnet.Entry{Hash: hash, DisplayName: name, RawURI: raw.Magnet}

	default:
		rec.Entry = magnet.Entry{DisplayName: name}
		rec.Err = fmt.Errorf("%w: record %d has neither hash nor magnet", shared.ErrInvalidEntry, index)
	}

	return rec
}

// ReadAll drains a backup into memory, preserving order.
//
// Returns [shared.ErrBackupUnreadable] on structural failure; per-record
// defects are returned inside the slice.
func ReadAll(r io.Reader) ([]Record, error) {
	s, err := NewScanner(r)
	if err != nil {
		return nil, err
	}

	var records []Record
	for s.Scan() {
		records = append(records, s.Record())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
