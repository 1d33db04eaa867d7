// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store persists line classifications in a kv database keyed by
// file path and line number.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"modernc.org/kv"

	"github.com/kortschak/liftgff/lift"
)

// ByFileLine is a kv compare function, ordering by file path and line number.
func ByFileLine(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}

	kx := UnmarshalLineKey(x)
	ky := UnmarshalLineKey(y)

	switch {
	case kx.File < ky.File:
		return -1
	case kx.File > ky.File:
		return 1
	}
	switch {
	case kx.Line < ky.Line:
		return -1
	case kx.Line > ky.Line:
		return 1
	}

	panic("unreachable")
}

// LineKey identifies a line of a GFF3 file by its position
// among the non-blank lines of the file.
type LineKey struct {
	File string
	Line int64
}

var order = binary.BigEndian

func MarshalLineKey(k LineKey) []byte {
	var (
		buf bytes.Buffer
		b   [8]byte
	)
	order.PutUint64(b[:], uint64(len(k.File)))
	buf.Write(b[:])
	buf.WriteString(k.File)
	order.PutUint64(b[:], uint64(k.Line))
	buf.Write(b[:])
	return buf.Bytes()
}

func UnmarshalLineKey(data []byte) LineKey {
	var k LineKey
	n64 := binary.Size(uint64(0))
	n := order.Uint64(data[:n64])
	data = data[n64:]
	k.File = string(data[:n])
	data = data[n:]
	k.Line = int64(order.Uint64(data[:n64]))
	return k
}

// LineRecord is the value stored for each line.
type LineRecord struct {
	File        string
	Line        int
	Root        int
	Disposition string
	Text        string
	Converted   string `json:",omitempty"`
}

// DB is an audit database of line classifications.
type DB struct {
	db *kv.DB
}

// Open opens the audit database at path, creating it if it does not exist.
func Open(path string) (*DB, error) {
	opts := &kv.Options{Compare: ByFileLine}
	var (
		db  *kv.DB
		err error
	)
	_, err = os.Stat(path)
	switch {
	case err == nil:
		db, err = kv.Open(path, opts)
	case os.IsNotExist(err):
		db, err = kv.Create(path, opts)
	}
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// Record stores the classification of every line in r under path,
// replacing all earlier records for path.
func (d *DB) Record(path string, r *lift.Result) (err error) {
	stale, err := d.keysFor(path)
	if err != nil {
		return err
	}
	err = d.db.BeginTransaction()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			d.db.Rollback()
		}
	}()
	for _, k := range stale {
		err = d.db.Delete(k)
		if err != nil {
			return err
		}
	}
	for n, text := range r.Lines {
		rec := LineRecord{
			File:        path,
			Line:        n,
			Root:        r.Tree.Root[n],
			Disposition: r.Disposition[n].String(),
			Text:        text,
		}
		if r.Disposition[n] == lift.Keep {
			rec.Converted = r.Converted[n].Text
		}
		v, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		err = d.db.Set(MarshalLineKey(LineKey{File: path, Line: int64(n)}), v)
		if err != nil {
			return err
		}
	}
	return d.db.Commit()
}

// keysFor returns the stored keys for path.
func (d *DB) keysFor(path string) ([][]byte, error) {
	it, _, err := d.db.Seek(MarshalLineKey(LineKey{File: path}))
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	var keys [][]byte
	for {
		k, _, err := it.Next()
		if err != nil {
			if err == io.EOF {
				return keys, nil
			}
			return nil, err
		}
		if UnmarshalLineKey(k).File != path {
			return keys, nil
		}
		keys = append(keys, k)
	}
}

// Get returns the record for the given key. It returns false if no
// record exists.
func (d *DB) Get(k LineKey) (LineRecord, bool, error) {
	v, err := d.db.Get(nil, MarshalLineKey(k))
	if err != nil || v == nil {
		return LineRecord{}, false, err
	}
	var rec LineRecord
	err = json.Unmarshal(v, &rec)
	return rec, err == nil, err
}

// Do calls fn for each stored line in key order. The value passed to fn
// is the JSON encoding of a LineRecord.
func (d *DB) Do(fn func(k LineKey, v []byte) error) error {
	it, err := d.db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		err = fn(UnmarshalLineKey(k), v)
		if err != nil {
			return err
		}
	}
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }
