// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The audit-liftgff-db command allows the audit database written by liftgff
// with the -audit flag to be queried. Output is a JSON stream on stdout, one
// object per classified GFF3 line, ordered by file path and line number.
// Each object corresponds to the following Go struct.
//  struct {
//  	File        string
//  	Line        int
//  	Root        int
//  	Disposition string
//  	Text        string
//  	Converted   string // only present for kept features
//  }
// Line and Root are zero-based positions among the non-blank lines of File.
// Disposition is one of header, sequence-region, keep, sequence-removed and
// position-removed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kortschak/liftgff/internal/store"
	"github.com/kortschak/liftgff/lift"
)

func main() {
	path := flag.String("db", "", "specify db file to audit (required)")
	file := flag.String("file", "", "specify a GFF3 path to restrict output to")
	removed := flag.Bool("removed", false, "specify to only output removed lines")
	flag.Parse()
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}
	_, err := os.Stat(*path)
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(*path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	err = db.Do(func(k store.LineKey, v []byte) error {
		if *file != "" && k.File != *file {
			return nil
		}
		if *removed && !isRemoved(v) {
			return nil
		}
		_, err := os.Stdout.Write(v)
		if err != nil {
			return err
		}
		_, err = fmt.Println()
		return err
	})
	if err != nil {
		log.Fatal(err)
	}
}

// isRemoved returns whether the JSON encoded record v is for a removed line.
func isRemoved(v []byte) bool {
	var r store.LineRecord
	err := json.Unmarshal(v, &r)
	if err != nil {
		return false
	}
	return r.Disposition == lift.SequenceRemoved.String() || r.Disposition == lift.PositionRemoved.String()
}
