// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// liftgff updates the sequence names and coordinates of GFF3 files using
// the alignment table written by fasta_diff for an old and a new assembly.
//
// Updated features are written to a new file with "_updated" (by default)
// inserted before the extension of each GFF3 file name. Features that cannot
// be updated, because their sequence is absent from the new assembly or
// because they span a region that was removed or replaced with Ns, are
// written with their whole parent/child group to a file with "_removed"
// (by default) inserted before the extension.
//
// usage: fasta_diff.py old.fa new.fa | liftgff a.gff b.gff c.gff
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/kortschak/liftgff/align"
	"github.com/kortschak/liftgff/internal/store"
	"github.com/kortschak/liftgff/lift"
)

const version = "1.1"

func main() {
	alignments := flag.String("a", "-", "specify the alignment file generated by fasta_diff ('-' is stdin)")
	updated := flag.String("u", "_updated", "specify the file name postfix for updated features")
	removed := flag.String("r", "_removed", "specify the file name postfix for removed features")
	oldSeq := flag.String("old", "", "specify the old assembly to run fasta_diff on when no alignment file is given")
	newSeq := flag.String("new", "", "specify the new assembly to run fasta_diff on when no alignment file is given")
	diffCmd := flag.String("diff-cmd", "", "specify the fasta_diff executable (default fasta_diff.py)")
	faiPath := flag.String("fai", "", "specify a FASTA or .fai index of the new assembly to check sequence regions against")
	dotPrefix := flag.String("dot", "", "specify prefix for DOT files describing feature hierarchies")
	auditPath := flag.String("audit", "", "specify a db file to record line classifications in")
	verbose := flag.Bool("verbose", false, "specify verbose logging")
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.BoolVar(&showVersion, "v", false, "print version and exit (shorthand)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `usage: %s [options] GFF_FILE...

Example:
	fasta_diff.py old.fa new.fa | liftgff a.gff b.gff c.gff

`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("liftgff %s\n", version)
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var logger io.WriteCloser
	if *verbose {
		logger = logCapture()
		defer logger.Close()
	}

	idx, err := readIndex(*alignments, align.FastaDiff{Cmd: *diffCmd, Old: *oldSeq, New: *newSeq}, logger)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("alignments: %d", idx.Len())

	if *faiPath != "" {
		lengths, err := align.ReadLengths(*faiPath)
		if err != nil {
			log.Fatalf("failed to read new assembly index: %v", err)
		}
		for _, err := range align.CheckRegions(idx.Regions(), lengths) {
			log.Printf("warning: %v", err)
		}
	}

	u := &lift.Updater{
		Index:          idx,
		UpdatedPostfix: *updated,
		RemovedPostfix: *removed,
		DOTPrefix:      *dotPrefix,
		Log:            log.New(os.Stderr, "", log.LstdFlags),
	}
	if *auditPath != "" {
		db, err := store.Open(*auditPath)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		u.Recorder = db
	}

	for _, path := range flag.Args() {
		_, err := u.Update(path)
		if err != nil {
			log.Fatal(err)
		}
	}
}

// readIndex returns the alignment index read from path. If path is "-" and
// both sequence files of diff are set, the index is read from the output of
// diff, otherwise it is read from stdin. If logger is not nil, stderr from
// diff is written to it.
func readIndex(path string, diff align.FastaDiff, logger io.Writer) (*align.Index, error) {
	if path != "-" {
		log.Printf("reading alignment data from %s", path)
		return align.ReadFile(path)
	}
	if diff.Old == "" || diff.New == "" {
		log.Println("reading alignment data from stdin")
		return align.Read(os.Stdin)
	}

	cmd, err := diff.BuildCommand()
	if err != nil {
		return nil, err
	}
	log.Print(cmd)
	cmd.Stderr = logger
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	err = cmd.Start()
	if err != nil {
		return nil, err
	}
	idx, err := align.Read(stdout)
	if err != nil {
		// Allow the process to exit.
		io.Copy(ioutil.Discard, stdout)
		cmd.Wait()
		return nil, err
	}
	err = cmd.Wait()
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// logCapture returns an io.WriteCloser that pipes writes to the default log logger.
func logCapture() io.WriteCloser {
	r, w := io.Pipe()
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if len(bytes.TrimSpace(sc.Bytes())) == 0 {
				continue
			}
			log.Printf("\t%s", sc.Bytes())
		}
		err := sc.Err()
		if err != nil && err != io.EOF {
			_ = w.CloseWithError(err)
		}
	}()
	return w
}
