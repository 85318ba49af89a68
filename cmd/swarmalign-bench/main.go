// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

/*
swarmalign-bench loads a FASTA-like file of nucleotide sequences, treats the
first record as the query and the rest as the database, and prints one
tab-separated line per target: its id, then its score, diff and
alignment length. It exists to drive the
aligner orchestrator end to end, the way bio-pileup drives the pileup
package end to end.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/swarmalign/aligner"
	"github.com/grailbio/swarmalign/database"
	"github.com/grailbio/swarmalign/nt"
	"github.com/grailbio/swarmalign/scheduler"
	"github.com/grailbio/swarmalign/threadpool"
	"github.com/klauspost/compress/zstd"
)

var (
	threads   = flag.Int("threads", 1, "Number of worker threads")
	gapOpen   = flag.Int("gap-open", 12, "Gap open penalty")
	gapExtend = flag.Int("gap-extend", 4, "Gap extend penalty")
	mismatch  = flag.Int("mismatch", 1, "Mismatch penalty")
	useSnappy = flag.Bool("snappy-store", false, "Hold database sequences snappy-compressed in memory")
)

func benchUsage() {
	fmt.Printf("Usage: %s [OPTIONS] fastapath\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// record is one parsed FASTA entry: an integer id (assigned by order of
// appearance) plus its packed bases.
type record struct {
	id  uint64
	seq []byte
	len int
}

func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdFile{zr, f}, nil
}

// zstdFile adapts a *zstd.Decoder (whose Close takes no error) and the
// underlying *os.File into a single io.ReadCloser.
type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Read(p []byte) (int, error) { return z.Decoder.Read(p) }

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// readFasta parses a minimal FASTA subset: '>' header lines are ignored
// except to delimit records, and every non-header line is concatenated and
// uppercased into the current record's sequence.
func readFasta(r io.Reader) ([]record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []record
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		s := cur.String()
		records = append(records, record{id: uint64(len(records)), seq: nt.PackString(s), len: len(s)})
		cur.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			continue
		}
		cur.WriteString(strings.ToUpper(line))
	}
	flush()
	return records, scanner.Err()
}

func longestOf(records []record) int {
	longest := 0
	for _, r := range records {
		if r.len > longest {
			longest = r.len
		}
	}
	return longest
}

func main() {
	flag.Usage = benchUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 {
		log.Fatalf("exactly one positional argument (fastapath) required")
	}
	path := flag.Arg(0)

	in, err := openInput(path)
	if err != nil {
		log.Panicf("%v", err)
	}
	defer in.Close()

	records, err := readFasta(in)
	if err != nil {
		log.Panicf("%v", err)
	}
	if len(records) < 2 {
		log.Fatalf("need at least a query and one target record, got %d", len(records))
	}

	var store aligner.Database
	targetIDs := make([]uint64, 0, len(records)-1)
	if *useSnappy {
		s := database.NewSnappyStore()
		for _, rec := range records[1:] {
			id, _ := s.Add(rec.id, rec.seq, rec.len)
			targetIDs = append(targetIDs, id)
		}
		store = s
	} else {
		s := database.NewStore()
		for _, rec := range records[1:] {
			id, _ := s.Add(rec.id, rec.seq, rec.len)
			targetIDs = append(targetIDs, id)
		}
		store = s
	}

	query := records[0]
	longest := longestOf(records)

	pool := threadpool.New(*threads)
	a, err := aligner.New(store, pool, aligner.Config{
		MismatchPenalty: *mismatch,
		GapOpen:         *gapOpen,
		GapExtend:       *gapExtend,
	}, longest)
	if err != nil {
		log.Panicf("%v", err)
	}

	res := make([]scheduler.Result, len(targetIDs))
	if err := a.SearchDo(aligner.Query{ID: query.id, Seq: query.seq, Len: query.len}, targetIDs, res); err != nil {
		log.Panicf("%v", err)
	}

	for i, id := range targetIDs {
		fmt.Printf("%d\t%d\t%d\t%d\n", id, res[i].Score, res[i].Diff, res[i].AlignLen)
	}
}
