// Package sorter implements the experimental sort routines that consume rows
// through the batch supplier contract.
package sorter

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/torosent/sortbench/internal/batch"
	"github.com/torosent/sortbench/internal/supplier"
)

// Algorithm names a sort strategy.
type Algorithm string

const (
	// AlgorithmMaterialize collects every row and sorts once.
	AlgorithmMaterialize Algorithm = "materialize"
	// AlgorithmMergeRuns sorts each delivered batch into a run and merges the runs.
	AlgorithmMergeRuns Algorithm = "merge-runs"
)

const DefaultBatchCapacity = 1024

// Options configure a sort.
type Options struct {
	Keys          []Key
	Algorithm     Algorithm
	BatchCapacity int
}

func (o *Options) normalize() error {
	if len(o.Keys) == 0 {
		o.Keys = []Key{{Column: 0}}
	}
	if o.BatchCapacity <= 0 {
		o.BatchCapacity = DefaultBatchCapacity
	}
	o.Algorithm = Algorithm(strings.ToLower(strings.TrimSpace(string(o.Algorithm))))
	switch o.Algorithm {
	case "":
		o.Algorithm = AlgorithmMaterialize
	case AlgorithmMaterialize, AlgorithmMergeRuns:
	default:
		return fmt.Errorf("unsupported sort algorithm %q", o.Algorithm)
	}
	return nil
}

// Result holds sorted rows and how they were obtained.
type Result struct {
	Rows     []batch.Row
	Summary  supplier.Summary
	Runs     int
	SortTime time.Duration
}

// Sort drains s and returns its rows ordered by opt.Keys. Producer failures
// are returned unchanged. Sort does not close s.
func Sort(ctx context.Context, s supplier.Supplier, opt Options) (*Result, error) {
	if err := opt.normalize(); err != nil {
		return nil, err
	}

	res := &Result{}
	var (
		rows []batch.Row
		runs [][]batch.Row
		seen int64
	)

	sum, err := supplier.Drain(ctx, supplier.Check(s), opt.BatchCapacity, func(b *batch.Batch) error {
		for _, row := range b.Rows() {
			if err := checkWidth(row, opt.Keys, seen); err != nil {
				return err
			}
			seen++
		}
		switch opt.Algorithm {
		case AlgorithmMergeRuns:
			run := append([]batch.Row(nil), b.Rows()...)
			start := time.Now()
			sortRows(run, opt.Keys)
			res.SortTime += time.Since(start)
			runs = append(runs, run)
			res.Runs++
		default:
			rows = append(rows, b.Rows()...)
		}
		return nil
	})
	res.Summary = sum
	if err != nil {
		return res, err
	}

	start := time.Now()
	switch opt.Algorithm {
	case AlgorithmMergeRuns:
		res.Rows = mergeRuns(runs, opt.Keys)
	default:
		sortRows(rows, opt.Keys)
		res.Rows = rows
		if len(rows) > 0 {
			res.Runs = 1
		}
	}
	res.SortTime += time.Since(start)
	return res, nil
}

func checkWidth(row batch.Row, keys []Key, index int64) error {
	for _, k := range keys {
		if k.Column >= len(row) {
			return fmt.Errorf("row %d has %d columns, sort key needs column %d", index, len(row), k.Column)
		}
	}
	return nil
}

func sortRows(rows []batch.Row, keys []Key) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareRows(rows[i], rows[j], keys) < 0
	})
}

// runCursor points at the next unmerged row of a run.
type runCursor struct {
	run int
	pos int
}

type mergeHeap struct {
	runs    [][]batch.Row
	keys    []Key
	cursors []runCursor
}

func (h *mergeHeap) Len() int { return len(h.cursors) }

func (h *mergeHeap) Less(i, j int) bool {
	a, b := h.cursors[i], h.cursors[j]
	if c := compareRows(h.runs[a.run][a.pos], h.runs[b.run][b.pos], h.keys); c != 0 {
		return c < 0
	}
	// Earlier runs first keeps the merge stable.
	return a.run < b.run
}

func (h *mergeHeap) Swap(i, j int) { h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i] }

func (h *mergeHeap) Push(x any) { h.cursors = append(h.cursors, x.(runCursor)) }

func (h *mergeHeap) Pop() any {
	old := h.cursors
	n := len(old)
	c := old[n-1]
	h.cursors = old[:n-1]
	return c
}

func mergeRuns(runs [][]batch.Row, keys []Key) []batch.Row {
	total := 0
	h := &mergeHeap{runs: runs, keys: keys}
	for i, run := range runs {
		total += len(run)
		if len(run) > 0 {
			h.cursors = append(h.cursors, runCursor{run: i})
		}
	}
	heap.Init(h)

	out := make([]batch.Row, 0, total)
	for h.Len() > 0 {
		c := h.cursors[0]
		out = append(out, runs[c.run][c.pos])
		if c.pos+1 < len(runs[c.run]) {
			h.cursors[0].pos++
			heap.Fix(h, 0)
		} else {
			heap.Pop(h)
		}
	}
	return out
}
