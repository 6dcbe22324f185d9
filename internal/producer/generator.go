package producer

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/torosent/sortbench/internal/batch"
	"github.com/torosent/sortbench/internal/supplier"
)

// Distribution controls the order of generated keys.
type Distribution string

const (
	DistributionUniform    Distribution = "uniform"
	DistributionSorted     Distribution = "sorted"
	DistributionReversed   Distribution = "reversed"
	DistributionDuplicates Distribution = "duplicates"
)

const payloadAlphabet = "abcdefghijklmnopqrstuvwxyz"

// GeneratorOptions configure a synthetic row generator.
type GeneratorOptions struct {
	Rows         int64        // total rows to emit
	Columns      int          // columns per row, column 0 is the int64 key
	Seed         int64        // rng seed, equal seeds give equal streams
	Distribution Distribution // key order
	Cardinality  int          // distinct keys for DistributionDuplicates
	PayloadWidth int          // length of string payload columns
}

// Generator emits deterministic synthetic rows.
type Generator struct {
	opt     GeneratorOptions
	rnd     *rand.Rand
	emitted int64
	done    bool
}

// NewGenerator validates opt and returns a generator positioned at the first row.
func NewGenerator(opt GeneratorOptions) (*Generator, error) {
	if opt.Rows < 0 {
		return nil, fmt.Errorf("generator rows must be >= 0, got %d", opt.Rows)
	}
	if opt.Columns == 0 {
		opt.Columns = 1
	}
	if opt.Columns < 0 {
		return nil, fmt.Errorf("generator columns must be >= 1, got %d", opt.Columns)
	}
	if opt.Distribution == "" {
		opt.Distribution = DistributionUniform
	}
	switch opt.Distribution {
	case DistributionUniform, DistributionSorted, DistributionReversed:
	case DistributionDuplicates:
		if opt.Cardinality <= 0 {
			opt.Cardinality = 16
		}
	default:
		return nil, fmt.Errorf("unsupported distribution %q", opt.Distribution)
	}
	if opt.PayloadWidth <= 0 {
		opt.PayloadWidth = 8
	}
	return &Generator{
		opt: opt,
		rnd: rand.New(rand.NewSource(opt.Seed)),
	}, nil
}

// Next fills b with the next rows. The call that emits the last row reports eos.
func (g *Generator) Next(ctx context.Context, b *batch.Batch) (bool, error) {
	if g.done {
		return true, supplier.ErrCallAfterEOS
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	b.Reset()
	for !b.Full() && g.emitted < g.opt.Rows {
		b.Append(g.row(g.emitted))
		g.emitted++
	}
	g.done = g.emitted >= g.opt.Rows
	return g.done, nil
}

func (g *Generator) row(i int64) batch.Row {
	row := make(batch.Row, g.opt.Columns)
	row[0] = g.key(i)
	for c := 1; c < g.opt.Columns; c++ {
		if c%2 == 1 {
			row[c] = g.payload()
		} else {
			row[c] = g.rnd.Int63()
		}
	}
	return row
}

func (g *Generator) key(i int64) int64 {
	switch g.opt.Distribution {
	case DistributionSorted:
		return i
	case DistributionReversed:
		return g.opt.Rows - 1 - i
	case DistributionDuplicates:
		return int64(g.rnd.Intn(g.opt.Cardinality))
	default:
		return g.rnd.Int63()
	}
}

func (g *Generator) payload() string {
	buf := make([]byte, g.opt.PayloadWidth)
	for i := range buf {
		buf[i] = payloadAlphabet[g.rnd.Intn(len(payloadAlphabet))]
	}
	return string(buf)
}

// Close is a no-op; the generator holds no external resources.
func (g *Generator) Close() error {
	return nil
}
