package sorter_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/torosent/sortbench/internal/batch"
	"github.com/torosent/sortbench/internal/producer"
	"github.com/torosent/sortbench/internal/sorter"
	"github.com/torosent/sortbench/internal/supplier"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"ints", int64(1), int64(2), -1},
		{"equal ints", int64(5), int64(5), 0},
		{"int vs float", int64(2), 1.5, 1},
		{"float vs int equal", 3.0, int64(3), 0},
		{"strings", "b", "a", 1},
		{"nil first", nil, int64(0), -1},
		{"both nil", nil, nil, 0},
		{"bool before number", true, int64(-10), -1},
		{"false before true", false, true, -1},
		{"number before string", 99.9, "0", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, sorter.Compare(tt.a, tt.b))
		})
	}
}

func TestCompareIntFloatIsExact(t *testing.T) {
	const big = int64(1) << 53
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"int above float", big + 1, float64(big), 1},
		{"int equals float", big, float64(big), 0},
		{"float below int", float64(big), big + 1, -1},
		{"fraction above", 2.5, int64(2), 1},
		{"negative fraction", -2.5, int64(-2), -1},
		{"max int below 2^63", int64(math.MaxInt64), float64(1 << 63), -1},
		{"min int equals -2^63", int64(math.MinInt64), -float64(1 << 63), 0},
		{"positive infinity", int64(math.MaxInt64), math.Inf(1), -1},
		{"negative infinity", int64(math.MinInt64), math.Inf(-1), 1},
		{"nan below int", math.NaN(), int64(0), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, sorter.Compare(tt.a, tt.b))
		})
	}

	// Transitivity across the 2^53 boundary.
	vals := []any{big, float64(big), big + 1}
	require.Equal(t, -1, sorter.Compare(vals[0], vals[2]))
	require.Equal(t, 0, sorter.Compare(vals[0], vals[1]))
	require.Equal(t, -1, sorter.Compare(vals[1], vals[2]))
}

func TestParseKeys(t *testing.T) {
	keys, err := sorter.ParseKeys([]string{"0", "2:desc", " 1 : ASC "})
	require.NoError(t, err)
	require.Equal(t, []sorter.Key{{Column: 0}, {Column: 2, Desc: true}, {Column: 1}}, keys)
	require.Equal(t, "2:desc", keys[1].String())

	for _, bad := range []string{"", "x", "-1", "1:sideways"} {
		_, err := sorter.ParseKeys([]string{bad})
		require.Error(t, err, "key %q", bad)
	}
}

func TestSortAlgorithmsAgree(t *testing.T) {
	for _, algo := range []sorter.Algorithm{sorter.AlgorithmMaterialize, sorter.AlgorithmMergeRuns} {
		t.Run(string(algo), func(t *testing.T) {
			g, err := producer.NewGenerator(producer.GeneratorOptions{
				Rows:         1000,
				Columns:      3,
				Seed:         7,
				Distribution: producer.DistributionDuplicates,
				Cardinality:  20,
			})
			require.NoError(t, err)
			defer g.Close()

			keys := []sorter.Key{{Column: 0, Desc: true}, {Column: 1}}
			res, err := sorter.Sort(context.Background(), g, sorter.Options{
				Keys:          keys,
				Algorithm:     algo,
				BatchCapacity: 64,
			})
			require.NoError(t, err)
			require.Len(t, res.Rows, 1000)
			require.EqualValues(t, 1000, res.Summary.Rows)
			require.True(t, res.Summary.EOS)
			require.True(t, sorter.IsSorted(res.Rows, keys))
			if algo == sorter.AlgorithmMergeRuns {
				require.Equal(t, 16, res.Runs)
			} else {
				require.Equal(t, 1, res.Runs)
			}
		})
	}
}

func TestMergeRunsIsStable(t *testing.T) {
	rows := []batch.Row{
		{int64(2), "a"}, {int64(1), "b"},
		{int64(2), "c"}, {int64(1), "d"},
		{int64(2), "e"},
	}

	res, err := sorter.Sort(context.Background(), producer.NewSlice(rows), sorter.Options{
		Algorithm:     sorter.AlgorithmMergeRuns,
		BatchCapacity: 2,
	})
	require.NoError(t, err)
	require.Equal(t, []batch.Row{
		{int64(1), "b"}, {int64(1), "d"},
		{int64(2), "a"}, {int64(2), "c"}, {int64(2), "e"},
	}, res.Rows)
	require.Equal(t, 3, res.Runs)
}

func TestSortEmptyStream(t *testing.T) {
	res, err := sorter.Sort(context.Background(), producer.NewEmpty(), sorter.Options{})
	require.NoError(t, err)
	require.Empty(t, res.Rows)
	require.Equal(t, 1, res.Summary.Calls)
	require.Zero(t, res.Runs)
}

func TestSortSurfacesProducerFailure(t *testing.T) {
	cause := errors.New("scan aborted")
	g, err := producer.NewGenerator(producer.GeneratorOptions{Rows: 100})
	require.NoError(t, err)
	s := supplier.WithFault(g, supplier.Fault{OnCall: 2, Err: cause})

	res, err := sorter.Sort(context.Background(), s, sorter.Options{BatchCapacity: 10})
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, supplier.ErrInjectedFault)
	require.Equal(t, 2, res.Summary.Calls)
	require.EqualValues(t, 10, res.Summary.Rows)
}

func TestSortRejectsKeyOutsideRow(t *testing.T) {
	rows := []batch.Row{{int64(1)}, {int64(2)}}
	_, err := sorter.Sort(context.Background(), producer.NewSlice(rows), sorter.Options{
		Keys: []sorter.Key{{Column: 3}},
	})
	require.ErrorContains(t, err, "row 0 has 1 columns, sort key needs column 3")
}

func TestSortRejectsUnknownAlgorithm(t *testing.T) {
	_, err := sorter.Sort(context.Background(), producer.NewEmpty(), sorter.Options{Algorithm: "bogo"})
	require.Error(t, err)
}
