package sorter

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/torosent/sortbench/internal/batch"
)

// Key selects a column to order by.
type Key struct {
	Column int
	Desc   bool
}

func (k Key) String() string {
	if k.Desc {
		return fmt.Sprintf("%d:desc", k.Column)
	}
	return strconv.Itoa(k.Column)
}

// ParseKeys parses keys of the form "0", "2:desc" or "1:asc".
func ParseKeys(specs []string) ([]Key, error) {
	keys := make([]Key, 0, len(specs))
	for i, spec := range specs {
		spec = strings.TrimSpace(spec)
		col, dir, _ := strings.Cut(spec, ":")
		idx, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("sort key %d: invalid column %q", i, col)
		}
		key := Key{Column: idx}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			key.Desc = true
		default:
			return nil, fmt.Errorf("sort key %d: invalid direction %q", i, dir)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankOther
)

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case int64, float64:
		return rankNumber
	case string:
		return rankString
	default:
		return rankOther
	}
}

// Compare orders two values: nil < bool < numbers < strings. int64 and
// float64 compare numerically.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankNil:
		return 0
	case rankBool:
		return cmp.Compare(boolInt(a.(bool)), boolInt(b.(bool)))
	case rankNumber:
		ia, aInt := a.(int64)
		ib, bInt := b.(int64)
		switch {
		case aInt && bInt:
			return cmp.Compare(ia, ib)
		case aInt:
			return compareIntFloat(ia, b.(float64))
		case bInt:
			return -compareIntFloat(ib, a.(float64))
		default:
			return cmp.Compare(a.(float64), b.(float64))
		}
	case rankString:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// compareIntFloat orders i against f exactly. Converting i to float64
// rounds above 2^53 and breaks transitivity. NaN sorts below every int,
// as cmp.Compare places it below every float.
func compareIntFloat(i int64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 1
	case f >= twoTo63:
		return -1
	case f < -twoTo63:
		return 1
	}
	whole := math.Trunc(f)
	if c := cmp.Compare(i, int64(whole)); c != 0 {
		return c
	}
	switch frac := f - whole; {
	case frac > 0:
		return -1
	case frac < 0:
		return 1
	}
	return 0
}

const twoTo63 = float64(1 << 63)

func compareRows(a, b batch.Row, keys []Key) int {
	for _, k := range keys {
		c := Compare(a[k.Column], b[k.Column])
		if c == 0 {
			continue
		}
		if k.Desc {
			return -c
		}
		return c
	}
	return 0
}

// IsSorted reports whether rows are ordered by keys.
func IsSorted(rows []batch.Row, keys []Key) bool {
	for i := 1; i < len(rows); i++ {
		if compareRows(rows[i-1], rows[i], keys) > 0 {
			return false
		}
	}
	return true
}
