package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/torosent/sortbench/internal/supplier"
)

var friendlyAliases = map[string]string{
	"*csv.ParseError":                "CSV parse error",
	"*fs.PathError":                  "File error",
	"*os.PathError":                  "File error",
	"*context.deadlineExceededError": "Context deadline exceeded",
	"context.deadlineExceededError":  "Context deadline exceeded",
	"*fmt.wrapErrors":                "Error",
	"*errors.joinError":              "Error",
}

// sentinelKinds maps well-known errors to labels. Checked in order with
// errors.Is, so wrapped errors keep their label.
var sentinelKinds = []struct {
	err   error
	label string
}{
	{supplier.ErrCallAfterFailure, "Call after failure"},
	{supplier.ErrInjectedFault, "Injected fault"},
	{supplier.ErrCallAfterEOS, "Call after end of stream"},
	{supplier.ErrNilBatch, "Nil batch"},
	{supplier.ErrClosed, "Supplier closed"},
	{context.Canceled, "Context canceled"},
	{context.DeadlineExceeded, "Context deadline exceeded"},
}

// ErrorKind returns the label an error is counted under.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range sentinelKinds {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	// Skip fmt wrappers so the label names the underlying error type.
	for {
		name := fmt.Sprintf("%T", err)
		if name != "*fmt.wrapError" {
			return FriendlyErrorName(name)
		}
		next := errors.Unwrap(err)
		if next == nil {
			return FriendlyErrorName(name)
		}
		err = next
	}
}

// ErrorCount is one row of an error breakdown.
type ErrorCount struct {
	Kind  string
	Count int
}

// SortedErrors flattens an error map into rows sorted by descending count,
// then by kind for stability.
func SortedErrors(errs map[string]int) []ErrorCount {
	if len(errs) == 0 {
		return nil
	}
	rows := make([]ErrorCount, 0, len(errs))
	for kind, count := range errs {
		rows = append(rows, ErrorCount{Kind: kind, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Kind < rows[j].Kind
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// FriendlyErrorName returns a human-friendly label for a Go error type.
func FriendlyErrorName(typeName string) string {
	cleaned := strings.TrimSpace(typeName)
	if cleaned == "" {
		return "Unknown error"
	}

	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}

	cleaned = strings.TrimPrefix(cleaned, "*")
	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}
	if idx := strings.LastIndex(cleaned, "/"); idx != -1 {
		cleaned = cleaned[idx+1:]
	}

	pkg := ""
	name := cleaned
	if idx := strings.Index(name, "."); idx != -1 {
		pkg = name[:idx]
		name = name[idx+1:]
	}

	pretty := humanizeTypeName(name)
	if pretty == "" {
		pretty = name
	}

	lowerPkg := strings.ToLower(pkg)
	lowerPretty := strings.ToLower(pretty)

	switch {
	case lowerPkg == "context" && strings.Contains(lowerPretty, "deadline"):
		return "Context deadline exceeded"
	case lowerPkg == "csv" && strings.Contains(lowerPretty, "error"):
		return "CSV parse error"
	case lowerPkg == "errors" && lowerPretty == "error string":
		return "Error"
	}

	if pkg != "" && pkg != "main" {
		return fmt.Sprintf("%s (%s)", pretty, pkg)
	}
	return pretty
}

func humanizeTypeName(name string) string {
	if name == "" {
		return ""
	}

	var words []string
	var current []rune
	runes := []rune(name)

	appendWord := func() {
		if len(current) == 0 {
			return
		}
		word := string(current)
		if isAllUpper(word) {
			words = append(words, word)
		} else {
			words = append(words, capitalize(word))
		}
		current = current[:0]
	}

	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsUpper(r) && (unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower)) {
				appendWord()
			} else if unicode.IsDigit(r) && !unicode.IsDigit(prev) {
				appendWord()
			}
		}
		current = append(current, r)
	}
	appendWord()

	return strings.Join(words, " ")
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	runes := []rune(lower)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
