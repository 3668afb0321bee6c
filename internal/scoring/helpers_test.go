package scoring

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/stretchr/testify/require"
)

func mustBank(t *testing.T, doc string) *questionbank.Bank {
	t.Helper()
	bank, err := questionbank.Parse([]byte(doc), t.Name())
	require.NoError(t, err)
	return bank
}

// fourByThreeBank is a statement-only bank: categories a..d, three
// unweighted, non-reversed statements each.
func fourByThreeBank(t *testing.T) *questionbank.Bank {
	t.Helper()
	var b strings.Builder
	b.WriteString("type: grid\nversion: 1\ntitle: Grid\nretake_after_days: 30\ncategories:\n")
	for _, c := range []string{"a", "b", "c", "d"} {
		fmt.Fprintf(&b, "  - id: %s\n    label: %s\n", c, strings.ToUpper(c))
	}
	b.WriteString("questions:\n")
	n := 0
	for _, c := range []string{"a", "b", "c", "d"} {
		for i := 0; i < 3; i++ {
			n++
			fmt.Fprintf(&b, "  - id: q%02d\n    kind: statement\n    order: %d\n    category: %s\n    text: statement %d\n", n, n, c, n)
		}
	}
	return mustBank(t, b.String())
}

const mixedBankYAML = `
type: mixed
version: 1
title: Mixed
retake_after_days: 30
categories:
  - id: calm
    label: Calm
  - id: tense
    label: Tense
  - id: unused
    label: Unused
questions:
  - id: s1
    kind: statement
    order: 1
    category: calm
    text: I stay calm.
  - id: s2
    kind: statement
    order: 2
    category: calm
    reverse_scored: true
    weight: 2
    text: I panic easily.
  - id: s3
    kind: statement
    order: 3
    category: tense
    text: I feel tense.
  - id: sc1
    kind: scenario
    order: 4
    text: A plan falls through.
    options:
      - id: shrug
        text: Shrug it off.
        weight: 2
        categories: [calm]
      - id: spiral
        text: Spiral.
        weight: 3
        categories: [tense]
      - id: both
        text: Shrug, then spiral.
        weight: 1
        categories: [calm, tense]
`

func uniform(bank *questionbank.Bank, value int, ms int64) []Response {
	var out []Response
	for _, q := range bank.Questions() {
		out = append(out, Response{QuestionID: q.ID, Value: value, ResponseTimeMs: ms})
	}
	return out
}

func withValues(bank *questionbank.Bank, ms int64, values ...int) []Response {
	var out []Response
	for i, q := range bank.Questions() {
		out = append(out, Response{QuestionID: q.ID, Value: values[i%len(values)], ResponseTimeMs: ms})
	}
	return out
}
