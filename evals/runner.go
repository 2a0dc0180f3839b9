// Package evals measures how reliably a model drives the EDGAR tools:
// whether a question about filings reaches edgar_get_filings rather than
// the document fetcher, and whether the extracted arguments carry
// well-formed CIKs, form types, and fiscal periods.
package evals

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
)

// ToolSelectionTest is one natural-language input with the tool and
// arguments a correct selector should produce for it.
type ToolSelectionTest struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Input        string         `json:"input"`
	ExpectedTool string         `json:"expected_tool"`
	ExpectedArgs map[string]any `json:"expected_args"`
	NotTools     []string       `json:"not_tools"`
}

// ToolSelectionSuite is a versioned collection of tool selection tests.
type ToolSelectionSuite struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Tests       []ToolSelectionTest `json:"tests"`
}

// ConfusionPairTest is one input that sits near the boundary between two
// easily confused tools.
type ConfusionPairTest struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Reason   string `json:"reason"`
}

// ConfusionPair names two tools that models mix up, a disambiguation rule,
// and the boundary inputs that probe it.
type ConfusionPair struct {
	ID             string              `json:"id"`
	Tools          []string            `json:"tools"`
	Disambiguation string              `json:"disambiguation"`
	Tests          []ConfusionPairTest `json:"tests"`
}

// ConfusionPairSuite is a versioned collection of confusion pairs.
type ConfusionPairSuite struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Pairs       []ConfusionPair `json:"pairs"`
}

// ArgumentTest checks that a selector extracts the right arguments for a
// tool, not just the right tool.
type ArgumentTest struct {
	ID            string         `json:"id"`
	Tool          string         `json:"tool"`
	Input         string         `json:"input"`
	RequiredArgs  []string       `json:"required_args"`
	ExpectedArgs  map[string]any `json:"expected_args"`
	ForbiddenArgs []string       `json:"forbidden_args"`
	ArgNotes      string         `json:"arg_notes,omitempty"`
}

// ValidationRules documents the argument conventions the suite expects.
type ValidationRules struct {
	CIKFormat       string `json:"cik_format"`
	ConceptFormat   string `json:"concept_format"`
	PeriodFormat    string `json:"period_format"`
	AccessionFormat string `json:"accession_format"`
	NumberHandling  string `json:"number_handling"`
}

// ArgumentSuite is a versioned collection of argument correctness tests.
type ArgumentSuite struct {
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	Description     string          `json:"description"`
	Tests           []ArgumentTest  `json:"tests"`
	ValidationRules ValidationRules `json:"validation_rules"`
}

// ToolSelectionResult is the outcome of one tool selection test.
type ToolSelectionResult struct {
	TestID       string
	Input        string
	ExpectedTool string
	ActualTool   string
	Passed       bool
	Errors       []string
}

// ConfusionPairResult is the outcome of one confusion pair test.
type ConfusionPairResult struct {
	PairID       string
	TestInput    string
	ExpectedTool string
	ActualTool   string
	Reason       string
	Passed       bool
}

// ArgumentResult is the outcome of one argument correctness test.
type ArgumentResult struct {
	TestID       string
	Tool         string
	Input        string
	Passed       bool
	MissingArgs  []string
	WrongArgs    map[string]string // arg -> "expected X, got Y"
	ForbiddenHit []string
}

// EvalMetrics aggregates pass/fail counts for one evaluation run.
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64
	ByCategory    map[string]*CategoryMetrics
	ByTool        map[string]*ToolMetrics
	FailedDetails []string
}

// CategoryMetrics counts outcomes within one category.
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

// ToolMetrics counts how often a tool was expected, chosen, and confused.
type ToolMetrics struct {
	ExpectedCount  int
	SelectedCount  int
	CorrectCount   int
	FalsePositives int
	FalseNegatives int
}

func newMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByCategory: make(map[string]*CategoryMetrics),
		ByTool:     make(map[string]*ToolMetrics),
	}
}

func (m *EvalMetrics) category(name string) *CategoryMetrics {
	c := m.ByCategory[name]
	if c == nil {
		c = &CategoryMetrics{}
		m.ByCategory[name] = c
	}
	return c
}

func (m *EvalMetrics) tool(name string) *ToolMetrics {
	t := m.ByTool[name]
	if t == nil {
		t = &ToolMetrics{}
		m.ByTool[name] = t
	}
	return t
}

func (m *EvalMetrics) finalize() {
	if m.TotalTests > 0 {
		m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
	}
}

// loadSuite reads and decodes one JSON suite file.
func loadSuite[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	var suite T
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return &suite, nil
}

// LoadToolSelectionSuite loads tool selection tests from a JSON file.
func LoadToolSelectionSuite(path string) (*ToolSelectionSuite, error) {
	return loadSuite[ToolSelectionSuite](path)
}

// LoadConfusionPairSuite loads confusion pair tests from a JSON file.
func LoadConfusionPairSuite(path string) (*ConfusionPairSuite, error) {
	return loadSuite[ConfusionPairSuite](path)
}

// LoadArgumentSuite loads argument correctness tests from a JSON file.
func LoadArgumentSuite(path string) (*ArgumentSuite, error) {
	return loadSuite[ArgumentSuite](path)
}

// ToolSelector turns a natural-language input into a tool call. Real runs
// put an LLM behind this; tests use deterministic fakes.
type ToolSelector interface {
	SelectTool(input string) (toolName string, args map[string]any, err error)
}

// EvaluateToolSelection runs every tool selection test through selector.
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []ToolSelectionResult) {
	metrics := newMetrics()
	var results []ToolSelectionResult

	for _, test := range suite.Tests {
		metrics.TotalTests++
		metrics.category(test.Category).Total++
		metrics.tool(test.ExpectedTool).ExpectedCount++

		actualTool, actualArgs, err := selector.SelectTool(test.Input)

		result := ToolSelectionResult{
			TestID:       test.ID,
			Input:        test.Input,
			ExpectedTool: test.ExpectedTool,
			ActualTool:   actualTool,
			Passed:       true,
		}

		if err != nil {
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		}

		if actualTool != test.ExpectedTool {
			result.Passed = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("wrong tool: expected %s, got %s", test.ExpectedTool, actualTool))
			metrics.tool(test.ExpectedTool).FalseNegatives++
			metrics.tool(actualTool).FalsePositives++
		} else {
			metrics.tool(test.ExpectedTool).CorrectCount++
		}
		metrics.tool(actualTool).SelectedCount++

		if slices.Contains(test.NotTools, actualTool) {
			result.Passed = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("selected forbidden tool: %s", actualTool))
		}

		for key, want := range test.ExpectedArgs {
			got, ok := actualArgs[key]
			switch {
			case !ok:
				result.Passed = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("missing arg %s (expected %v)", key, want))
			case !compareValues(want, got):
				result.Passed = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("wrong arg %s: expected %v, got %v", key, want, got))
			}
		}

		if result.Passed {
			metrics.PassedTests++
			metrics.category(test.Category).Passed++
		} else {
			metrics.FailedTests++
			metrics.category(test.Category).Failed++
			metrics.FailedDetails = append(metrics.FailedDetails,
				fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(result.Errors, "; ")))
		}

		results = append(results, result)
	}

	metrics.finalize()
	return metrics, results
}

// EvaluateConfusionPairs runs every boundary input through selector. Pair
// IDs double as metric categories.
func EvaluateConfusionPairs(suite *ConfusionPairSuite, selector ToolSelector) (*EvalMetrics, []ConfusionPairResult) {
	metrics := newMetrics()
	var results []ConfusionPairResult

	for _, pair := range suite.Pairs {
		for _, test := range pair.Tests {
			metrics.TotalTests++
			metrics.category(pair.ID).Total++
			metrics.tool(test.Expected).ExpectedCount++

			actualTool, _, err := selector.SelectTool(test.Input)

			result := ConfusionPairResult{
				PairID:       pair.ID,
				TestInput:    test.Input,
				ExpectedTool: test.Expected,
				ActualTool:   actualTool,
				Reason:       test.Reason,
				Passed:       err == nil && actualTool == test.Expected,
			}

			metrics.tool(actualTool).SelectedCount++

			if result.Passed {
				metrics.PassedTests++
				metrics.category(pair.ID).Passed++
				metrics.tool(test.Expected).CorrectCount++
			} else {
				metrics.FailedTests++
				metrics.category(pair.ID).Failed++
				metrics.tool(test.Expected).FalseNegatives++
				metrics.tool(actualTool).FalsePositives++
				metrics.FailedDetails = append(metrics.FailedDetails,
					fmt.Sprintf("[%s] %s: expected %s, got %s (%s)",
						pair.ID, test.Input, test.Expected, actualTool, test.Reason))
			}

			results = append(results, result)
		}
	}

	metrics.finalize()
	return metrics, results
}

// EvaluateArguments runs every argument test through selector. Tool names
// double as metric categories. A selector error or a wrong tool fails the
// test outright; argument checks only run once the right tool was picked.
func EvaluateArguments(suite *ArgumentSuite, selector ToolSelector) (*EvalMetrics, []ArgumentResult) {
	metrics := newMetrics()
	var results []ArgumentResult

	for _, test := range suite.Tests {
		metrics.TotalTests++
		metrics.category(test.Tool).Total++

		actualTool, actualArgs, err := selector.SelectTool(test.Input)

		result := ArgumentResult{
			TestID:    test.ID,
			Tool:      test.Tool,
			Input:     test.Input,
			Passed:    true,
			WrongArgs: make(map[string]string),
		}

		var failReasons []string
		switch {
		case err != nil:
			result.Passed = false
			failReasons = append(failReasons, fmt.Sprintf("selector error: %v", err))
		case actualTool != test.Tool:
			result.Passed = false
			failReasons = append(failReasons,
				fmt.Sprintf("wrong tool: expected %s, got %s", test.Tool, actualTool))
		default:
			for _, req := range test.RequiredArgs {
				if _, ok := actualArgs[req]; !ok {
					result.Passed = false
					result.MissingArgs = append(result.MissingArgs, req)
				}
			}
			for key, want := range test.ExpectedArgs {
				got, ok := actualArgs[key]
				switch {
				case !ok:
					result.Passed = false
					result.MissingArgs = append(result.MissingArgs, key)
				case !compareValues(want, got):
					result.Passed = false
					result.WrongArgs[key] = fmt.Sprintf("expected %v, got %v", want, got)
				}
			}
			for _, forbidden := range test.ForbiddenArgs {
				if _, ok := actualArgs[forbidden]; ok {
					result.Passed = false
					result.ForbiddenHit = append(result.ForbiddenHit, forbidden)
				}
			}

			if len(result.MissingArgs) > 0 {
				failReasons = append(failReasons, fmt.Sprintf("missing: %v", result.MissingArgs))
			}
			for _, k := range slices.Sorted(maps.Keys(result.WrongArgs)) {
				failReasons = append(failReasons, fmt.Sprintf("%s: %s", k, result.WrongArgs[k]))
			}
			if len(result.ForbiddenHit) > 0 {
				failReasons = append(failReasons, fmt.Sprintf("forbidden: %v", result.ForbiddenHit))
			}
		}

		if result.Passed {
			metrics.PassedTests++
			metrics.category(test.Tool).Passed++
		} else {
			metrics.FailedTests++
			metrics.category(test.Tool).Failed++
			metrics.FailedDetails = append(metrics.FailedDetails,
				fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(failReasons, "; ")))
		}

		results = append(results, result)
	}

	metrics.finalize()
	return metrics, results
}

// compareValues matches an expected argument value against what the
// selector produced. Numbers compare across Go and JSON representations
// (a suite's 2023 equals a decoded float64(2023)); slices and JSON objects
// compare element-wise.
func compareValues(expected, actual any) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	if ef, ok := asFloat(expected); ok {
		af, ok := asFloat(actual)
		return ok && ef == af
	}

	if em, ok := expected.(map[string]any); ok {
		am, ok := actual.(map[string]any)
		if !ok || len(em) != len(am) {
			return false
		}
		for k, ev := range em {
			av, present := am[k]
			if !present || !compareValues(ev, av) {
				return false
			}
		}
		return true
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)
	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := 0; i < ev.Len(); i++ {
			if !compareValues(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}

// asFloat widens numeric values so JSON's float64 compares against Go ints.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// FormatMetrics renders a run summary with categories in stable order.
func FormatMetrics(metrics *EvalMetrics, suiteName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", metrics.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", metrics.PassedTests, metrics.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", metrics.FailedTests)

	if len(metrics.ByCategory) > 0 {
		b.WriteString("\nBy Category:\n")
		for _, cat := range slices.Sorted(maps.Keys(metrics.ByCategory)) {
			m := metrics.ByCategory[cat]
			if m.Total == 0 {
				continue
			}
			acc := float64(m.Passed) / float64(m.Total) * 100
			fmt.Fprintf(&b, "  %-25s: %d/%d (%.0f%%)\n", cat, m.Passed, m.Total, acc)
		}
	}

	const maxDetails = 10
	if n := len(metrics.FailedDetails); n > 0 {
		if n <= maxDetails {
			b.WriteString("\nFailed Tests:\n")
		} else {
			fmt.Fprintf(&b, "\nFailed Tests (showing first %d of %d):\n", maxDetails, n)
		}
		for _, detail := range metrics.FailedDetails[:min(n, maxDetails)] {
			fmt.Fprintf(&b, "  - %s\n", detail)
		}
	}

	return b.String()
}

// LoadAllEvals loads the three standard suites from dir.
func LoadAllEvals(dir string) (*ToolSelectionSuite, *ConfusionPairSuite, *ArgumentSuite, error) {
	toolSelection, err := LoadToolSelectionSuite(filepath.Join(dir, "tool_selection.json"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading tool selection: %w", err)
	}

	confusionPairs, err := LoadConfusionPairSuite(filepath.Join(dir, "confusion_pairs.json"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading confusion pairs: %w", err)
	}

	arguments, err := LoadArgumentSuite(filepath.Join(dir, "argument_correctness.json"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading arguments: %w", err)
	}

	return toolSelection, confusionPairs, arguments, nil
}
