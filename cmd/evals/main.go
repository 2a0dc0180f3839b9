// Command evals inspects the MCP tool selection evaluation suites.
//
// Usage:
//
//	go run ./cmd/evals -dir ./evals -suite all
//
// It loads the suite JSON files and reports their coverage: which tools are
// probed, how tests split across categories, and what argument conventions
// the suites enforce. Actual model scoring happens by implementing
// evals.ToolSelector and feeding it to the Evaluate functions.
package main

import (
	"flag"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/leopoldodonnell/edgar-mcp/evals"
)

func main() {
	dir := flag.String("dir", "./evals", "Directory containing eval JSON files")
	suite := flag.String("suite", "all", "Suite to load: tool_selection, confusion_pairs, arguments, or all")
	verbose := flag.Bool("verbose", false, "Show individual test cases")
	flag.Parse()

	fmt.Println("EDGAR MCP Server - Evaluation Framework")
	fmt.Println("=======================================")
	fmt.Println()

	switch *suite {
	case "tool_selection":
		showToolSelection(*dir, *verbose)
	case "confusion_pairs":
		showConfusionPairs(*dir, *verbose)
	case "arguments":
		showArguments(*dir, *verbose)
	case "all":
		showAll(*dir, *verbose)
	default:
		fatalf("Unknown suite: %s", *suite)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// printCounts renders a name -> count map with stable ordering.
func printCounts(header string, counts map[string]int, width int) {
	fmt.Println(header)
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		fmt.Printf("  %-*s: %d\n", width, name, counts[name])
	}
	fmt.Println()
}

func showToolSelection(dir string, verbose bool) {
	suite, err := evals.LoadToolSelectionSuite(filepath.Join(dir, "tool_selection.json"))
	if err != nil {
		fatalf("Error loading tool selection suite: %v", err)
	}

	fmt.Printf("Tool Selection Suite: %s\n", suite.Name)
	fmt.Printf("Version: %s\n", suite.Version)
	fmt.Printf("Description: %s\n", suite.Description)
	fmt.Printf("Total Tests: %d\n", len(suite.Tests))
	fmt.Println()

	categories := make(map[string]int)
	tools := make(map[string]int)
	for _, test := range suite.Tests {
		categories[test.Category]++
		tools[test.ExpectedTool]++
	}

	printCounts("Tests by Category:", categories, 15)
	printCounts("Tests by Tool:", tools, 40)

	if verbose {
		fmt.Println("Test Cases:")
		for _, test := range suite.Tests {
			fmt.Printf("  [%s] %s\n", test.ID, test.Input)
			fmt.Printf("    expects %s\n", test.ExpectedTool)
			if len(test.NotTools) > 0 {
				fmt.Printf("    rejects %v\n", test.NotTools)
			}
		}
	}
}

func showConfusionPairs(dir string, verbose bool) {
	suite, err := evals.LoadConfusionPairSuite(filepath.Join(dir, "confusion_pairs.json"))
	if err != nil {
		fatalf("Error loading confusion pairs suite: %v", err)
	}

	fmt.Printf("Confusion Pairs Suite: %s\n", suite.Name)
	fmt.Printf("Version: %s\n", suite.Version)
	fmt.Printf("Description: %s\n", suite.Description)
	fmt.Printf("Total Pairs: %d\n", len(suite.Pairs))
	fmt.Printf("Total Tests: %d\n", countConfusionTests(suite))
	fmt.Println()

	fmt.Println("Confusion Pairs:")
	for _, pair := range suite.Pairs {
		fmt.Printf("\n  %s:\n", pair.ID)
		fmt.Printf("    Tools: %v\n", pair.Tools)
		fmt.Printf("    Rule: %s\n", pair.Disambiguation)
		fmt.Printf("    Tests: %d\n", len(pair.Tests))

		if verbose {
			for _, test := range pair.Tests {
				fmt.Printf("      %q\n", test.Input)
				fmt.Printf("        expects %s (%s)\n", test.Expected, test.Reason)
			}
		}
	}
	fmt.Println()
}

func showArguments(dir string, verbose bool) {
	suite, err := evals.LoadArgumentSuite(filepath.Join(dir, "argument_correctness.json"))
	if err != nil {
		fatalf("Error loading argument suite: %v", err)
	}

	fmt.Printf("Argument Suite: %s\n", suite.Name)
	fmt.Printf("Version: %s\n", suite.Version)
	fmt.Printf("Description: %s\n", suite.Description)
	fmt.Printf("Total Tests: %d\n", len(suite.Tests))
	fmt.Println()

	tools := make(map[string]int)
	for _, test := range suite.Tests {
		tools[test.Tool]++
	}
	printCounts("Tests by Tool:", tools, 40)

	fmt.Println("Validation Rules:")
	fmt.Printf("  CIK Format: %s\n", suite.ValidationRules.CIKFormat)
	fmt.Printf("  Concept Format: %s\n", suite.ValidationRules.ConceptFormat)
	fmt.Printf("  Period Format: %s\n", suite.ValidationRules.PeriodFormat)
	fmt.Printf("  Accession Format: %s\n", suite.ValidationRules.AccessionFormat)
	fmt.Printf("  Number Handling: %s\n", suite.ValidationRules.NumberHandling)
	fmt.Println()

	if verbose {
		fmt.Println("Test Cases:")
		for _, test := range suite.Tests {
			fmt.Printf("  [%s] %s\n", test.ID, test.Input)
			fmt.Printf("    Tool: %s\n", test.Tool)
			fmt.Printf("    Required: %v\n", test.RequiredArgs)
			fmt.Printf("    Expected: %v\n", test.ExpectedArgs)
			if len(test.ForbiddenArgs) > 0 {
				fmt.Printf("    Forbidden: %v\n", test.ForbiddenArgs)
			}
			if test.ArgNotes != "" {
				fmt.Printf("    Notes: %s\n", test.ArgNotes)
			}
		}
	}
}

func countConfusionTests(suite *evals.ConfusionPairSuite) int {
	n := 0
	for _, pair := range suite.Pairs {
		n += len(pair.Tests)
	}
	return n
}

func showAll(dir string, verbose bool) {
	toolSelection, confusionPairs, arguments, err := evals.LoadAllEvals(dir)
	if err != nil {
		fatalf("Error loading evals: %v", err)
	}

	confusionTests := countConfusionTests(confusionPairs)
	total := len(toolSelection.Tests) + confusionTests + len(arguments.Tests)

	fmt.Printf("Loaded all evaluation suites from: %s\n\n", dir)

	fmt.Println("Summary:")
	fmt.Println("--------")
	fmt.Printf("Tool Selection Tests:   %d\n", len(toolSelection.Tests))
	fmt.Printf("Confusion Pair Tests:   %d (across %d pairs)\n", confusionTests, len(confusionPairs.Pairs))
	fmt.Printf("Argument Tests:         %d\n", len(arguments.Tests))
	fmt.Println("--------------------------")
	fmt.Printf("Total Evaluation Tests: %d\n", total)
	fmt.Println()

	covered := make(map[string]bool)
	for _, test := range toolSelection.Tests {
		covered[test.ExpectedTool] = true
	}
	for _, pair := range confusionPairs.Pairs {
		for _, tool := range pair.Tools {
			covered[tool] = true
		}
	}
	for _, test := range arguments.Tests {
		covered[test.Tool] = true
	}

	fmt.Printf("Tool Coverage: %d unique tools tested\n", len(covered))

	if verbose {
		fmt.Println("\nCovered Tools:")
		for _, tool := range slices.Sorted(maps.Keys(covered)) {
			fmt.Printf("  - %s\n", tool)
		}
	}

	fmt.Println()
	fmt.Println("To score a model, implement the evals.ToolSelector interface and run")
	fmt.Println("EvaluateToolSelection, EvaluateConfusionPairs, and EvaluateArguments.")
}
