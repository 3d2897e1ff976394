// Command locadoc-fields inspects an AcroForm template: it lists every
// fillable field and the semantic key its name resolves to, so template
// authors can see which fields will be filled before uploading.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/locadoc/locadoc/internal/pdf/fill"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: template file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	path := flag.Arg(0)
	template, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", path, err)
		os.Exit(1)
	}

	engine := fill.NewEngine(nil, zerolog.Nop())
	infos, err := engine.Inspect(template)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error inspecting template: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(path, infos); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func outputResults(path string, infos []fill.FieldInfo) error {
	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"template": path,
			"fields":   infos,
		})
	}

	fmt.Printf("Template: %s\n", path)
	if len(infos) == 0 {
		fmt.Println("No form fields found; generation would stamp an overlay on page 1.")
		return nil
	}
	fmt.Printf("Fields: %d\n\n", len(infos))
	for _, info := range infos {
		mapped := "(unmatched, skipped)"
		if info.Matched {
			mapped = "-> " + info.Key
		}
		fmt.Printf("  %-30s %-4s %s\n", info.Name, info.Type, mapped)
	}
	return nil
}

func printHelp() {
	fmt.Println("locadoc-fields - inspect the fillable fields of a PDF template")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format   Output format: text (default), json")
	fmt.Println("  -help     Show this help message")
	fmt.Println()
	fmt.Println("Each field is shown with its type (Tx text, Btn checkbox, Ch choice)")
	fmt.Println("and the semantic key its name maps to. Unmatched fields are left")
	fmt.Println("empty during generation unless the positional fallback applies.")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Printf("  %s [options] <template.pdf>\n", os.Args[0])
}
