package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/zurustar/trace/pkg/app"
)

//go:embed examples
var embeddedExamples embed.FS

func main() {
	application := app.New(embeddedExamples, os.Stdout, os.Stderr)
	if err := application.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
