// Brandtint - brand theme extraction from websites and images
//
// Brandtint renders a website (or reads an image), mines it for brand
// colour evidence, and synthesizes a complete, WCAG-compliant set of
// UI colour roles.
package main

import (
	"github.com/brandtint/brandtint/internal/cli"
)

func main() {
	cli.Execute()
}
