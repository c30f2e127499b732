// Package main provides the entry point for the sitedoc CLI.
//
// sitedoc crawls a JavaScript-rendered website with a headless browser
// and assembles the extracted content into a single document.
//
// Usage:
//
//	sitedoc crawl <url>
//	sitedoc crawl --format markdown <url>
//
// See --help for all available options.
package main

// main is the entry point for sitedoc.
func main() {
	Execute()
}
