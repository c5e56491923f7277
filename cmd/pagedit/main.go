package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gompdf/pagedit"
)

func main() {
	var (
		inputFile     string
		outputFile    string
		format        string
		pageSize      string
		headerText    string
		contentHeight float64
		verbose       bool
	)

	flag.StringVar(&inputFile, "input", "", "Input document path or URL (.json, .html, .md, .docx, .txt)")
	flag.StringVar(&outputFile, "output", "", "Output file path")
	flag.StringVar(&format, "format", "", "Output format: html or pdf (default from the output extension, else pdf)")
	flag.StringVar(&pageSize, "page-size", "A4", "Page size: A3, A4, A5, Letter or Legal")
	flag.StringVar(&headerText, "header", "", "Running header text")
	flag.Float64Var(&contentHeight, "content-height", 0, "Usable page height in CSS pixels (default from the page geometry)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if inputFile == "" {
		fmt.Println("Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}

	format = strings.ToLower(format)
	if format == "" {
		format = "pdf"
		if ext := strings.ToLower(filepath.Ext(outputFile)); ext == ".html" || ext == ".htm" {
			format = "html"
		}
	}
	if format != "html" && format != "pdf" {
		fmt.Printf("Error: unknown format %q\n", format)
		os.Exit(1)
	}
	if outputFile == "" {
		outputFile = defaultOutput(inputFile, format)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []pagedit.Option{
		pagedit.WithNamedPageSize(pageSize),
		pagedit.WithContentHeight(contentHeight),
		pagedit.WithDebug(verbose),
		pagedit.WithLogger(log),
	}
	if headerText != "" {
		opts = append(opts, pagedit.WithHeaderText(headerText))
	}
	editor := pagedit.New(opts...)

	doc, err := load(editor, inputFile)
	if err != nil {
		fmt.Printf("Error loading input: %v\n", err)
		os.Exit(1)
	}

	// the output extension decides the format inside Convert
	target := outputFile
	if !strings.EqualFold(filepath.Ext(target), "."+format) {
		target = strings.TrimSuffix(target, filepath.Ext(target)) + "." + format
	}
	if err := editor.Convert(doc, target); err != nil {
		fmt.Printf("Error converting file: %v\n", err)
		os.Exit(1)
	}

	log.Info("converted", "input", inputFile, "output", target)
	if verbose {
		fmt.Printf("Successfully converted %s to %s\n", inputFile, target)
	}
}

func load(editor *pagedit.Editor, input string) (*pagedit.Document, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return editor.LoadURL(ctx, input)
	}
	return editor.LoadFile(input)
}

func defaultOutput(input, format string) string {
	base := input
	if strings.Contains(input, "://") {
		base = filepath.Base(strings.TrimRight(input, "/"))
		if base == "" || base == "." || strings.Contains(base, ":") {
			base = "document"
		}
	}
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)] + "." + format
}
