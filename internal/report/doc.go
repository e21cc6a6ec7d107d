// Package report renders run summaries and store statistics.
//
// This package contains writers for different output formats:
//   - TextWriter: tables for the terminal, colored when writing to a TTY
//   - MarkdownWriter: GitHub Flavored Markdown with a mermaid pie chart
//   - JSONWriter: structured JSON for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
