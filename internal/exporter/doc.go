// Package exporter writes the pipeline's output artifacts.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// FundamentalsExporter: Writes the wide per-entity and combined
// fundamentals tables. A concept that was not reported for a period is
// an empty cell, never zero.
//
// FeaturesExporter: Writes the terminal feature table as CSV and as an
// Excel workbook with one sheet per ticker. Absent derived values and
// labels stay empty there too.
package exporter
