// Package harvest extracts structured records from parsed HTML documents.
// A Recipe maps named fields to CSS selectors (optionally suffixed with a
// 1-based positional index such as "h4[1]"), runs them against many
// documents, and flushes the accumulated records to text, JSON, XML or
// SQLite destinations.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, etree/).
package harvest
