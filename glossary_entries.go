package deepl

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
)

// GlossaryEntries maps source terms to their fixed target translations.
type GlossaryEntries map[string]string

// validateGlossaryTerm rejects terms the glossary endpoint cannot store.
// Control characters would corrupt the TSV wire format, and the Unicode
// line and paragraph separators are treated as newlines by the server.
func validateGlossaryTerm(term string) error {
	if strings.TrimSpace(term) == "" {
		return fmt.Errorf("glossary term must not be empty")
	}
	for _, r := range term {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) || r == ' ' || r == ' ' {
			return fmt.Errorf("glossary term %q contains invalid character U+%04X", term, r)
		}
	}
	return nil
}

// Validate checks every entry for terms the server would reject.
func (e GlossaryEntries) Validate() error {
	if len(e) == 0 {
		return fmt.Errorf("glossary entries must not be empty")
	}
	for source, target := range e {
		if err := validateGlossaryTerm(source); err != nil {
			return err
		}
		if err := validateGlossaryTerm(target); err != nil {
			return err
		}
	}
	return nil
}

// ToTSV encodes the entries in the tab-separated format the glossary
// endpoint expects, one entry per line. Entries are sorted by source term
// so the encoding is deterministic.
func (e GlossaryEntries) ToTSV() (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	sources := make([]string, 0, len(e))
	for source := range e {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	var b strings.Builder
	for i, source := range sources {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(source)
		b.WriteByte('\t')
		b.WriteString(e[source])
	}
	return b.String(), nil
}

// ParseTSVEntries decodes tab-separated glossary entries. Each non-empty
// line must hold exactly one source and one target term, and source terms
// must be unique.
func ParseTSVEntries(tsv string) (GlossaryEntries, error) {
	entries := GlossaryEntries{}
	for i, line := range strings.Split(tsv, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		source, target, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("line %d: missing tab separator", i+1)
		}
		if strings.Contains(target, "\t") {
			return nil, fmt.Errorf("line %d: entry has more than two terms", i+1)
		}
		source = strings.TrimSpace(source)
		target = strings.TrimSpace(target)
		if _, dup := entries[source]; dup {
			return nil, fmt.Errorf("line %d: duplicate source term %q", i+1, source)
		}
		entries[source] = target
	}
	if err := entries.Validate(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseCSVEntries decodes comma-separated glossary entries. Only the first
// two columns of each record are used, matching the CSV glossary upload
// format.
func ParseCSVEntries(data string) (GlossaryEntries, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	entries := GlossaryEntries{}
	for i, record := range records {
		if len(record) < 2 {
			return nil, fmt.Errorf("record %d: expected at least two columns", i+1)
		}
		source := strings.TrimSpace(record[0])
		target := strings.TrimSpace(record[1])
		if _, dup := entries[source]; dup {
			return nil, fmt.Errorf("record %d: duplicate source term %q", i+1, source)
		}
		entries[source] = target
	}
	if err := entries.Validate(); err != nil {
		return nil, err
	}
	return entries, nil
}
