package deepl

import (
	"fmt"
	"strings"
	"time"
)

// TextResult holds the result of one text translation.
type TextResult struct {
	Text               string
	DetectedSourceLang string
	BilledCharacters   int64
}

func (r TextResult) String() string {
	return r.Text
}

// WriteResult holds the result of one rephrase request.
type WriteResult struct {
	Text               string
	DetectedSourceLang string
	TargetLang         string
}

func (r WriteResult) String() string {
	return r.Text
}

// DocumentHandle identifies an in-progress document translation. It is
// issued by the upload endpoint and stays valid for the lifetime of the job,
// so it may be stored and reconstructed from its two fields across process
// restarts.
type DocumentHandle struct {
	DocumentID  string
	DocumentKey string
}

func (h DocumentHandle) String() string {
	return fmt.Sprintf("Document ID: %s, key: %s", h.DocumentID, h.DocumentKey)
}

// DocumentState is the server-reported state of a document translation.
type DocumentState string

const (
	DocumentStatusQueued      DocumentState = "queued"
	DocumentStatusTranslating DocumentState = "translating"
	DocumentStatusDone        DocumentState = "done"
	DocumentStatusDownloaded  DocumentState = "downloaded"
	DocumentStatusError       DocumentState = "error"
)

// DocumentStatus is one status poll result. A fresh value is produced on
// every poll; it is never mutated in place.
type DocumentStatus struct {
	Status DocumentState

	// SecondsRemaining estimates the time until translation completes.
	// Nil when unknown.
	SecondsRemaining *int64

	// BilledCharacters is the number of characters billed for this
	// document. Nil before translation completes.
	BilledCharacters *int64

	// ErrorMessage describes the failure when Status is error.
	ErrorMessage string
}

// OK reports whether the translation has not failed.
func (s DocumentStatus) OK() bool {
	return s.Status != DocumentStatusError
}

// Done reports whether the translation completed successfully.
func (s DocumentStatus) Done() bool {
	return s.Status == DocumentStatusDone
}

// GlossaryInfo describes a glossary, excluding its entry list.
type GlossaryInfo struct {
	GlossaryID   string
	Name         string
	Ready        bool
	SourceLang   string
	TargetLang   string
	CreationTime time.Time
	EntryCount   int64
}

func (g GlossaryInfo) String() string {
	return fmt.Sprintf("Glossary %q (%s)", g.Name, g.GlossaryID)
}

// GlossaryLanguagePair is a language pair supported for glossaries.
type GlossaryLanguagePair struct {
	SourceLang string
	TargetLang string
}

// Language describes a language supported by the translator.
type Language struct {
	// Code is the language code according to ISO 639-1, for example "EN".
	// Some target languages include the regional variant according to
	// ISO 3166-1, for example "EN-US".
	Code string
	Name string

	// SupportsFormality is set for target languages only.
	SupportsFormality *bool
}

func (l Language) String() string {
	return l.Code
}

// RemoveRegionalVariant strips the regional variant from a language code,
// for example "EN-US" gives "EN".
func RemoveRegionalVariant(lang string) string {
	upper := strings.ToUpper(lang)
	if len(upper) > 2 {
		return upper[:2]
	}
	return upper
}

// UsageDetail reports the used and allowed amounts for one usage type.
// Count and Limit are nil when the account does not track that type.
type UsageDetail struct {
	Count *int64
	Limit *int64
}

// Valid reports whether both count and limit are known.
func (d UsageDetail) Valid() bool {
	return d.Count != nil && d.Limit != nil
}

// LimitReached reports whether the amount used has reached the allowance.
func (d UsageDetail) LimitReached() bool {
	return d.Valid() && *d.Count >= *d.Limit
}

func (d UsageDetail) String() string {
	if !d.Valid() {
		return "Unknown"
	}
	return fmt.Sprintf("%d of %d", *d.Count, *d.Limit)
}

// Usage holds the result of a usage request, split by usage type.
type Usage struct {
	Character    UsageDetail
	Document     UsageDetail
	TeamDocument UsageDetail
}

// AnyLimitReached reports whether any usage type has reached its allowance.
func (u Usage) AnyLimitReached() bool {
	return u.Character.LimitReached() || u.Document.LimitReached() || u.TeamDocument.LimitReached()
}

func (u Usage) String() string {
	var b strings.Builder
	b.WriteString("Usage this billing period:")
	for _, entry := range []struct {
		label  string
		detail UsageDetail
	}{
		{"Characters", u.Character},
		{"Documents", u.Document},
		{"Team documents", u.TeamDocument},
	} {
		if entry.detail.Valid() {
			fmt.Fprintf(&b, "\n%s: %s", entry.label, entry.detail)
		}
	}
	return b.String()
}

// Formality controls the formality of translated text.
type Formality string

const (
	FormalityDefault    Formality = "default"
	FormalityLess       Formality = "less"
	FormalityMore       Formality = "more"
	FormalityPreferLess Formality = "prefer_less"
	FormalityPreferMore Formality = "prefer_more"
)

// SplitSentences controls how input is split into sentences before
// translation.
type SplitSentences string

const (
	// SplitSentencesOff treats the whole input as one sentence.
	SplitSentencesOff SplitSentences = "0"
	// SplitSentencesAll splits on punctuation and on newlines (default).
	SplitSentencesAll SplitSentences = "1"
	// SplitSentencesNoNewlines splits on punctuation only.
	SplitSentencesNoNewlines SplitSentences = "nonewlines"
)

// parseGlossaryTime parses the glossary creation timestamp, accepting both
// "Z" and numeric offsets with or without a colon.
func parseGlossaryTime(value string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999-0700",
		"2006-01-02T15:04:05-0700",
	} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
