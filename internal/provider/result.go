package provider

import "fmt"

// WordResult is the structured result from a remote dictionary provider.
type WordResult struct {
	Word       string
	Phonetics  []PhoneticResult
	Meanings   []MeaningResult
	SourceURLs []string
}

// PhoneticResult represents pronunciation data from an external dictionary.
type PhoneticResult struct {
	Text     *string
	AudioURL *string
	Region   *string
}

// MeaningResult groups definitions under one part of speech.
type MeaningResult struct {
	PartOfSpeech string
	Definitions  []DefinitionResult
}

// DefinitionResult represents a single definition from an external dictionary.
type DefinitionResult struct {
	Definition string
	Example    *string
	Synonyms   []string
	Antonyms   []string
	ImageURL   *string
	Emoji      *string
}

// StatusError reports a non-success HTTP status from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}
