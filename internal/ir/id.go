package ir

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ElementID is the unique identifier of a layout node.
//
// The same value keys the load-status map, names the node's notification
// topics and indexes the built tree. Construct it with ParseElementID so
// every consumer sees the same normalised form.
type ElementID string

// ParseElementID validates and normalises a raw label.
//
// Labels are NFC-normalised so that visually identical labels typed with
// different Unicode compositions map to one key. Empty labels and labels
// containing whitespace are rejected.
func ParseElementID(raw string) (ElementID, error) {
	label := norm.NFC.String(strings.TrimSpace(raw))
	if label == "" {
		return "", fmt.Errorf("element label is empty")
	}
	if strings.ContainsFunc(label, unicode.IsSpace) {
		return "", fmt.Errorf("element label %q contains whitespace", label)
	}
	return ElementID(label), nil
}

// MustElementID is ParseElementID for literals in tests and defaults.
// Panics on an invalid label.
func MustElementID(raw string) ElementID {
	id, err := ParseElementID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the label.
func (id ElementID) String() string {
	return string(id)
}
