package models

import "time"

// Bundle is the backup document produced by export and consumed by import.
//
// Users and Items are nil when the corresponding field was absent (or null)
// in the source document, which import treats as malformed.
type Bundle struct {
	Users      []Member  `json:"users"`
	Items      []Item    `json:"items"`
	ExportDate time.Time `json:"exportDate"`

	// Photos holds stored photo bytes keyed by reference. Optional.
	Photos map[string][]byte `json:"photos,omitempty"`
}
