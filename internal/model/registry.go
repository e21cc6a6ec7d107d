package model

import "strings"

// ABNLength is the number of digits in a valid Australian Business Number.
const ABNLength = 11

// StatusActive is the lifecycle status of a registry entry that can be matched by name.
const StatusActive = "Active"

// RegistryRecord is an entry of the Australian Business Register.
// Records are produced by the registry ingestion tooling and are read-only here.
type RegistryRecord struct {
	// ABN is the 11-digit Australian Business Number.
	ABN string `json:"abn"`

	// EntityName is the registered (canonical) entity name.
	EntityName string `json:"entity_name"`

	// EntityType is the ABR entity type, e.g. "Australian Private Company".
	EntityType string `json:"entity_type,omitempty"`

	// Status is the lifecycle status, e.g. "Active" or "Cancelled".
	Status string `json:"status"`

	// State is the jurisdiction of the main business address (NSW, VIC, ...).
	State string `json:"state,omitempty"`

	// Postcode of the main business address.
	Postcode string `json:"postcode,omitempty"`

	// FullAddress is the formatted main business address.
	FullAddress string `json:"full_address,omitempty"`
}

// IsActive reports whether the entry has an active lifecycle status.
func (r RegistryRecord) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), StatusActive)
}

// HasName reports whether the entry has a non-blank entity name.
func (r RegistryRecord) HasName() bool {
	return strings.TrimSpace(r.EntityName) != ""
}

// NormalizeABN strips every non-digit character from s and returns the result
// if exactly ABNLength digits remain. Any other value is treated as absent.
//
//	NormalizeABN("12 345 678 901") // "12345678901", true
//	NormalizeABN("ABN 123")        // "", false
func NormalizeABN(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	var b strings.Builder
	b.Grow(ABNLength)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != ABNLength {
		return "", false
	}
	return digits, true
}
