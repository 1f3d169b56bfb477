// Package record defines the observation model for tracked SEI
// processes and the content fingerprint used to detect change.
//
// A Record is one process as seen in a single collector snapshot. The
// fingerprint is a domain-separated SHA-256 digest over a canonical
// JSON payload of the observation fields, so change detection never
// depends on field-by-field comparison at the call site, on map
// iteration order, or on the Unicode form the scraper happened to
// emit.
package record
