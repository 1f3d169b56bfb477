package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryInbound.Valid())
	assert.True(t, CategoryGenerated.Valid())
	assert.False(t, Category("").Valid())
	assert.False(t, Category("archived").Valid())
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trims and drops empties", []string{" urgente ", "", "  "}, []string{"urgente"}},
		{"sorts", []string{"b", "a", "c"}, []string{"a", "b", "c"}},
		{"dedupes", []string{"a", "a", "b", "b"}, []string{"a", "b"}},
		{"dedupes after trim", []string{"a ", " a"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestChangedFields(t *testing.T) {
	before := baseRecord()

	tests := []struct {
		name   string
		mutate func(*Record)
		want   []string
	}{
		{"no change", func(r *Record) {}, nil},
		{"title", func(r *Record) { r.Title = "Outro" }, []string{FieldTitle}},
		{"tags", func(r *Record) { r.Tags = []string{"urgente"} }, []string{FieldTags}},
		{"document count", func(r *Record) { r.DocumentCount = 9 }, []string{FieldDocumentCount}},
		{"movement", func(r *Record) { r.LastMovementAt = r.LastMovementAt.Add(time.Hour) }, []string{FieldLastMovement}},
		{"tag order is not a change", func(r *Record) { r.Tags = []string{"fiscalização", "urgente"} }, nil},
		{"sub-second is not a change", func(r *Record) { r.LastMovementAt = r.LastMovementAt.Add(300 * time.Millisecond) }, nil},
		{"zone is not a change", func(r *Record) {
			r.LastMovementAt = r.LastMovementAt.In(time.FixedZone("BRT", -3*60*60))
		}, nil},
		{"link is not a change", func(r *Record) { r.Link = "https://elsewhere.example" }, nil},
		{
			"multiple changes in stable order",
			func(r *Record) {
				r.Title = "Outro"
				r.DocumentCount = 9
				r.Tags = nil
			},
			[]string{FieldDocumentCount, FieldTags, FieldTitle},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := baseRecord()
			tt.mutate(&after)
			assert.Equal(t, tt.want, ChangedFields(before, after))
		})
	}
}

func TestChangedFieldsAgreesWithFingerprint(t *testing.T) {
	before := baseRecord()
	after := baseRecord()
	after.DocumentCount++

	assert.NotEqual(t, before.Fingerprint(), after.Fingerprint())
	assert.NotEmpty(t, ChangedFields(before, after))

	same := baseRecord()
	same.Tags = []string{"fiscalização", "urgente", "urgente"}
	assert.Equal(t, before.Fingerprint(), same.Fingerprint())
	assert.Empty(t, ChangedFields(before, same))
}
