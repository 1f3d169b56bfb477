package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

func TestClassifyBaselineTotality(t *testing.T) {
	// Reversed input order: the output must come back sorted by id.
	snapshot := []record.Record{
		snapshotRecord(4), snapshotRecord(3), snapshotRecord(2),
		snapshotRecord(1), snapshotRecord(0),
	}

	classified := Classify(snapshot, emptyStore(t))
	require.Len(t, classified, 5)

	for i, cr := range classified {
		assert.Equal(t, snapshotRecord(i).ID, cr.Record.ID)
		assert.Equal(t, StatusNew, cr.Status)
		assert.Empty(t, cr.ChangeDetails)
		assert.False(t, cr.Admitted)
		assert.Empty(t, cr.SkipReason)
		assert.Empty(t, cr.FetchOutcome)
	}
}

func TestClassifyMixedStatuses(t *testing.T) {
	unchanged := snapshotRecord(0)
	updated := snapshotRecord(1)
	store := storeWith(t, unchanged, updated)

	moved := updated
	moved.DocumentCount = 7

	snapshot := []record.Record{snapshotRecord(9), moved, unchanged}
	classified := Classify(snapshot, store)
	require.Len(t, classified, 3)

	assert.Equal(t, unchanged.ID, classified[0].Record.ID)
	assert.Equal(t, StatusUnchanged, classified[0].Status)

	assert.Equal(t, moved.ID, classified[1].Record.ID)
	assert.Equal(t, StatusUpdated, classified[1].Status)
	assert.Equal(t, []string{record.FieldDocumentCount}, classified[1].ChangeDetails)

	assert.Equal(t, snapshotRecord(9).ID, classified[2].Record.ID)
	assert.Equal(t, StatusNew, classified[2].Status)
}

func TestClassifyReportsEveryChangedField(t *testing.T) {
	prev := snapshotRecord(0)
	store := storeWith(t, prev)

	next := prev
	next.Title = "Processo renomeado"
	next.Tags = []string{"monitorado", "urgente"}

	classified := Classify([]record.Record{next}, store)
	require.Len(t, classified, 1)
	assert.Equal(t, StatusUpdated, classified[0].Status)
	assert.Equal(t, []string{record.FieldTags, record.FieldTitle}, classified[0].ChangeDetails)
}

func TestClassifyExcludesHistoryOnlyRecords(t *testing.T) {
	store := storeWith(t, snapshotRecord(0), snapshotRecord(5))

	classified := Classify([]record.Record{snapshotRecord(0)}, store)
	require.Len(t, classified, 1)
	assert.Equal(t, snapshotRecord(0).ID, classified[0].Record.ID)
}

func TestClassifyDeterministicAcrossInputOrder(t *testing.T) {
	store := storeWith(t, snapshotRecord(1), snapshotRecord(3))

	a := []record.Record{snapshotRecord(0), snapshotRecord(1), snapshotRecord(2), snapshotRecord(3)}
	b := []record.Record{snapshotRecord(3), snapshotRecord(2), snapshotRecord(1), snapshotRecord(0)}

	assert.Equal(t, Classify(a, store), Classify(b, store))
}

func TestClassifyIgnoresPresentationDrift(t *testing.T) {
	prev := snapshotRecord(0)
	store := storeWith(t, prev)

	next := prev
	next.Link = "https://sei.example.gov.br/novo-endereco"
	next.Tags = []string{" monitorado "}

	classified := Classify([]record.Record{next}, store)
	require.Len(t, classified, 1)
	assert.Equal(t, StatusUnchanged, classified[0].Status)
}
