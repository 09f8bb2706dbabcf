package linking

import (
	"fmt"
	"testing"

	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialIDs mirrors a UUID generator with predictable output.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("can-%d", n)
	}
}

func newTestLinker() *Linker {
	return New(Options{IDGenerator: sequentialIDs()})
}

func mention(t model.EntityType, raw, norm string, conf float64) *model.ExtractedEntity {
	return &model.ExtractedEntity{EntityType: t, RawText: raw, NormalizedText: norm, Confidence: conf}
}

func TestAddEntities_ContractScenario(t *testing.T) {
	l := newTestLinker()
	entities := []*model.ExtractedEntity{
		mention(model.EntityPerson, "John Smith", "John Smith", 0.95),
		mention(model.EntityOrganization, "Acme Corp", "Acme Corp", 0.85),
		mention(model.EntityMoney, "$1,500,000", "$1,500,000", 0.99),
		mention(model.EntityDate, "January 15, 2024", "January 15, 2024", 0.5),
	}

	ids := l.AddEntities(entities, "doc-1")

	assert.Equal(t, []string{"can-1", "can-2", "can-3", "can-4"}, ids)
	assert.Equal(t, 4, l.Len())
	for i, e := range entities {
		assert.Equal(t, ids[i], e.MetaString(model.MetaCanonicalID))
		assert.Equal(t, "doc-1", e.MetaString(model.MetaSourceDoc))
	}

	c, ok := l.Canonical("can-1")
	require.True(t, ok)
	assert.Equal(t, "doc-1", c.FirstSeen)
	assert.Equal(t, []string{"John Smith"}, c.Aliases)
}

func TestFindOrCreate_TypeIsolation(t *testing.T) {
	l := newTestLinker()
	loc := l.FindOrCreate(mention(model.EntityLocation, "Washington", "Washington", 0.9))
	person := l.FindOrCreate(mention(model.EntityPerson, "Washington", "Washington", 0.9))

	assert.NotEqual(t, loc, person)
	assert.Equal(t, 2, l.Len())
}

func TestFindOrCreate_ExactMatchPriority(t *testing.T) {
	l := newTestLinker()
	id := l.FindOrCreate(mention(model.EntityOrganization, "Acme Corp", "Acme Corp", 0.6))

	exact := l.FindOrCreate(mention(model.EntityOrganization, "ACME CORP", "acme corp", 0.9))
	assert.Equal(t, id, exact)
	c, _ := l.Canonical(id)
	assert.Equal(t, 0.9, c.Confidence)

	fuzzy := l.FindOrCreate(mention(model.EntityOrganization, "Acme Corporation", "Acme Corporation", 0.99))
	assert.Equal(t, id, fuzzy)
	c, _ = l.Canonical(id)
	assert.Equal(t, 0.9, c.Confidence, "fuzzy merge must not raise confidence")
	assert.Equal(t, "Acme Corp", c.NormalizedName)
	assert.Equal(t, []string{"Acme Corp", "ACME CORP", "Acme Corporation"}, c.Aliases)
	assert.Equal(t, 1, l.Len())
}

func TestFindOrCreate_ExactBeatsEarlierFuzzy(t *testing.T) {
	l := newTestLinker()
	first := l.FindOrCreate(mention(model.EntityOrganization, "Acme Corporation", "Acme Corporation", 0.5))
	l.mu.Lock()
	// seed an unrelated exact candidate after the fuzzy one
	l.canonicals = append(l.canonicals, &model.CanonicalEntity{ID: "exact", Type: model.EntityOrganization, NormalizedName: "Acme Corp", Aliases: []string{"Acme Corp"}, Confidence: 0.4})
	l.byID["exact"] = l.canonicals[1]
	l.mu.Unlock()

	got := l.FindOrCreate(mention(model.EntityOrganization, "Acme Corp", "Acme Corp", 0.8))
	assert.Equal(t, "exact", got)
	c, _ := l.Canonical("exact")
	assert.Equal(t, 0.8, c.Confidence)

	other, _ := l.Canonical(first)
	assert.Equal(t, []string{"Acme Corporation"}, other.Aliases)
}

func TestFindOrCreate_ShortStringGuard(t *testing.T) {
	l := newTestLinker()
	alabama := l.FindOrCreate(mention(model.EntityLocation, "Alabama", "Alabama", 0.9))
	al := l.FindOrCreate(mention(model.EntityLocation, "Al", "Al", 0.9))
	assert.NotEqual(t, alabama, al)

	l2 := newTestLinker()
	shortFirst := l2.FindOrCreate(mention(model.EntityPerson, "Al", "Al", 0.9))
	long := l2.FindOrCreate(mention(model.EntityPerson, "Al Gore", "Al Gore", 0.9))
	assert.NotEqual(t, shortFirst, long)

	// exactly four characters on both sides is long enough
	l3 := newTestLinker()
	a := l3.FindOrCreate(mention(model.EntityOrganization, "NASA", "NASA", 0.9))
	b := l3.FindOrCreate(mention(model.EntityOrganization, "NASA Ames", "NASA Ames", 0.9))
	assert.Equal(t, a, b)

	// and exact matching ignores the length guard
	c := l3.FindOrCreate(mention(model.EntityOrganization, "FBI", "FBI", 0.9))
	d := l3.FindOrCreate(mention(model.EntityOrganization, "F.B.I.", "fbi", 0.9))
	assert.Equal(t, c, d)
}

func TestFindOrCreate_OrderDependence(t *testing.T) {
	forward := newTestLinker()
	forward.FindOrCreate(mention(model.EntityPerson, "John Smith", "John Smith", 0.9))
	forward.FindOrCreate(mention(model.EntityPerson, "Smith", "Smith", 0.9))
	forward.FindOrCreate(mention(model.EntityPerson, "Jane Smith", "Jane Smith", 0.9))
	assert.Equal(t, 2, forward.Len())

	reverse := newTestLinker()
	reverse.FindOrCreate(mention(model.EntityPerson, "Smith", "Smith", 0.9))
	reverse.FindOrCreate(mention(model.EntityPerson, "John Smith", "John Smith", 0.9))
	reverse.FindOrCreate(mention(model.EntityPerson, "Jane Smith", "Jane Smith", 0.9))
	assert.Equal(t, 1, reverse.Len())
}

func TestFindOrCreate_UnknownTypeStartsOwnGroup(t *testing.T) {
	l := newTestLinker()
	a := l.FindOrCreate(mention("VEHICLE", "Ford", "Ford Taurus", 0.5))
	b := l.FindOrCreate(mention("VEHICLE", "Ford", "Ford Taurus", 0.5))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, l.Len())
}

func TestLinkEntities_AppendOnly(t *testing.T) {
	l := newTestLinker()
	l.LinkEntities("a", "b", model.RelCommunicatedWith, model.ConfidenceProbable, "memo")
	l.LinkEntities("a", "b", model.RelCommunicatedWith, model.ConfidenceProbable, "memo")
	l.LinkEntities("missing", "also-missing", "knows", model.ConfidencePossible, "")

	g := l.ExportGraph()
	require.Len(t, g.Links, 3)
	assert.Equal(t, "a", g.Links[0].Source)
	assert.Equal(t, "b", g.Links[0].Target)
	assert.Equal(t, g.Links[0], g.Links[1])
}

func TestExportGraph_Snapshot(t *testing.T) {
	l := newTestLinker()
	l.AddEntities([]*model.ExtractedEntity{
		mention(model.EntityOrganization, "Dept. of Energy", "Department of Energy", 0.8),
		mention(model.EntityOrganization, "DOE", "Department of Energy", 0.9),
	}, "doc-9")

	g := l.ExportGraph()
	require.Len(t, g.Entities, 1)
	e := g.Entities[0]
	assert.Equal(t, "can-1", e.ID)
	assert.Equal(t, model.EntityOrganization, e.Type)
	assert.Equal(t, "Department of Energy", e.Name)
	assert.Equal(t, []string{"Dept. of Energy", "DOE"}, e.Aliases)
	assert.Equal(t, 0.9, e.Confidence)

	g.Entities[0].Aliases[0] = "mutated"
	c, _ := l.Canonical("can-1")
	assert.Equal(t, "Dept. of Energy", c.Aliases[0])

	assert.Empty(t, l.ExportGraph().Links)
}

func TestCanonical_Missing(t *testing.T) {
	_, ok := newTestLinker().Canonical("nope")
	assert.False(t, ok)
}

func TestNew_DefaultIDsAreUUIDs(t *testing.T) {
	l := New(Options{})
	id := l.FindOrCreate(mention(model.EntityEmail, "a@b.gov", "a@b.gov", 1))
	assert.Len(t, id, 36)
}

func TestRestore_ContinuesCanonicalization(t *testing.T) {
	first := newTestLinker()
	first.AddEntities([]*model.ExtractedEntity{
		mention(model.EntityPerson, "John Smith", "John Smith", 0.9),
		mention(model.EntityOrganization, "Acme Corp", "Acme Corp", 0.8),
	}, "doc-1")
	first.LinkEntities("can-1", "can-2", model.RelWorksFor, model.ConfidenceProbable, "works at")
	saved := first.ExportGraph()

	restarted := New(Options{IDGenerator: func() string { return "fresh" }})
	require.NoError(t, restarted.Restore(saved))

	assert.Equal(t, 2, restarted.Len())
	assert.Equal(t, "can-1", restarted.FindOrCreate(mention(model.EntityPerson, "J. Smith", "john smith", 0.7)))
	assert.Equal(t, "can-2", restarted.FindOrCreate(mention(model.EntityOrganization, "ACME", "Acme Corp Inc", 0.7)))
	assert.Equal(t, "fresh", restarted.FindOrCreate(mention(model.EntityPerson, "Jane Roe", "Jane Roe", 0.7)))

	g := restarted.ExportGraph()
	assert.Equal(t, saved.Links, g.Links)
	c, ok := restarted.Canonical("can-1")
	require.True(t, ok)
	assert.Equal(t, []string{"John Smith", "J. Smith"}, c.Aliases)

	saved.Entities[0].Aliases[0] = "mutated"
	c, _ = restarted.Canonical("can-1")
	assert.Equal(t, "John Smith", c.Aliases[0])
}

func TestRestore_RejectsNonEmptyAndSkipsBadIDs(t *testing.T) {
	l := newTestLinker()
	require.NoError(t, l.Restore(model.GraphExport{Entities: []model.ExportedEntity{
		{ID: "a", Type: model.EntityPerson, Name: "Ann Lee"},
		{ID: "", Type: model.EntityPerson, Name: "Nobody"},
		{ID: "a", Type: model.EntityPerson, Name: "Ann Lee again"},
	}}))
	assert.Equal(t, 1, l.Len())

	assert.ErrorIs(t, l.Restore(model.GraphExport{}), ErrNotEmpty)
}
