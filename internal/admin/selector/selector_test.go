package selector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
)

func testIndex() *geo.Index {
	return geo.Build([]geo.Entry{
		{Province: "P1", Canton: "C1", District: "D1"},
		{Province: "P1", Canton: "C1", District: "D2"},
		{Province: "P1", Canton: "C2", District: "D3"},
		{Province: "P2", Canton: "C3", District: "D4"},
	})
}

func staticProvider(idx *geo.Index) IndexProvider {
	return func() *geo.Index { return idx }
}

// assertConsistent checks that the selection never points outside the index.
func assertConsistent(t *testing.T, idx *geo.Index, sel Selection) {
	t.Helper()
	if sel.Canton != NotApplicable {
		require.True(t, idx.HasCanton(sel.Province, sel.Canton), "canton %q not in %q", sel.Canton, sel.Province)
	}
	if sel.District != NotApplicable {
		require.True(t, idx.HasDistrict(sel.Province, sel.Canton, sel.District), "district %q not in %q/%q", sel.District, sel.Province, sel.Canton)
	}
}

func TestNewStartsAtSentinel(t *testing.T) {
	t.Parallel()

	s := New(staticProvider(testIndex()))
	require.Equal(t, Selection{Province: NotApplicable, Canton: NotApplicable, District: NotApplicable}, s.Selection())

	opts := s.Options()
	require.Equal(t, []string{NotApplicable, "P1", "P2"}, opts.Provinces)
	require.Equal(t, []string{NotApplicable}, opts.Cantons)
	require.Equal(t, []string{NotApplicable}, opts.Districts)
}

func TestSetProvinceResetsLowerLevels(t *testing.T) {
	t.Parallel()

	idx := testIndex()
	s := New(staticProvider(idx))
	s.Update(SetProvince{Value: "P1"})
	s.Update(SetCanton{Value: "C1"})
	s.Update(SetDistrict{Value: "D2"})
	require.Equal(t, Selection{Province: "P1", Canton: "C1", District: "D2"}, s.Selection())

	s.Update(SetProvince{Value: "P2"})
	require.Equal(t, Selection{Province: "P2", Canton: NotApplicable, District: NotApplicable}, s.Selection())
	require.Equal(t, []string{NotApplicable, "C3"}, s.Options().Cantons)
	require.Equal(t, []string{NotApplicable}, s.Options().Districts)
}

func TestSetCantonResetsDistrict(t *testing.T) {
	t.Parallel()

	s := New(staticProvider(testIndex()))
	s.Update(SetProvince{Value: "P1"})
	s.Update(SetCanton{Value: "C1"})
	s.Update(SetDistrict{Value: "D1"})

	s.Update(SetCanton{Value: "C2"})
	require.Equal(t, NotApplicable, s.Selection().District)
	require.Equal(t, []string{NotApplicable, "D3"}, s.Options().Districts)
}

func TestUnknownValuesCoerceToSentinel(t *testing.T) {
	t.Parallel()

	idx := testIndex()
	s := New(staticProvider(idx))
	s.Update(SetProvince{Value: "P1"})
	s.Update(SetCanton{Value: "C3"})
	require.Equal(t, NotApplicable, s.Selection().Canton)

	s.Update(SetCanton{Value: "C1"})
	s.Update(SetDistrict{Value: "D4"})
	require.Equal(t, NotApplicable, s.Selection().District)

	s.Update(SetProvince{Value: "Atlantis"})
	require.Equal(t, NotApplicable, s.Selection().Province)
	assertConsistent(t, idx, s.Selection())
}

func TestSentinelProvinceOffersNothing(t *testing.T) {
	t.Parallel()

	s := New(staticProvider(testIndex()))
	s.Update(SetProvince{Value: "P1"})
	s.Update(SetProvince{Value: NotApplicable})
	require.Equal(t, []string{NotApplicable}, s.Options().Cantons)
}

func TestIndexNotLoadedYet(t *testing.T) {
	t.Parallel()

	var idx *geo.Index
	s := New(func() *geo.Index { return idx })
	s.Update(SetProvince{Value: "P1"})
	require.Equal(t, "P1", s.Selection().Province)
	require.Equal(t, []string{NotApplicable}, s.Options().Cantons)

	idx = testIndex()
	s.Update(IndexLoaded{Index: idx})
	require.Equal(t, []string{NotApplicable, "C1", "C2"}, s.Options().Cantons)
	require.Equal(t, []string{NotApplicable, "P1", "P2"}, s.Options().Provinces)
}

func TestRestoreReplaysCascade(t *testing.T) {
	t.Parallel()

	idx := testIndex()
	s := New(staticProvider(idx))
	s.Restore(Selection{Province: "P1", Canton: "C2", District: "D3"})
	require.Equal(t, Selection{Province: "P1", Canton: "C2", District: "D3"}, s.Selection())

	// A stale district from a different canton cannot survive the round-trip.
	s.Restore(Selection{Province: "P1", Canton: "C2", District: "D1"})
	require.Equal(t, Selection{Province: "P1", Canton: "C2", District: NotApplicable}, s.Selection())

	s.Restore(Selection{})
	require.Equal(t, Selection{Province: NotApplicable, Canton: NotApplicable, District: NotApplicable}, s.Selection())
}

func TestConsistencyAfterEveryMessage(t *testing.T) {
	t.Parallel()

	idx := testIndex()
	s := New(staticProvider(idx))
	msgs := []Msg{
		SetProvince{Value: "P1"},
		SetCanton{Value: "C1"},
		SetDistrict{Value: "D1"},
		SetCanton{Value: "C3"},
		SetDistrict{Value: "D3"},
		SetProvince{Value: "P2"},
		SetDistrict{Value: "D4"},
		SetCanton{Value: "C3"},
		SetDistrict{Value: "D4"},
		IndexLoaded{Index: geo.Build([]geo.Entry{{Province: "P2", Canton: "C9", District: "D9"}})},
	}
	for _, msg := range msgs {
		s.Update(msg)
		assertConsistent(t, s.index, s.Selection())
	}
	require.Equal(t, Selection{Province: "P2", Canton: NotApplicable, District: NotApplicable}, s.Selection())
}

func TestSelectionComplete(t *testing.T) {
	t.Parallel()

	require.False(t, Selection{}.Complete())
	require.False(t, Selection{Province: "P1", Canton: "C1"}.Complete())
	require.True(t, Selection{Province: "P1", Canton: "C1", District: "D1"}.Complete())
}
