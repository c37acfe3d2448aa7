// Package selector implements the province, canton and district cascade used
// by the issuer and provider address forms.
package selector

import (
	"strings"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/geo"
)

// NotApplicable is the sentinel selection offered first at every level.
const NotApplicable = "No aplica"

// Selection holds the chosen value at each level.
type Selection struct {
	Province string `json:"provincia"`
	Canton   string `json:"canton"`
	District string `json:"distrito"`
}

// Normalize replaces blank levels with the sentinel.
func (s Selection) Normalize() Selection {
	return Selection{
		Province: normalize(s.Province),
		Canton:   normalize(s.Canton),
		District: normalize(s.District),
	}
}

// Complete reports whether every level holds a concrete value.
func (s Selection) Complete() bool {
	n := s.Normalize()
	return n.Province != NotApplicable && n.Canton != NotApplicable && n.District != NotApplicable
}

// Options are the values offered at each level. The sentinel is always first.
type Options struct {
	Provinces []string
	Cantons   []string
	Districts []string
}

// Msg is a selector update.
type Msg interface {
	isMsg()
}

// SetProvince selects a province and clears the lower levels.
type SetProvince struct{ Value string }

// SetCanton selects a canton in the current province and clears the district.
type SetCanton struct{ Value string }

// SetDistrict selects a district in the current canton.
type SetDistrict struct{ Value string }

// IndexLoaded signals that the reference index changed.
type IndexLoaded struct{ Index *geo.Index }

func (SetProvince) isMsg() {}
func (SetCanton) isMsg()   {}
func (SetDistrict) isMsg() {}
func (IndexLoaded) isMsg() {}

// IndexProvider returns the current reference index. It may return nil
// while the first load is still in flight.
type IndexProvider func() *geo.Index

// Selector keeps a selection consistent with the reference index.
type Selector struct {
	provider  IndexProvider
	index     *geo.Index
	selection Selection
	cantons   []string
	districts []string
}

// New returns a selector with every level at the sentinel.
func New(provider IndexProvider) *Selector {
	s := &Selector{
		provider:  provider,
		selection: Selection{}.Normalize(),
	}
	s.index = s.currentIndex()
	return s
}

// Update applies a single message.
func (s *Selector) Update(msg Msg) {
	switch m := msg.(type) {
	case SetProvince:
		s.index = s.currentIndex()
		s.setProvince(m.Value)
	case SetCanton:
		s.index = s.currentIndex()
		s.setCanton(m.Value)
	case SetDistrict:
		s.index = s.currentIndex()
		s.setDistrict(m.Value)
	case IndexLoaded:
		s.index = m.Index
		current := s.selection
		s.setProvince(current.Province)
		s.setCanton(current.Canton)
		s.setDistrict(current.District)
	}
}

// Restore replays a submitted selection level by level.
func (s *Selector) Restore(sel Selection) {
	s.Update(SetProvince{Value: sel.Province})
	s.Update(SetCanton{Value: sel.Canton})
	s.Update(SetDistrict{Value: sel.District})
}

// Selection returns the current selection.
func (s *Selector) Selection() Selection {
	return s.selection
}

// Options returns the offered values, sentinel first.
func (s *Selector) Options() Options {
	var provinces []string
	if s.index != nil {
		provinces = s.index.Provinces()
	}
	return Options{
		Provinces: withSentinel(provinces),
		Cantons:   withSentinel(s.cantons),
		Districts: withSentinel(s.districts),
	}
}

func (s *Selector) setProvince(value string) {
	value = normalize(value)
	// While the index is still empty the province is kept so IndexLoaded can
	// derive its cantons later.
	if value != NotApplicable && !s.index.IsEmpty() && !s.index.HasProvince(value) {
		value = NotApplicable
	}
	s.selection = Selection{Province: value, Canton: NotApplicable, District: NotApplicable}
	s.cantons = nil
	s.districts = nil
	if value != NotApplicable {
		s.cantons = s.index.Cantons(value)
	}
}

func (s *Selector) setCanton(value string) {
	value = normalize(value)
	if value != NotApplicable && !s.index.HasCanton(s.selection.Province, value) {
		value = NotApplicable
	}
	s.selection.Canton = value
	s.selection.District = NotApplicable
	s.districts = nil
	if value != NotApplicable {
		s.districts = s.index.Districts(s.selection.Province, value)
	}
}

func (s *Selector) setDistrict(value string) {
	value = normalize(value)
	if value != NotApplicable && !s.index.HasDistrict(s.selection.Province, s.selection.Canton, value) {
		value = NotApplicable
	}
	s.selection.District = value
}

func (s *Selector) currentIndex() *geo.Index {
	if s.provider == nil {
		return s.index
	}
	if idx := s.provider(); idx != nil {
		return idx
	}
	return s.index
}

func normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return NotApplicable
	}
	return value
}

func withSentinel(values []string) []string {
	out := make([]string, 0, len(values)+1)
	out = append(out, NotApplicable)
	return append(out, values...)
}
