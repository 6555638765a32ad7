package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mediashelf/internal/content"
	"mediashelf/internal/services"
)

var (
	// ErrIndexOutOfRange is wrapped by operations given a position that is not
	// in the working list.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrExcluded is wrapped when selecting an excluded item.
	ErrExcluded = errors.New("item is excluded")
)

// IndexSet is a set of working-list positions.
type IndexSet map[int]struct{}

// NewIndexSet builds a set from indices.
func NewIndexSet(indices ...int) IndexSet {
	set := make(IndexSet, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

func (s IndexSet) add(i int)    { s[i] = struct{}{} }
func (s IndexSet) remove(i int) { delete(s, i) }

// Sorted returns the members in ascending order.
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (s IndexSet) clone() IndexSet {
	out := make(IndexSet, len(s))
	for i := range s {
		out[i] = struct{}{}
	}
	return out
}

// exclusionMemory records what an item looked like before it was excluded so
// restoring it puts it back.
type exclusionMemory struct {
	selected  bool
	collapsed bool
}

// ItemPatch is a user edit. Nil fields are left alone; an empty string clears
// an optional field.
type ItemPatch struct {
	Title            *string
	TitleLocalized   *string
	Creator          *string
	CreatorLocalized *string
	Review           *string
	Rating           *float64
	ClearRating      bool
}

// State is the working set of one collection session. Every index in
// Selected, Excluded, Collapsed, and Processed refers to a position in Items;
// Selected and Excluded never share a member.
type State struct {
	Items     []content.ExtractedItem
	Selected  IndexSet
	Excluded  IndexSet
	Collapsed IndexSet
	Processed map[int]content.ProcessedItem
	// SourceURL is the page the items were extracted from, if any.
	SourceURL string

	memory map[int]exclusionMemory
}

// NewState starts a working set with every item selected.
func NewState(items []content.ExtractedItem, sourceURL string) *State {
	st := &State{
		Items:     make([]content.ExtractedItem, len(items)),
		Selected:  make(IndexSet, len(items)),
		Excluded:  IndexSet{},
		Collapsed: IndexSet{},
		Processed: map[int]content.ProcessedItem{},
		SourceURL: sourceURL,
		memory:    map[int]exclusionMemory{},
	}
	for i, item := range items {
		item = item.Clone()
		item.EnsureID()
		st.Items[i] = item
		st.Selected.add(i)
	}
	return st
}

// Len is the number of items in the working list.
func (s *State) Len() int { return len(s.Items) }

func (s *State) checkIndex(op string, i int) error {
	if i < 0 || i >= len(s.Items) {
		return services.Wrap(services.ErrValidation, "session", op, fmt.Sprintf("no item at index %d", i), ErrIndexOutOfRange)
	}
	return nil
}

// ToggleSelect flips the selection of item i. Excluded items cannot be
// selected.
func (s *State) ToggleSelect(i int) error {
	if err := s.checkIndex("toggle select", i); err != nil {
		return err
	}
	if s.Selected.Has(i) {
		s.Selected.remove(i)
		return nil
	}
	if s.Excluded.Has(i) {
		return services.Wrap(services.ErrValidation, "session", "toggle select", fmt.Sprintf("item %d is excluded; restore it first", i), ErrExcluded)
	}
	s.Selected.add(i)
	return nil
}

// ToggleSelectAll selects every non-excluded item unless all of them are
// already selected, in which case the selection is cleared.
func (s *State) ToggleSelectAll() {
	eligible := 0
	allSelected := true
	for i := range s.Items {
		if s.Excluded.Has(i) {
			continue
		}
		eligible++
		if !s.Selected.Has(i) {
			allSelected = false
		}
	}
	if eligible == 0 || allSelected {
		s.Selected = IndexSet{}
		return
	}
	for i := range s.Items {
		if !s.Excluded.Has(i) {
			s.Selected.add(i)
		}
	}
}

// ToggleExclude excludes item i, collapsing and deselecting it, or restores
// an excluded item to its selection and collapse state from before exclusion.
func (s *State) ToggleExclude(i int) error {
	if err := s.checkIndex("toggle exclude", i); err != nil {
		return err
	}
	if s.Excluded.Has(i) {
		s.Excluded.remove(i)
		mem := s.memory[i]
		delete(s.memory, i)
		if mem.selected {
			s.Selected.add(i)
		}
		if !mem.collapsed {
			s.Collapsed.remove(i)
		}
		return nil
	}
	s.memory[i] = exclusionMemory{selected: s.Selected.Has(i), collapsed: s.Collapsed.Has(i)}
	s.Excluded.add(i)
	s.Collapsed.add(i)
	s.Selected.remove(i)
	return nil
}

// ToggleCollapse flips the presentation-only collapsed flag of item i.
func (s *State) ToggleCollapse(i int) error {
	if err := s.checkIndex("toggle collapse", i); err != nil {
		return err
	}
	if s.Collapsed.Has(i) {
		s.Collapsed.remove(i)
	} else {
		s.Collapsed.add(i)
	}
	return nil
}

// ApplyMatchChoice records candidate as the selected match of item i and
// mirrors its title and creator onto the item. A blank candidate creator
// leaves the item's creator alone.
func (s *State) ApplyMatchChoice(i int, candidate content.MatchCandidate, source content.MatchSource, query string) error {
	if err := s.checkIndex("apply match", i); err != nil {
		return err
	}
	processed, ok := s.Processed[i]
	if !ok {
		processed = content.ProcessedItem{Status: content.DefaultStatus}
	}
	chosen := candidate.Clone()
	processed.SelectedMatch = &chosen
	processed.MatchSource = source
	if q := strings.TrimSpace(query); q != "" {
		processed.LastSearchQuery = q
	}
	if processed.Status == "" {
		processed.Status = content.DefaultStatus
	}
	s.Processed[i] = processed

	item := &s.Items[i]
	if title := strings.TrimSpace(candidate.Title); title != "" {
		item.TitleLocalized = title
	}
	if creator := strings.TrimSpace(candidate.Creator); creator != "" {
		item.Creator = creator
	}
	return nil
}

// UpdateItem applies a user edit to item i.
func (s *State) UpdateItem(i int, patch ItemPatch) error {
	if err := s.checkIndex("update item", i); err != nil {
		return err
	}
	item := s.Items[i]
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return services.Wrap(services.ErrValidation, "session", "update item", "title must not be empty", nil)
		}
		item.Title = title
	}
	if patch.TitleLocalized != nil {
		item.TitleLocalized = strings.TrimSpace(*patch.TitleLocalized)
	}
	if patch.Creator != nil {
		item.Creator = strings.TrimSpace(*patch.Creator)
	}
	if patch.CreatorLocalized != nil {
		item.CreatorLocalized = strings.TrimSpace(*patch.CreatorLocalized)
	}
	if patch.Review != nil {
		item.Review = *patch.Review
	}
	switch {
	case patch.ClearRating:
		item.Rating = nil
	case patch.Rating != nil:
		item.Rating = content.NormalizeRating(patch.Rating)
	}
	s.Items[i] = item
	return nil
}

// SetStatus sets the workflow status of item i's match result.
func (s *State) SetStatus(i int, status content.Status) error {
	if err := s.checkIndex("set status", i); err != nil {
		return err
	}
	processed, ok := s.Processed[i]
	if !ok {
		return services.Wrap(services.ErrValidation, "session", "set status", fmt.Sprintf("item %d has not been matched", i), services.ErrNotFound)
	}
	processed.Status = content.NormalizeStatus(string(status))
	s.Processed[i] = processed
	return nil
}

// MergeProcessed stores orchestration results. Keys outside the working list
// are ignored.
func (s *State) MergeProcessed(results map[int]content.ProcessedItem) int {
	merged := 0
	for i, processed := range results {
		if i < 0 || i >= len(s.Items) {
			continue
		}
		s.Processed[i] = processed.Clone()
		merged++
	}
	return merged
}

// DisplayOrder lists non-excluded indices then excluded indices, each group in
// working-list order.
func (s *State) DisplayOrder() []int {
	order := make([]int, 0, len(s.Items))
	var excluded []int
	for i := range s.Items {
		if s.Excluded.Has(i) {
			excluded = append(excluded, i)
			continue
		}
		order = append(order, i)
	}
	return append(order, excluded...)
}

// SelectedIndices returns the selected positions in ascending order.
func (s *State) SelectedIndices() []int {
	return s.Selected.Sorted()
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	out := &State{
		Items:     make([]content.ExtractedItem, len(s.Items)),
		Selected:  s.Selected.clone(),
		Excluded:  s.Excluded.clone(),
		Collapsed: s.Collapsed.clone(),
		Processed: make(map[int]content.ProcessedItem, len(s.Processed)),
		SourceURL: s.SourceURL,
		memory:    make(map[int]exclusionMemory, len(s.memory)),
	}
	for i, item := range s.Items {
		out.Items[i] = item.Clone()
	}
	for i, processed := range s.Processed {
		out.Processed[i] = processed.Clone()
	}
	for i, mem := range s.memory {
		out.memory[i] = mem
	}
	return out
}
