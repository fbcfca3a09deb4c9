package enums

// SelectionState is the tri-state summary of a group or cart selection.
type SelectionState string

const (
	SelectionNone SelectionState = "none"
	SelectionSome SelectionState = "some"
	SelectionAll  SelectionState = "all"
)

// String implements fmt.Stringer.
func (s SelectionState) String() string {
	return string(s)
}

// SelectionStateOf derives the tri-state from a selected count over a total.
// An empty set is never "all".
func SelectionStateOf(selected, total int) SelectionState {
	switch {
	case total == 0 || selected == 0:
		return SelectionNone
	case selected >= total:
		return SelectionAll
	default:
		return SelectionSome
	}
}
