package layout

// Cell is one grid slot. Index is -1 for padding slots with no key.
type Cell struct {
	Row    int
	Column int
	Index  int
}

// Grid places keys left to right, wrapping after ColumnCount columns. Keys
// beyond RowCount rows get extra rows; short layouts are padded so the grid
// always has at least RowCount full rows.
func Grid(l *Layout) []Cell {
	cols := l.ColumnCount()
	total := l.RowCount() * cols
	if len(l.Keys) > total {
		total = ((len(l.Keys) + cols - 1) / cols) * cols
	}

	cells := make([]Cell, 0, total)
	for i := 0; i < total; i++ {
		idx := i
		if i >= len(l.Keys) {
			idx = -1
		}
		cells = append(cells, Cell{Row: i / cols, Column: i % cols, Index: idx})
	}
	return cells
}
