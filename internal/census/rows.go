package census

type row[T any] interface {
	RowID() RowID
	withID(RowID) T
}

func cloneRows[T any](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

func rowIDs[T row[T]](rows []T) []RowID {
	ids := make([]RowID, len(rows))
	for i, r := range rows {
		ids[i] = r.RowID()
	}
	return ids
}

func indexOf[T row[T]](rows []T, id RowID) int {
	for i, r := range rows {
		if r.RowID() == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](rows []T, i int) []T {
	out := make([]T, 0, len(rows)-1)
	out = append(out, rows[:i]...)
	return append(out, rows[i+1:]...)
}

func assignIDs[T row[T]](rows []T, next func() RowID) []T {
	out := cloneRows(rows)
	for i, r := range out {
		if r.RowID() == 0 {
			out[i] = r.withID(next())
		}
	}
	return out
}

func clearPlaceholders[T row[T]](rows []T) []T {
	out := cloneRows(rows)
	for i, r := range out {
		if r.RowID().Placeholder() {
			out[i] = r.withID(0)
		}
	}
	return out
}
