package earnings

// Sequence is a forward-only iterator over the rows of a Session.
//
//	seq := Select(session, field, NonEmpty)
//	for seq.Next() {
//		row := seq.Row()
//	}
//	if err := seq.Err(); err != nil { ... }
type Sequence interface {
	// Next advances to the next selected row, false once exhausted or on error.
	Next() bool
	// Row returns the current row, only valid after Next returned true.
	Row() RawRow
	// Err returns the error that stopped the sequence early, if any.
	Err() error
}

// Select returns the rows of `s` whose `field` satisfies `pred`, in table order.
//
// A session without rows always yields an empty sequence, the predicate is
// never evaluated. Sequences are single pass, call Select again to iterate again.
func Select(s *Session, field int, pred Predicate) Sequence {
	if s.RowCount() == 0 {
		return emptySequence{}
	}
	if field < 0 || field >= s.Schema().Len() {
		return &filterSequence{err: &IndexError{Index: field, Count: s.Schema().Len()}}
	}
	if pred == nil {
		pred = Any
	}
	return &filterSequence{
		session: s,
		field:   field,
		pred:    pred,
		next:    0,
	}
}

type emptySequence struct{}

func (emptySequence) Next() bool {
	return false
}

func (emptySequence) Row() RawRow {
	return nil
}

func (emptySequence) Err() error {
	return nil
}

type filterSequence struct {
	session *Session
	field   int
	pred    Predicate
	next    int
	current RawRow
	err     error
}

func (f *filterSequence) Next() bool {
	f.current = nil
	if f.err != nil {
		return false
	}
	for f.next < f.session.RowCount() {
		row, err := f.session.Row(f.next)
		f.next++
		if err != nil {
			f.err = err
			return false
		}
		if f.pred(row[f.field]) {
			f.current = row
			return true
		}
	}
	return false
}

func (f *filterSequence) Row() RawRow {
	return f.current
}

func (f *filterSequence) Err() error {
	return f.err
}

// Collect drains a sequence into a slice.
func Collect(seq Sequence) ([]RawRow, error) {
	var rows []RawRow
	for seq.Next() {
		rows = append(rows, seq.Row())
	}
	return rows, seq.Err()
}
