package produce

import "strings"

// Ledger is the ordered history of analyzed produce, unique by
// case-insensitive name. It is not safe for concurrent use; the owning
// session serializes access.
type Ledger struct {
	records []Record
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Upsert updates the record whose name matches r.Name case-insensitively, or
// appends r. Every field of a matched entry is overwritten, the name included,
// and the entry keeps its position. It returns the entry's index and whether
// it was appended.
func (l *Ledger) Upsert(r Record) (int, bool) {
	for i := range l.records {
		if strings.EqualFold(l.records[i].Name, r.Name) {
			l.records[i] = r
			return i, false
		}
	}
	l.records = append(l.records, r)
	return len(l.records) - 1, true
}

// Get looks up a record by case-insensitive name.
func (l *Ledger) Get(name string) (Record, bool) {
	for _, r := range l.records {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Record{}, false
}

func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of the history in insertion order.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Rows returns the history as table rows in Columns order.
func (l *Ledger) Rows() [][]string {
	rows := make([][]string, len(l.records))
	for i, r := range l.records {
		rows[i] = r.Row()
	}
	return rows
}
