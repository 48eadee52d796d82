package order

// DefaultJournalSize bounds how many approved transactions a session keeps.
const DefaultJournalSize = 100

// journal keeps the most recent approved transactions, oldest first.
type journal struct {
	limit   int
	entries []Transaction
}

func newJournal(limit int) *journal {
	if limit <= 0 {
		limit = DefaultJournalSize
	}
	return &journal{limit: limit}
}

func (j *journal) record(tx Transaction) {
	j.entries = append(j.entries, tx)
	if overflow := len(j.entries) - j.limit; overflow > 0 {
		j.entries = append([]Transaction(nil), j.entries[overflow:]...)
	}
}

func (j *journal) list() []Transaction {
	out := make([]Transaction, len(j.entries))
	for i, tx := range j.entries {
		tx.Lines = append([]CartLine(nil), tx.Lines...)
		out[i] = tx
	}
	return out
}
