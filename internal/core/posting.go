package core

// Posting is a signed balance adjustment against one account. Every
// balance mutation in the system is expressed as a posting derived
// from a journal transaction; nothing else touches CurrentBalance.
type Posting struct {
	AccountID string
	Delta     int64 // cents, signed
}

// Postings derives the balance adjustments a transaction implies.
//
//	income      +amount on source (if an account is referenced)
//	expense     -amount on source (if an account is referenced)
//	investment  -amount on source, +amount on destination (each if set)
//	transfer    -amount on source, +amount on destination (both required)
//
// Both sides of a transfer or investment move must be applied in one
// atomic storage operation; callers never apply them one at a time.
func (t Transaction) Postings() ([]Posting, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	a := t.Amount.Cents
	switch t.Type {
	case Income:
		if t.AccountID == "" {
			return nil, nil
		}
		return []Posting{{AccountID: t.AccountID, Delta: a}}, nil
	case Expense:
		if t.AccountID == "" {
			return nil, nil
		}
		return []Posting{{AccountID: t.AccountID, Delta: -a}}, nil
	case Investment:
		var ps []Posting
		if t.AccountID != "" {
			ps = append(ps, Posting{AccountID: t.AccountID, Delta: -a})
		}
		if t.ToAccountID != "" {
			ps = append(ps, Posting{AccountID: t.ToAccountID, Delta: a})
		}
		return ps, nil
	case Transfer:
		return []Posting{
			{AccountID: t.AccountID, Delta: -a},
			{AccountID: t.ToAccountID, Delta: a},
		}, nil
	}
	return nil, ErrInvalidType
}
