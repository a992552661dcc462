package domain

import (
	"sort"
	"time"
)

// LedgerEntry is one debit/credit row of an account (client or bank account).
type LedgerEntry struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Date        time.Time `json:"date"`
	DocumentNo  string    `json:"document_no"`
	Description string    `json:"description,omitempty"`
	DebitCents  int64     `json:"debit_cents"`
	CreditCents int64     `json:"credit_cents"`
}

func (e *LedgerEntry) Validate() error {
	if e == nil || e.AccountID == "" {
		return Invalidf("account id is required")
	}
	if e.DebitCents < 0 || e.CreditCents < 0 {
		return Invalidf("debit and credit must be non-negative")
	}
	return nil
}

// StatementLine is a ledger row with its running balance. The first line of a
// statement is the opening anchor and carries no entry.
type StatementLine struct {
	Opening      bool      `json:"opening,omitempty"`
	Date         time.Time `json:"date"`
	DocumentNo   string    `json:"document_no"`
	Description  string    `json:"description,omitempty"`
	DebitCents   int64     `json:"debit_cents"`
	CreditCents  int64     `json:"credit_cents"`
	BalanceCents int64     `json:"balance_cents"`
}

// OpeningDescription labels the anchor row of every statement.
const OpeningDescription = "Saldo inicial"

// RunningBalance builds a statement for the rows: an opening anchor with
// balance 0 followed by one line per row in ascending date, then document
// number order. No rows yield an empty statement. The input slice is not
// modified.
func RunningBalance(rows []LedgerEntry) []StatementLine {
	if len(rows) == 0 {
		return []StatementLine{}
	}
	ordered := make([]LedgerEntry, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].DocumentNo < ordered[j].DocumentNo
	})

	lines := make([]StatementLine, 0, len(ordered)+1)
	lines = append(lines, StatementLine{
		Opening:     true,
		Date:        ordered[0].Date,
		Description: OpeningDescription,
	})

	var balance int64
	for _, row := range ordered {
		balance += row.DebitCents - row.CreditCents
		lines = append(lines, StatementLine{
			Date:         row.Date,
			DocumentNo:   row.DocumentNo,
			Description:  row.Description,
			DebitCents:   row.DebitCents,
			CreditCents:  row.CreditCents,
			BalanceCents: balance,
		})
	}
	return lines
}

// Movement is the change a statement line applied to the balance, split back
// into a debit or a credit.
type Movement struct {
	DocumentNo  string `json:"document_no"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
	NetCents    int64  `json:"net_cents"`
}

// Reconstruct recovers each row's movement from consecutive balances of a
// statement produced by RunningBalance. A balance step only fixes the net,
// so a positive step becomes a debit and a negative one a credit. Rows that
// carried a single side come back exactly; a row with both sides comes back
// as its net.
func Reconstruct(lines []StatementLine) []Movement {
	if len(lines) <= 1 {
		return nil
	}
	out := make([]Movement, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		m := Movement{
			DocumentNo: lines[i].DocumentNo,
			NetCents:   lines[i].BalanceCents - lines[i-1].BalanceCents,
		}
		if m.NetCents >= 0 {
			m.DebitCents = m.NetCents
		} else {
			m.CreditCents = -m.NetCents
		}
		out = append(out, m)
	}
	return out
}

// ClosingBalance returns the last balance of the statement, 0 when empty.
func ClosingBalance(lines []StatementLine) int64 {
	if len(lines) == 0 {
		return 0
	}
	return lines[len(lines)-1].BalanceCents
}
