// Package treasury records ledger movements and builds account statements.
package treasury

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
	"github.com/fastygo/erp-audit/usecase"
)

const ActionRecordEntry = "Record Entry"

// Statement is the running-balance extract of one account.
type Statement struct {
	AccountID    string                 `json:"account_id"`
	Lines        []domain.StatementLine `json:"lines"`
	DebitCents   int64                  `json:"debit_cents"`
	CreditCents  int64                  `json:"credit_cents"`
	ClosingCents int64                  `json:"closing_cents"`
}

type UseCase struct {
	ledger repository.LedgerRepository
	audit  usecase.ActionLogger
	logger *zap.Logger
}

func New(ledger repository.LedgerRepository, audit usecase.ActionLogger, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = usecase.NopActionLogger{}
	}
	return &UseCase{ledger: ledger, audit: audit, logger: logger}
}

func (uc *UseCase) RecordEntry(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	entry.ID = ""
	if entry.DebitCents == 0 && entry.CreditCents == 0 {
		return nil, domain.Invalidf("an entry needs a debit or a credit")
	}
	if err := uc.ledger.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	uc.audit.LogAction(ctx, ActionRecordEntry, domain.ModuleTreasury,
		fmt.Sprintf("%s %s D%d C%d", entry.AccountID, entry.DocumentNo, entry.DebitCents, entry.CreditCents))
	return entry, nil
}

// Statement folds the account's entries into a running balance. An account
// without entries yields no lines.
func (uc *UseCase) Statement(ctx context.Context, accountID string) (*Statement, error) {
	if accountID == "" {
		return nil, domain.Invalidf("account id is required")
	}
	entries, err := uc.ledger.ListEntries(ctx, accountID)
	if err != nil {
		return nil, err
	}
	lines := domain.RunningBalance(entries)
	statement := &Statement{
		AccountID:    accountID,
		Lines:        lines,
		ClosingCents: domain.ClosingBalance(lines),
	}
	for _, e := range entries {
		statement.DebitCents += e.DebitCents
		statement.CreditCents += e.CreditCents
	}
	return statement, nil
}
