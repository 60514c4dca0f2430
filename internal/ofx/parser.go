// Package ofx turns bank and credit-card statements into movement drafts.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/finanzas/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Draft is a statement line ready to be created as a movement.
type Draft struct {
	AccountID string
	// TrnType is the OFX transaction type, e.g. DEBIT, CHECK, ATM.
	TrnType string
	Input   model.MovementInput
}

// Options controls how statement lines become movements.
type Options struct {
	// DefaultCurrency is used when the statement's currency is not supported.
	DefaultCurrency model.Currency
	// CategoryID is assigned to every draft.
	CategoryID int64
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
	opts   Options
}

// NewParser creates a new OFX parser.
func NewParser(opts Options) *Parser {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = model.CurrencyARS
	}
	return &Parser{
		opts:   opts,
		logger: slog.Default().With("component", "ofx"),
	}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket on bare tags.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into movement drafts in statement order.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]Draft, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var drafts []Draft
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		drafts = append(drafts, p.convertList(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID), stmt.CurDef.String())...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		drafts = append(drafts, p.convertList(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID), stmt.CurDef.String())...)
	}

	p.logger.Info("parsed OFX file",
		"drafts", len(drafts),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return drafts, nil
}

func (p *Parser) convertList(txs []ofxgo.Transaction, accountID, currency string) []Draft {
	out := make([]Draft, 0, len(txs))
	for _, tx := range txs {
		d, err := p.convertTransaction(tx, accountID, currency)
		if err != nil {
			p.logger.Warn("skipping statement line",
				"fitid", string(tx.FiTID),
				"error", err)
			continue
		}
		out = append(out, d)
	}
	return out
}

// convertTransaction maps a statement line: credits become INGRESO, debits
// EGRESO, and the amount is always positive.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, accountID, currency string) (Draft, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		return Draft{}, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.IsZero() {
		return Draft{}, fmt.Errorf("zero amount")
	}

	movementType := model.MovementIncome
	if amount.IsNegative() {
		movementType = model.MovementExpense
	}

	cur := model.Currency(strings.ToUpper(currency))
	if !cur.Valid() {
		cur = p.opts.DefaultCurrency
	}

	description := p.extractDescription(tx)
	if description == "" {
		description = tx.TrnType.String()
	}

	return Draft{
		AccountID: accountID,
		TrnType:   tx.TrnType.String(),
		Input: model.MovementInput{
			Description:  description,
			Amount:       amount.Abs(),
			MovementType: movementType,
			Currency:     cur,
			Date:         tx.DtPosted.Time.Format("2006-01-02"),
			Reference:    string(tx.FiTID),
			CategoryID:   p.opts.CategoryID,
		},
	}, nil
}

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
	"COMPRA CON TARJETA DE DEBITO ",
	"COMPRA ",
	"DEBITO AUTOMATICO ",
	"DEB. AUTOM. ",
	"TRANSFERENCIA ",
}

// extractDescription tries to get a clean counterparty name from OFX data.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE", "COMPRA", "DEBITO", "CREDITO":
		return true
	}
	return false
}

// GetAccounts extracts the unique account IDs in the file, sorted.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
