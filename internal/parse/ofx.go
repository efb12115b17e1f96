package parse

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/service"
)

// Canonical column names emitted for OFX statements. The column
// mapper recognizes these directly, including the bank FITID as the
// transaction reference.
const (
	ofxColDate        = "Date"
	ofxColDescription = "Description"
	ofxColAmount      = "Amount"
	ofxColType        = "Type"
	ofxColReference   = "Reference"
)

// OFXParser parses OFX/QFX statement downloads.
type OFXParser struct{}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Extensions returns the file extensions this parser handles.
func (p *OFXParser) Extensions() []string { return []string{"ofx", "qfx"} }

var (
	ofxSeverityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	ofxTagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in real-world OFX
// files: leading whitespace before the header, mixed-case SEVERITY
// values, and SGML-style tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = ofxSeverityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = ofxTagFixRegex.ReplaceAllString(content, "$1>")
	return content
}

// Parse reads an OFX/QFX document into the canonical column layout.
func (p *OFXParser) Parse(_ context.Context, r io.Reader) (*service.Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, common.NewUserError("Could not read OFX file", fmt.Errorf("%w: %v", common.ErrParseFailed, err))
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, common.NewUserError("Could not parse OFX file", fmt.Errorf("%w: %v", common.ErrParseFailed, err))
	}

	stmt := &service.Statement{
		Headers: []string{ofxColDate, ofxColDescription, ofxColAmount, ofxColType, ofxColReference},
	}

	for _, msg := range resp.Bank {
		if bank, ok := msg.(*ofxgo.StatementResponse); ok && bank.BankTranList != nil {
			appendOFXRows(stmt, bank.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if cc, ok := msg.(*ofxgo.CCStatementResponse); ok && cc.BankTranList != nil {
			appendOFXRows(stmt, cc.BankTranList.Transactions)
		}
	}

	return stmt, nil
}

func appendOFXRows(stmt *service.Statement, txns []ofxgo.Transaction) {
	for _, tx := range txns {
		description := strings.TrimSpace(string(tx.Name))
		if memo := strings.TrimSpace(string(tx.Memo)); description == "" {
			description = memo
		}

		reference := string(tx.FiTID)
		if reference == "" && tx.CheckNum != "" {
			reference = string(tx.CheckNum)
		}

		stmt.Rows = append(stmt.Rows, map[string]string{
			ofxColDate:        tx.DtPosted.Format("2006-01-02"),
			ofxColDescription: description,
			ofxColAmount:      tx.TrnAmt.String(),
			ofxColType:        fmt.Sprintf("%v", tx.TrnType),
			ofxColReference:   reference,
		})
	}
}
