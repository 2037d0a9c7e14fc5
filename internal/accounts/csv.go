package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
const Header = "account_id,account_number,account_name,category,subcategory,normal_side,initial_balance,active,description"

const (
	numFields      = 9
	colID          = 0
	colNumber      = 1
	colName        = 2
	colCategory    = 3
	colSubcategory = 4
	colNormalSide  = 5
	colInitial     = 6
	colActive      = 7
	colDesc        = 8
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colNumber] = acct.Number
	row[colName] = acct.Name
	row[colCategory] = string(acct.Type)
	row[colSubcategory] = acct.Subcategory
	row[colNormalSide] = string(acct.NormalSide)
	if !acct.InitialBalance.IsZero() {
		row[colInitial] = acct.InitialBalance.StringFixed(2)
	}
	row[colActive] = strconv.FormatBool(acct.Active)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account. Category and normal
// side are lowercased; an empty normal side takes the category default and
// an empty active column means active.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var initial decimal.Decimal
	if record[colInitial] != "" {
		var err error
		initial, err = decimal.NewFromString(record[colInitial])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing initial_balance %q: %w", record[colInitial], err)
		}
	}

	active := true
	if record[colActive] != "" {
		var err error
		active, err = strconv.ParseBool(record[colActive])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing active %q: %w", record[colActive], err)
		}
	}

	typ := model.AccountType(strings.ToLower(strings.TrimSpace(record[colCategory])))
	side := model.NormalSide(strings.ToLower(strings.TrimSpace(record[colNormalSide])))
	if side == "" {
		side = typ.DefaultNormalSide()
	}

	return model.Account{
		ID:             record[colID],
		Number:         strings.TrimSpace(record[colNumber]),
		Name:           record[colName],
		Type:           typ,
		Subcategory:    record[colSubcategory],
		NormalSide:     side,
		InitialBalance: initial,
		Active:         active,
		Description:    record[colDesc],
	}, nil
}
