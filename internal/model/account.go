package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists the categories in statement order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// Valid reports whether t is one of the five known categories.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// DefaultNormalSide is debit for assets and expenses, credit for everything else.
func (t AccountType) DefaultNormalSide() NormalSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalSideDebit
	default:
		return NormalSideCredit
	}
}

// NormalSide is the side on which an account's balance increases.
type NormalSide string

const (
	NormalSideDebit  NormalSide = "debit"
	NormalSideCredit NormalSide = "credit"
)

// Account is one entry of the chart of accounts.
type Account struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	Subcategory    string          `json:"subcategory,omitempty"`
	NormalSide     NormalSide      `json:"normalSide"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Active         bool            `json:"active"`
	Description    string          `json:"description,omitempty"`
}

// Side returns the explicit normal side, falling back to the category default.
func (a Account) Side() NormalSide {
	switch a.NormalSide {
	case NormalSideDebit, NormalSideCredit:
		return a.NormalSide
	}
	return a.Type.DefaultNormalSide()
}

// IsInventory reports whether the subcategory mentions inventory.
func (a Account) IsInventory() bool {
	return strings.Contains(strings.ToLower(a.Subcategory), "inventory")
}
