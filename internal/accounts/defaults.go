package accounts

import "github.com/tallybooks/tally/internal/model"

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "retail":
		return append(smallBusinessChart(), retailAccounts()...)
	default:
		return smallBusinessChart()
	}
}

func acct(number, name string, typ model.AccountType, sub, desc string) model.Account {
	return model.Account{
		ID:          number,
		Number:      number,
		Name:        name,
		Type:        typ,
		Subcategory: sub,
		NormalSide:  typ.DefaultNormalSide(),
		Active:      true,
		Description: desc,
	}
}

func smallBusinessChart() []model.Account {
	return []model.Account{
		acct("1010", "Business Checking", model.AccountTypeAsset, "Cash", "Primary checking account"),
		acct("1020", "Business Savings", model.AccountTypeAsset, "Cash", "Savings account"),
		acct("1200", "Accounts Receivable", model.AccountTypeAsset, "Receivables", "Amounts owed by customers"),
		acct("2010", "Accounts Payable", model.AccountTypeLiability, "Payables", "Amounts owed to suppliers"),
		acct("2100", "Credit Card", model.AccountTypeLiability, "Short-term Debt", "Business credit card"),
		acct("3010", "Owner's Capital", model.AccountTypeEquity, "Contributed Capital", "Owner contributions"),
		acct("3900", "Owner's Drawings", model.AccountTypeEquity, "Distributions", "Owner withdrawals"),
		acct("4010", "Service Revenue", model.AccountTypeRevenue, "Operating Revenue", ""),
		acct("4020", "Product Revenue", model.AccountTypeRevenue, "Operating Revenue", ""),
		acct("5010", "Advertising & Marketing", model.AccountTypeExpense, "Operating Expenses", "Advertising costs"),
		acct("5020", "Software & SaaS", model.AccountTypeExpense, "Operating Expenses", "Software subscriptions"),
		acct("5030", "Office Supplies", model.AccountTypeExpense, "Operating Expenses", "Office supplies and expenses"),
		acct("5040", "Professional Services", model.AccountTypeExpense, "Operating Expenses", "Legal, accounting, consulting"),
		acct("5050", "Rent", model.AccountTypeExpense, "Operating Expenses", "Office rent"),
	}
}

func retailAccounts() []model.Account {
	return []model.Account{
		acct("1300", "Merchandise Inventory", model.AccountTypeAsset, "Inventory", "Goods held for sale"),
		acct("5100", "Cost of Goods Sold", model.AccountTypeExpense, "Cost of Sales", "Inventory sold"),
	}
}
