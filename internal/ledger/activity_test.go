package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybooks/tally/internal/model"
)

func TestActivity_RunningBalance(t *testing.T) {
	accts := fixtureAccounts()
	cash := accts[0]

	got := Activity(cash, fixtureTransactions(), Window{})
	require.Len(t, got.Lines, 3)

	assert.Equal(t, "t1", got.Lines[0].TransactionID)
	assertDec(t, "1000", got.Lines[0].Balance)
	assert.Equal(t, "t3", got.Lines[1].TransactionID)
	assertDec(t, "1500", got.Lines[1].Balance)
	assert.Equal(t, "t6", got.Lines[2].TransactionID)
	assertDec(t, "1300", got.Lines[2].Balance)

	assertDec(t, "0", got.Opening)
	assertDec(t, "1300", got.Closing)
}

func TestActivity_SortsByDateThenID(t *testing.T) {
	acct := model.Account{ID: "a", Type: model.AccountTypeAsset}
	txns := []model.Transaction{
		{ID: "z", AccountID: "a", Debit: dec("1"), Date: date(2024, 1, 2)},
		{ID: "b", AccountID: "a", Debit: dec("1"), Date: date(2024, 1, 1)},
		{ID: "a", AccountID: "a", Debit: dec("1"), Date: date(2024, 1, 2)},
	}
	got := Activity(acct, txns, Window{})
	require.Len(t, got.Lines, 3)
	assert.Equal(t, []string{"b", "a", "z"}, []string{got.Lines[0].TransactionID, got.Lines[1].TransactionID, got.Lines[2].TransactionID})
}

func TestActivity_MatchesComputeBalances(t *testing.T) {
	accts := fixtureAccounts()
	accts[0].InitialBalance = dec("75")
	txns := fixtureTransactions()
	w := window(t, "2024-01-05", "2024-01-31")

	balances := ComputeBalances(accts, txns, w)
	for _, a := range accts {
		act := Activity(a, txns, w)
		assert.True(t, balances[a.ID].Ending.Equal(act.Closing), "closing for %s", a.ID)
	}
}

func TestActivity_CreditNormal(t *testing.T) {
	acct := model.Account{ID: "loan", Type: model.AccountTypeLiability, InitialBalance: dec("500")}
	txns := []model.Transaction{
		{ID: "1", AccountID: "loan", Debit: dec("100"), Date: date(2024, 1, 1)},
		{ID: "2", AccountID: "other", Debit: dec("100"), Date: date(2024, 1, 1)},
	}
	got := Activity(acct, txns, Window{})
	require.Len(t, got.Lines, 1)
	assertDec(t, "400", got.Closing)
}

func TestActivity_Empty(t *testing.T) {
	acct := model.Account{ID: "a", Type: model.AccountTypeAsset, InitialBalance: dec("9")}
	got := Activity(acct, nil, Window{})
	assert.Empty(t, got.Lines)
	assertDec(t, "9", got.Closing)
}
