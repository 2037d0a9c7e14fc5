package accounts

import (
	"strings"

	"github.com/tallybooks/tally/internal/model"
)

// RawAccount is an account document as exported from a document store.
// Field types are loose: numbers may arrive as strings and vice versa.
type RawAccount struct {
	ID             model.FlexString `json:"id"`
	Name           model.FlexString `json:"name"`
	Number         model.FlexString `json:"number"`
	Category       model.FlexString `json:"category"`
	Subcategory    model.FlexString `json:"subcategory"`
	NormalSide     model.FlexString `json:"normalSide"`
	InitialBalance model.FlexAmount `json:"initialBalance"`
	Active         model.FlexBool   `json:"active"`
	Description    model.FlexString `json:"description"`
}

// Normalize converts raw account documents into canonical accounts: the
// category is lowercased into Type, the number is kept as a string, the
// normal side is lowercased or defaulted from the category, and an absent
// or unreadable active flag means active. It never fails.
func Normalize(raw []RawAccount) []model.Account {
	out := make([]model.Account, 0, len(raw))
	for _, r := range raw {
		typ := model.AccountType(strings.ToLower(strings.TrimSpace(string(r.Category))))
		side := model.NormalSide(strings.ToLower(strings.TrimSpace(string(r.NormalSide))))
		if side != model.NormalSideDebit && side != model.NormalSideCredit {
			side = typ.DefaultNormalSide()
		}
		active := true
		if r.Active.Valid {
			active = r.Active.Bool
		}
		out = append(out, model.Account{
			ID:             string(r.ID),
			Number:         string(r.Number),
			Name:           string(r.Name),
			Type:           typ,
			Subcategory:    string(r.Subcategory),
			NormalSide:     side,
			InitialBalance: r.InitialBalance.Decimal,
			Active:         active,
			Description:    string(r.Description),
		})
	}
	return out
}
