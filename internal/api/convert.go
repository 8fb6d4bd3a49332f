package api

import (
	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

// ToModel converts a raw sale record to the stored transaction form.
// Upstream timestamps are epoch milliseconds; the store keeps seconds.
// Structural validation happens here so malformed records never reach the
// store: the returned error is always a *model.ValidationError.
func (r *RawTransaction) ToModel() (model.Transaction, error) {
	tx := model.Transaction{
		ID:        r.ID,
		Timestamp: r.UnixMillisSold / 1000,
		Seller:    r.Seller.Name,
		Price:     r.Price,
		Item:      r.Item.ToModel(),
	}

	if err := model.ValidateTransaction(tx); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

// ToModel converts an upstream item description, recursively for shulker
// contents. Contents order is preserved: upstream serves slots in NBT order
// and distinct layouts trade as distinct items.
func (r *RawItem) ToModel() model.Item {
	item := model.Item{
		BaseID: r.ID,
		Count:  r.Count,
	}

	if len(r.Enchants) > 0 {
		item.Enchantments = make([]model.Enchantment, len(r.Enchants))
		for i, e := range r.Enchants {
			item.Enchantments[i] = model.Enchantment{ID: e.ID, Level: e.Level}
		}
	}

	if r.Trim != nil {
		item.Trim = &model.Trim{Material: r.Trim.Material, Pattern: r.Trim.Pattern}
	}

	if len(r.Contents) > 0 {
		item.Contents = make([]model.Item, len(r.Contents))
		for i, inner := range r.Contents {
			item.Contents[i] = inner.ToModel()
		}
	}

	return item
}
