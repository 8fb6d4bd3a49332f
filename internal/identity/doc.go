// Package identity derives stable grouping keys for item records.
//
// Two items share a key exactly when they are the same tradeable thing:
// same base id, same stack count, same enchantment set, same trim, and
// structurally identical container contents in the same order.
package identity
