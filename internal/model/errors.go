package model

import "fmt"

// ValidationError marks a malformed raw record or an invalid query
// parameter. It is recovered locally: the offending record is dropped on
// ingestion, or the request is rejected; it is never fatal to the process.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateTransaction checks the invariants every stored transaction must
// hold. Records failing validation never reach the store.
func ValidateTransaction(tx Transaction) error {
	if tx.Price < 0 {
		return &ValidationError{Field: "price", Reason: fmt.Sprintf("negative price %d", tx.Price)}
	}
	if tx.Seller == "" {
		return &ValidationError{Field: "seller", Reason: "empty seller id"}
	}
	if tx.Timestamp <= 0 {
		return &ValidationError{Field: "timestamp", Reason: fmt.Sprintf("non-positive timestamp %d", tx.Timestamp)}
	}
	return validateItem(tx.Item, 0)
}

// maxContentsDepth bounds recursion on container contents. Upstream data
// nests at most one level (shulker boxes); the model allows more, but a
// runaway structure is rejected rather than walked forever.
const maxContentsDepth = 8

func validateItem(it Item, depth int) error {
	if depth > maxContentsDepth {
		return &ValidationError{Field: "item", Reason: "contents nested too deep"}
	}
	if it.BaseID == "" {
		return &ValidationError{Field: "item", Reason: "empty base id"}
	}
	if it.Count <= 0 {
		return &ValidationError{Field: "item", Reason: fmt.Sprintf("non-positive count %d for %s", it.Count, it.BaseID)}
	}
	for _, e := range it.Enchantments {
		if e.ID == "" {
			return &ValidationError{Field: "item", Reason: "enchantment with empty id"}
		}
	}
	for _, inner := range it.Contents {
		if err := validateItem(inner, depth+1); err != nil {
			return err
		}
	}
	return nil
}
