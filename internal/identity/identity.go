package identity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

// Field separators. Minecraft-style ids are [a-z0-9_:.-], so none of these
// characters appear in upstream data; the encoding stays injective.
const (
	fieldSep   = "|"
	listSep    = ","
	noTrim     = "-"
	noEnchants = "-"
)

// Key returns the canonical identity key for an item. Deterministic, pure,
// and total for items that passed model validation. Enchantment input order
// does not matter; container contents order does.
func Key(item model.Item) string {
	var b strings.Builder
	writeKey(&b, item)
	return b.String()
}

func writeKey(b *strings.Builder, item model.Item) {
	b.WriteString(item.BaseID)
	b.WriteString(fieldSep)
	b.WriteString(strconv.Itoa(item.Count))
	b.WriteString(fieldSep)
	writeEnchantments(b, item.Enchantments)
	b.WriteString(fieldSep)
	writeTrim(b, item.Trim)
	b.WriteString(fieldSep)
	writeContents(b, item.Contents)
}

func writeEnchantments(b *strings.Builder, enchants []model.Enchantment) {
	if len(enchants) == 0 {
		b.WriteString(noEnchants)
		return
	}

	// Sort a copy by enchant id so input order never leaks into the key.
	// Duplicate ids tie-break on level to keep the sort deterministic.
	sorted := make([]model.Enchantment, len(enchants))
	copy(sorted, enchants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ID != sorted[j].ID {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Level < sorted[j].Level
	})

	for i, e := range sorted {
		if i > 0 {
			b.WriteString(listSep)
		}
		b.WriteString(e.ID)
		b.WriteString("@")
		b.WriteString(strconv.Itoa(e.Level))
	}
}

func writeTrim(b *strings.Builder, trim *model.Trim) {
	if trim == nil {
		b.WriteString(noTrim)
		return
	}
	b.WriteString(trim.Material)
	b.WriteString("/")
	b.WriteString(trim.Pattern)
}

func writeContents(b *strings.Builder, contents []model.Item) {
	b.WriteString("[")
	for i, inner := range contents {
		if i > 0 {
			b.WriteString(listSep)
		}
		writeKey(b, inner)
	}
	b.WriteString("]")
}
