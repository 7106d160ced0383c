package domain

import "strings"

// Size is one of the five canonical tiers every store item is priced in.
type Size string

const (
	SizeXSmall Size = "xsmall"
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeXLarge Size = "xlarge"
)

// SizePrices is the fixed tier pricing. Prices never vary per item.
var SizePrices = map[Size]int{
	SizeXSmall: 50,
	SizeSmall:  100,
	SizeMedium: 250,
	SizeLarge:  500,
	SizeXLarge: 1000,
}

var sizeAliases = map[string]Size{
	"xs":     SizeXSmall,
	"xsmall": SizeXSmall,
	"s":      SizeSmall,
	"small":  SizeSmall,
	"m":      SizeMedium,
	"medium": SizeMedium,
	"l":      SizeLarge,
	"large":  SizeLarge,
	"xl":     SizeXLarge,
	"xlarge": SizeXLarge,
}

// ParseSize normalizes client input ("XS", "xs", "xsmall") to a canonical
// tier. Normalization happens here at the boundary only; everything past
// the handlers works with canonical sizes.
func ParseSize(s string) (Size, bool) {
	size, ok := sizeAliases[strings.ToLower(strings.TrimSpace(s))]
	return size, ok
}

// ParseSizes normalizes a size list, dropping duplicates and reporting
// any names that match no tier.
func ParseSizes(names []string) ([]Size, []string) {
	var sizes []Size
	var invalid []string
	seen := make(map[Size]bool)
	for _, name := range names {
		size, ok := ParseSize(name)
		if !ok {
			invalid = append(invalid, name)
			continue
		}
		if !seen[size] {
			seen[size] = true
			sizes = append(sizes, size)
		}
	}
	return sizes, invalid
}
