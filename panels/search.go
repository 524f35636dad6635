package panels

import (
	"strings"

	"github.com/elijahnyp/device_panels/state"
)

// SearchRecipes keeps the recipes whose name contains query, ignoring case.
// An empty query returns items as is. Order is preserved.
func SearchRecipes(items []state.CraftableItem, query string) []state.CraftableItem {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	result := []state.CraftableItem{}
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) {
			result = append(result, item)
		}
	}
	return result
}
