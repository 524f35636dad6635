package panels

import (
	"strconv"

	"github.com/elijahnyp/device_panels/state"
)

const (
	materialRowHeight = 26
	materialMinHeight = 250
	materialMaxHeight = 500
)

// MaterialHeight sizes the crafting window for n recipes.
func MaterialHeight(n int) int {
	h := 94 + n*materialRowHeight
	if h < materialMinHeight {
		return materialMinHeight
	}
	if h > materialMaxHeight {
		return materialMaxHeight
	}
	return h
}

// RenderMaterial draws the crafting menu filtered by search.
func RenderMaterial(data state.MaterialData, search string) Panel {
	p := Panel{
		Kind:   string(state.KindMaterial),
		Title:  Capitalize(data.Name),
		Width:  400,
		Height: MaterialHeight(len(data.Items)),
	}
	s := Section{
		Title:  "Amount: " + FormatNumber(data.Amount),
		Search: &SearchBox{Placeholder: "Search", Value: search},
	}

	recipes := SearchRecipes(data.Items, search)
	if len(recipes) == 0 {
		s.Notice = "No recipes found!"
	}
	for i, item := range recipes {
		s.Items = append(s.Items, Item{Buttons: []Button{{
			Key:      "button" + strconv.Itoa(i),
			Icon:     "wrench",
			Label:    Capitalize(item.Name) + " (" + FormatNumber(item.ReqAmount) + " sheets)",
			Disabled: !craftable(data.Amount, item.ReqAmount),
			Action:   act("make", "ref", item.Ref, "sublist", item.SublistRef),
		}}})
	}
	p.Sections = []Section{s}
	return p
}

// a recipe needing nothing is always craftable
func craftable(amount, req float64) bool {
	if req == 0 {
		return true
	}
	return amount/req >= 1
}
