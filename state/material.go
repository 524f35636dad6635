package state

// MaterialData is the snapshot of a material stack's crafting menu.
type MaterialData struct {
	Name   string          `json:"name"`
	Items  []CraftableItem `json:"items"`
	Amount float64         `json:"amount"`
}

func (MaterialData) Kind() Kind { return KindMaterial }

type CraftableItem struct {
	Name        string  `json:"name"`
	Ref         string  `json:"ref"`
	SublistRef  string  `json:"sublist_ref,omitempty"`
	TimeToCraft float64 `json:"time_to_craft"`
	ReqAmount   float64 `json:"req_amount"`
}
