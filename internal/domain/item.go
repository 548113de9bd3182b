package domain

// Nutrients holds the optional per-serving nutrient profile of an item.
// A nil field is unknown, which is not the same as zero.
type Nutrients struct {
	Protein *float64 `json:"protein,omitempty"` // grams
	Sugar   *float64 `json:"sugar,omitempty"`   // grams
	Fiber   *float64 `json:"fiber,omitempty"`   // grams
	Sodium  *float64 `json:"sodium,omitempty"`  // milligrams
}

// IsEmpty reports whether no nutrient is known
func (n *Nutrients) IsEmpty() bool {
	return n == nil || (n.Protein == nil && n.Sugar == nil && n.Fiber == nil && n.Sodium == nil)
}

// RawItem is a receipt line as produced by the extraction collaborator
type RawItem struct {
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	Category  string     `json:"category,omitempty"`
	Nutrients *Nutrients `json:"nutrients,omitempty"`

	// HealthScore is accepted for compatibility but never trusted
	HealthScore *int `json:"healthScore,omitempty"`
}

// Item is a validated, normalized and scored receipt line
type Item struct {
	Name        string     `json:"name"`
	Price       Money      `json:"price"`
	Category    string     `json:"category"`
	Nutrients   *Nutrients `json:"nutrients,omitempty"`
	HealthScore int        `json:"healthScore"`
}

// BasketSummary aggregates cost and health quality of a list of items
type BasketSummary struct {
	TotalCost      Money `json:"totalCost"`
	AvgHealthScore int   `json:"avgHealthScore"`
	ItemCount      int   `json:"itemCount"`
}

// CurrentBasket is the scored basket as bought
type CurrentBasket struct {
	Items []Item `json:"items"`
	BasketSummary
}
