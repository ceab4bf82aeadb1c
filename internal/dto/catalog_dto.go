package dto

type CatalogOptionsResponse struct {
	Categories []OptionItemDTO `json:"categories"`
	Audiences  []OptionItemDTO `json:"audiences"`
	Goals      []OptionItemDTO `json:"goals"`
	Maturities []OptionItemDTO `json:"maturities"`
}
