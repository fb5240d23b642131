package models

// MeasureKindInfo describes one measure kind and how it is encoded upstream.
type MeasureKindInfo struct {
	Name      string `json:"name"`
	Parameter string `json:"parameter"`
	Qualifier string `json:"qualifier,omitempty"`
}

// MeasureKinds lists every measure kind the API understands.
type MeasureKinds struct {
	Items []MeasureKindInfo `json:"items"`
}

// NameList is a sorted list of distinct display names.
type NameList struct {
	Count int      `json:"count"`
	Items []string `json:"items"`
}
