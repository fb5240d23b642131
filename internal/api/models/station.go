package models

// Station is one active monitoring station.
type Station struct {
	Notation      string `json:"notation"`
	RiverName     string `json:"riverName"`
	Town          string `json:"town"`
	CatchmentName string `json:"catchmentName"`
	Label         string `json:"label"`
}

// StationList is the response of the station search.
type StationList struct {
	Count int       `json:"count"`
	Items []Station `json:"items"`
}

// Measure is a quantity a station reports.
type Measure struct {
	Kind string `json:"kind"`
	Unit string `json:"unit"`
}

// Issue is a measure entry that could not be classified.
type Issue struct {
	ErrorKind string `json:"errorKind"`
	Detail    string `json:"detail"`
	Source    string `json:"source,omitempty"`
}

// MeasureList is the response of measure discovery for one station.
type MeasureList struct {
	Station  string    `json:"station"`
	Measures []Measure `json:"measures"`
	Issues   []Issue   `json:"issues,omitempty"`
}

// Reading is one timestamped value. Value is null when the upstream
// reading carried no number.
type Reading struct {
	Time  Timestamp `json:"dateTime"`
	Value *float64  `json:"value"`
}

// TimeSeries is the response of a readings query.
type TimeSeries struct {
	Station  string    `json:"station"`
	Kind     string    `json:"kind"`
	Unit     string    `json:"unit,omitempty"`
	Since    Timestamp `json:"since"`
	Count    int       `json:"count"`
	Readings []Reading `json:"readings"`
}
