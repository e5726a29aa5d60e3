package entities

// SourceStats counts the rows of one source file that did not make it into a RecordSet.
type SourceStats struct {
	File           string `json:"file" yaml:"file"`
	TotalRows      int    `json:"total_rows" yaml:"total_rows"`
	Parsed         int    `json:"parsed" yaml:"parsed"`
	EmptyRows      int    `json:"empty_rows" yaml:"empty_rows"`
	MissingColumns int    `json:"missing_columns" yaml:"missing_columns"`
	MissingFields  int    `json:"missing_fields" yaml:"missing_fields"`
}

// Skipped returns the number of rows dropped.
func (s SourceStats) Skipped() int {
	return s.EmptyRows + s.MissingColumns + s.MissingFields
}
