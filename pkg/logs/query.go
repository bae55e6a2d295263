package logs

// Polarity decides how enabled category toggles are interpreted.
type Polarity int

const (
	// Include means "transfer only the enabled categories".
	Include Polarity = iota
	// Exclude means "skip the enabled categories".
	Exclude
)

func (p Polarity) String() string {
	if p == Exclude {
		return "exclude"
	}
	return "include"
}

// Toggle is one named boolean option of a filter selection.
type Toggle struct {
	Category Category
	Enabled  bool
}

// FilterSelection is the operator's choice of categories for a sync.
// Toggle order matters under Include polarity.
type FilterSelection struct {
	Polarity Polarity
	Toggles  []Toggle
}

// ScanQuery describes one keyword scan over synchronized logs.
type ScanQuery struct {
	// Category is a category name or AllCategoriesName.
	Category string
	Keyword  string
	// Since and Until are plain substrings, not parsed timestamps.
	Since string
	Until string
}

// Match is one matching line and the file it came from.
type Match struct {
	SourceFile string `json:"source_file"`
	Line       string `json:"line"`
}
