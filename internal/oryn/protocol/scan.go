package protocol

// Page describes the document a scan was taken from.
type Page struct {
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Viewport Rect    `json:"viewport"`
	ScrollX  float64 `json:"scroll_x"`
	ScrollY  float64 `json:"scroll_y"`
}

// Stats reports how much of the page a scan covered.
type Stats struct {
	Total   int `json:"total"`
	Scanned int `json:"scanned"`
}

// Pattern is a high-level page structure the Scanner detected (login form,
// search box, pagination, modal, cookie banner, ...).
type Pattern struct {
	Kind       string         `json:"kind"`
	Members    map[string]int `json:"members"`
	Confidence float64        `json:"confidence"`
}

// Changes reports element deltas since the previous scan.
type Changes struct {
	Added    []int `json:"added,omitempty"`
	Removed  []int `json:"removed,omitempty"`
	Modified []int `json:"modified,omitempty"`
}

// ScanResult is a page snapshot: the atom the rest of the pipeline is built on.
type ScanResult struct {
	Page             Page      `json:"page"`
	Elements         []Element `json:"elements"`
	Stats            Stats     `json:"stats"`
	Patterns         []Pattern `json:"patterns,omitempty"`
	Changes          *Changes  `json:"changes,omitempty"`
	AvailableIntents []string  `json:"available_intents,omitempty"`
}

// Pattern looks up the first detected pattern of the given kind.
func (s *ScanResult) Pattern(kind string) (Pattern, bool) {
	for _, p := range s.Patterns {
		if p.Kind == kind {
			return p, true
		}
	}
	return Pattern{}, false
}
