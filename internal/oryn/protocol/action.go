package protocol

// ScannerAction is a message the Translator lowers a Command into for
// execution inside the page by the injected Scanner runtime. Every variant
// marshals to JSON tagged by its "action" field, e.g.
// {"action":"click","id":5,"button":"left","double":false,"force":false,"modifiers":[]}.
type ScannerAction interface {
	ScannerActionKind() string
}

type ScanAction struct {
	MaxElements    *int   `json:"max_elements,omitempty"`
	IncludeHidden  bool   `json:"include_hidden,omitempty"`
	ViewAll        bool   `json:"view_all,omitempty"`
	ViewportOnly   bool   `json:"viewport_only,omitempty"`
	Near           string `json:"near,omitempty"`
	MonitorChanges bool   `json:"monitor_changes,omitempty"`
}

func (ScanAction) ScannerActionKind() string { return "scan" }

type ClickAction struct {
	ID        int      `json:"id"`
	Button    string   `json:"button"`
	Double    bool     `json:"double"`
	Force     bool     `json:"force"`
	Modifiers []string `json:"modifiers"`
}

func (ClickAction) ScannerActionKind() string { return "click" }

type TypeAction struct {
	ID     int     `json:"id"`
	Text   string  `json:"text"`
	Clear  bool    `json:"clear"`
	Submit bool    `json:"submit"`
	Delay  *uint64 `json:"delay,omitempty"`
}

func (TypeAction) ScannerActionKind() string { return "type" }

type ClearAction struct {
	ID int `json:"id"`
}

func (ClearAction) ScannerActionKind() string { return "clear" }

type SelectAction struct {
	ID    int    `json:"id"`
	Index *int   `json:"index,omitempty"`
	Label string `json:"label,omitempty"`
}

func (SelectAction) ScannerActionKind() string { return "select" }

type CheckAction struct {
	ID int `json:"id"`
}

func (CheckAction) ScannerActionKind() string { return "check" }

type UncheckAction struct {
	ID int `json:"id"`
}

func (UncheckAction) ScannerActionKind() string { return "uncheck" }

type HoverAction struct {
	ID int `json:"id"`
}

func (HoverAction) ScannerActionKind() string { return "hover" }

type FocusAction struct {
	ID int `json:"id"`
}

func (FocusAction) ScannerActionKind() string { return "focus" }

type ScrollAction struct {
	ID        *int   `json:"id,omitempty"`
	Direction string `json:"direction"`
	Amount    string `json:"amount"`
}

func (ScrollAction) ScannerActionKind() string { return "scroll" }

type SubmitAction struct {
	ID int `json:"id"`
}

func (SubmitAction) ScannerActionKind() string { return "submit" }

// WaitAction flattens a typed WaitCondition to a wire tuple: a condition
// string plus optional selector/text payload.
type WaitAction struct {
	Condition string `json:"condition"`
	Selector  string `json:"selector,omitempty"`
	Text      string `json:"text,omitempty"`
	TimeoutMs uint64 `json:"timeout_ms"`
}

func (WaitAction) ScannerActionKind() string { return "wait" }

type ExtractAction struct {
	What     string `json:"what"`
	Selector string `json:"selector,omitempty"`
	Format   string `json:"format,omitempty"`
}

func (ExtractAction) ScannerActionKind() string { return "extract" }

type ExecuteAction struct {
	Script string `json:"script"`
}

func (ExecuteAction) ScannerActionKind() string { return "execute" }

type HTMLAction struct {
	Selector string `json:"selector,omitempty"`
}

func (HTMLAction) ScannerActionKind() string { return "html" }

type TextAction struct {
	ID       *int   `json:"id,omitempty"`
	Selector string `json:"selector,omitempty"`
}

func (TextAction) ScannerActionKind() string { return "text" }

type BoxAction struct {
	ID int `json:"id"`
}

func (BoxAction) ScannerActionKind() string { return "box" }

type HighlightAction struct {
	ID int `json:"id"`
}

func (HighlightAction) ScannerActionKind() string { return "highlight" }
