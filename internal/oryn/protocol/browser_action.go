package protocol

// BrowserAction is a message dispatched straight to the browser driver
// (navigation, key events, screenshots) rather than executed in-page.
type BrowserAction interface {
	BrowserActionKind() string
}

type GotoAction struct {
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	TimeoutMs uint64            `json:"timeout_ms,omitempty"`
}

func (GotoAction) BrowserActionKind() string { return "goto" }

type BackAction struct{}

func (BackAction) BrowserActionKind() string { return "back" }

type ForwardAction struct{}

func (ForwardAction) BrowserActionKind() string { return "forward" }

type RefreshAction struct {
	Hard bool `json:"hard"`
}

func (RefreshAction) BrowserActionKind() string { return "refresh" }

type ScreenshotAction struct {
	Output   string `json:"output,omitempty"`
	Format   string `json:"format,omitempty"`
	FullPage bool   `json:"fullpage"`
}

func (ScreenshotAction) BrowserActionKind() string { return "screenshot" }

type PDFAction struct {
	Output string `json:"output,omitempty"`
}

func (PDFAction) BrowserActionKind() string { return "pdf" }

type PressKeyAction struct {
	Keys []string `json:"keys"`
}

func (PressKeyAction) BrowserActionKind() string { return "press" }

type KeydownAction struct {
	Key string `json:"key"`
}

func (KeydownAction) BrowserActionKind() string { return "keydown" }

type KeyupAction struct {
	Key string `json:"key"`
}

func (KeyupAction) BrowserActionKind() string { return "keyup" }

type ViewportAction struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (ViewportAction) BrowserActionKind() string { return "viewport" }

type FrameSwitchAction struct {
	Selector string `json:"selector"`
}

func (FrameSwitchAction) BrowserActionKind() string { return "frame" }

type DialogAction struct {
	Accept bool   `json:"accept"`
	Text   string `json:"text,omitempty"`
}

func (DialogAction) BrowserActionKind() string { return "dialog" }
