package resolver

import (
	"strings"

	"oryn/internal/oryn/protocol"
)

// Requirement is the closed set of per-command element requirements.
type Requirement int

const (
	ReqAny Requirement = iota
	ReqTypeable
	ReqClickable
	ReqCheckable
	ReqSubmittable
	ReqContainerForm
	ReqContainerModal
	ReqContainerDialog
	ReqContainerAny
	ReqSelectable
	ReqDismissable
	ReqAcceptable
)

func (r Requirement) String() string {
	switch r {
	case ReqAny:
		return "any"
	case ReqTypeable:
		return "typeable"
	case ReqClickable:
		return "clickable"
	case ReqCheckable:
		return "checkable"
	case ReqSubmittable:
		return "submittable"
	case ReqContainerForm:
		return "container(form)"
	case ReqContainerModal:
		return "container(modal)"
	case ReqContainerDialog:
		return "container(dialog)"
	case ReqContainerAny:
		return "container(any)"
	case ReqSelectable:
		return "selectable"
	case ReqDismissable:
		return "dismissable"
	case ReqAcceptable:
		return "acceptable"
	}
	return "unknown"
}

// Satisfies reports whether e meets requirement r.
func Satisfies(e protocol.Element, r Requirement) bool {
	switch r {
	case ReqAny:
		return true
	case ReqTypeable:
		if e.ElementType == "input" || e.ElementType == "textarea" || e.ElementType == "select" {
			return true
		}
		v, _ := e.Attr("contenteditable")
		return strings.EqualFold(v, "true")
	case ReqClickable:
		switch e.ElementType {
		case "button", "a", "input", "select", "label":
			return true
		}
		role, _ := e.Attr("role")
		switch strings.ToLower(role) {
		case "button", "link", "checkbox", "radio", "switch", "menuitem", "tab":
			return true
		}
		return e.Role != ""
	case ReqCheckable:
		if e.ElementType == "input" {
			typ, _ := e.Attr("type")
			if strings.EqualFold(typ, "checkbox") || strings.EqualFold(typ, "radio") {
				return true
			}
		}
		role, _ := e.Attr("role")
		return strings.EqualFold(role, "checkbox") || strings.EqualFold(role, "radio") || strings.EqualFold(role, "switch")
	case ReqSubmittable:
		return isSubmittable(e)
	case ReqContainerForm:
		return e.ElementType == "form"
	case ReqContainerModal, ReqContainerDialog:
		role, _ := e.Attr("role")
		return strings.EqualFold(role, "dialog") || strings.EqualFold(role, "alertdialog") || e.ElementType == "dialog"
	case ReqContainerAny:
		switch e.ElementType {
		case "form", "dialog", "section", "div":
			return true
		}
		return false
	case ReqSelectable:
		return e.ElementType == "select"
	case ReqDismissable:
		return Satisfies(e, ReqClickable)
	case ReqAcceptable:
		return Satisfies(e, ReqClickable)
	}
	return false
}

func isSubmittable(e protocol.Element) bool {
	if e.ElementType == "form" {
		return true
	}
	if e.ElementType == "button" {
		typ, ok := e.Attr("type")
		return !ok || !strings.EqualFold(typ, "button") && !strings.EqualFold(typ, "reset")
	}
	if e.ElementType == "input" {
		typ, _ := e.Attr("type")
		return strings.EqualFold(typ, "submit")
	}
	return false
}

// IsLabelLike reports whether e is one of the label-ish tags the
// label-association fallback applies to.
func IsLabelLike(e protocol.Element) bool {
	switch e.ElementType {
	case "label", "span", "p", "strong", "b", "em", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
