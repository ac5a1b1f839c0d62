package executor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"oryn/internal/oryn/format"
	"oryn/internal/oryn/obslog"
	"oryn/internal/oryn/protocol"
	"oryn/internal/oryn/session"
)

// stateFile is the on-disk shape state save/load round-trips, grounded on
// protocol.Cookie's existing yaml tags.
type stateFile struct {
	Cookies []protocol.Cookie `yaml:"cookies"`
}

// dispatchSession routes a SessionAction to either the backend (cookies,
// tabs) or the in-process session.Manager (named sessions, headers, state
// files).
func (e *Executor) dispatchSession(ctx context.Context, a protocol.SessionAction) string {
	obslog.Get(obslog.CategoryExecutor).Debug("session dispatch: %s", a.SessionActionKind())
	switch act := a.(type) {
	case protocol.CookiesListAction:
		cookies, err := e.backend.GetCookies(ctx)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return format.Cookies(cookies)
	case protocol.CookiesGetAction:
		cookies, err := e.backend.GetCookies(ctx)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		for _, c := range cookies {
			if c.Name == act.Name {
				return format.Cookie(c)
			}
		}
		return fmt.Sprintf("No cookie named %q", act.Name)
	case protocol.CookiesSetAction:
		if err := e.backend.SetCookie(ctx, protocol.Cookie{Name: act.Name, Value: act.Value}); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Set cookie %s", act.Name)
	case protocol.CookiesDeleteAction:
		if err := e.backend.DeleteCookie(ctx, act.Name); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Deleted cookie %s", act.Name)
	case protocol.CookiesClearAction:
		if err := e.backend.ClearCookies(ctx); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return "Cleared all cookies"

	case protocol.TabsListAction:
		tabs, err := e.backend.GetTabs(ctx)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return format.Tabs(tabs)
	case protocol.TabNewAction:
		if err := e.backend.NewTab(ctx, act.URL); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Opened tab %s", act.URL)
	case protocol.TabSwitchAction:
		if err := e.backend.SwitchTab(ctx, act.Index); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Switched to tab %d", act.Index)
	case protocol.TabCloseAction:
		if err := e.backend.CloseTab(ctx, act.Index); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Closed tab %s", format.Int(act.Index))

	case protocol.SessionNewAction:
		info, err := e.sessions.New(act.Name, act.Mode)
		if err != nil {
			return formatErr(protocol.NewError(protocol.ErrInvalidRequest, err.Error()))
		}
		return fmt.Sprintf("Created session %s (%s)", info.Name, info.ID)
	case protocol.SessionSwitchAction:
		info, err := e.sessions.Switch(act.Name)
		if err != nil {
			return formatErr(protocol.NewError(protocol.ErrInvalidRequest, err.Error()))
		}
		return fmt.Sprintf("Switched to session %s", info.Name)
	case protocol.SessionCloseAction:
		if err := e.sessions.Close(act.Name); err != nil {
			return formatErr(protocol.NewError(protocol.ErrInvalidRequest, err.Error()))
		}
		return fmt.Sprintf("Closed session %s", act.Name)
	case protocol.SessionsListAction:
		return formatSessions(e.sessions.List())

	case protocol.StateSaveAction:
		return e.saveState(ctx, act)
	case protocol.StateLoadAction:
		return e.loadState(ctx, act)

	case protocol.HeadersSetAction:
		headers, err := parseHeaderJSON(act.JSON)
		if err != nil {
			return formatErr(protocol.NewError(protocol.ErrInvalidRequest, err.Error()))
		}
		e.sessions.SetHeaders(act.Domain, headers)
		return fmt.Sprintf("Set %d header(s) for %s", len(headers), domainOrAll(act.Domain))
	case protocol.HeadersClearAction:
		e.sessions.ClearHeaders(act.Domain)
		return fmt.Sprintf("Cleared headers for %s", domainOrAll(act.Domain))
	case protocol.HeadersShowAction:
		return formatHeaders(e.sessions.Headers(act.Domain))
	}
	return "Translation Error: unrecognized session action"
}

func domainOrAll(domain string) string {
	if domain == "" {
		return "all domains"
	}
	return domain
}

func parseHeaderJSON(raw string) (map[string]string, error) {
	out := map[string]string{}
	raw = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "{"), "}")
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed header entry %q", pair)
		}
		out[strings.Trim(strings.TrimSpace(kv[0]), `"`)] = strings.Trim(strings.TrimSpace(kv[1]), `"`)
	}
	return out, nil
}

func formatSessions(infos []session.Info) string {
	if len(infos) == 0 {
		return "(no sessions)"
	}
	var b strings.Builder
	for _, info := range infos {
		marker := " "
		if info.Active {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s (%s)\n", marker, info.Name, info.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return "(no headers)"
	}
	var b strings.Builder
	for k, v := range headers {
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e *Executor) saveState(ctx context.Context, act protocol.StateSaveAction) string {
	cookies, err := e.backend.GetCookies(ctx)
	if err != nil {
		return formatErr(asTaxonomyError(err))
	}
	if act.Domain != "" {
		filtered := cookies[:0]
		for _, c := range cookies {
			if strings.Contains(c.Domain, act.Domain) {
				filtered = append(filtered, c)
			}
		}
		cookies = filtered
	}
	data, err := yaml.Marshal(stateFile{Cookies: cookies})
	if err != nil {
		return formatErr(protocol.NewError(protocol.ErrSerialization, err.Error()))
	}
	if err := os.WriteFile(act.Path, data, 0600); err != nil {
		return formatErr(protocol.NewError(protocol.ErrIO, err.Error()))
	}
	return fmt.Sprintf("Saved %d cookie(s) to %s", len(cookies), act.Path)
}

func (e *Executor) loadState(ctx context.Context, act protocol.StateLoadAction) string {
	data, err := os.ReadFile(act.Path)
	if err != nil {
		return formatErr(protocol.NewError(protocol.ErrIO, err.Error()))
	}
	var sf stateFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return formatErr(protocol.NewError(protocol.ErrSerialization, err.Error()))
	}
	if !act.Merge {
		if err := e.backend.ClearCookies(ctx); err != nil {
			return formatErr(asTaxonomyError(err))
		}
	}
	for _, c := range sf.Cookies {
		if err := e.backend.SetCookie(ctx, c); err != nil {
			return formatErr(asTaxonomyError(err))
		}
	}
	return fmt.Sprintf("Loaded %d cookie(s) from %s", len(sf.Cookies), act.Path)
}
