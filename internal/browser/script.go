package browser

import (
	"encoding/json"
	"fmt"
)

// Lookup is the JSON shape returned by the element scripts.
type Lookup struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
	Has   bool   `json:"has"`
}

// ScrollScript scrolls by one viewport height.
const ScrollScript = `window.scrollBy(0, window.innerHeight)`

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// resolveJS returns a JS expression evaluating to the element addressed by
// loc, or null.
func resolveJS(loc Locator) string {
	return fmt.Sprintf(`(() => {
	let el = document.querySelectorAll(%s)[%d] || null;
	for (let i = 0; el && i < %d; i++) el = el.parentElement;
	if (el && %s !== "") el = el.querySelector(%s);
	return el;
})()`, jsString(loc.Selector), loc.Index, loc.Up, jsString(loc.Within), jsString(loc.Within))
}

// CountScript evaluates to the number of matches of selector.
func CountScript(selector string) string {
	return fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(selector))
}

// TextScript evaluates to a Lookup holding the trimmed text content.
func TextScript(loc Locator) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	return el ? {found: true, has: true, value: (el.textContent || "").trim()} : {found: false, has: false, value: ""};
})()`, resolveJS(loc))
}

// AttributeScript evaluates to a Lookup holding the raw attribute value.
func AttributeScript(loc Locator, name string) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return {found: false, has: false, value: ""};
	const v = el.getAttribute(%s);
	return {found: true, has: v !== null, value: v === null ? "" : v};
})()`, resolveJS(loc), jsString(name))
}

// ClickScript clicks the element and evaluates to a Lookup reporting whether it existed.
func ClickScript(loc Locator) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return {found: false, has: false, value: ""};
	el.click();
	return {found: true, has: true, value: ""};
})()`, resolveJS(loc))
}

// String renders loc for log fields and error messages.
func (l Locator) String() string {
	s := fmt.Sprintf("%s[%d]", l.Selector, l.Index)
	if l.Up > 0 {
		s += fmt.Sprintf("^%d", l.Up)
	}
	if l.Within != "" {
		s += " " + l.Within
	}
	return s
}

// NotFound wraps ErrNotFound with the locator that failed.
func NotFound(loc Locator) error {
	return fmt.Errorf("%w: %s", ErrNotFound, loc)
}
