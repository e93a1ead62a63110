// Package hydration reads the page state TikTok embeds for client-side
// hydration. Video pages carry the engagement counters there as well as in
// the rendered DOM, which makes it a fallback when the counter nodes never
// appear.
//
// The state comes in two shapes: a JSON object in
// <script id="__UNIVERSAL_DATA_FOR_REHYDRATION__"> and, on older pages, a
// script assigning window['SIGI_STATE']. Both are run through a goja VM so
// either form yields the same object.
package hydration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// Script selectors, tried in order.
const (
	SelUniversalData = `script#__UNIVERSAL_DATA_FOR_REHYDRATION__`
	SelSigiState     = `script#SIGI_STATE`
)

// Scripts lists the state script selectors in lookup order.
var Scripts = []string{SelUniversalData, SelSigiState}

// globals a state script may assign on window.
var stateGlobals = []string{"__UNIVERSAL_DATA_FOR_REHYDRATION__", "SIGI_STATE"}

var (
	ErrNoState = errors.New("no page state")
	ErrNoStats = errors.New("video stats not in page state")
)

// Stats are the engagement counters of one video, as decimal strings.
type Stats struct {
	Likes    string
	Comments string
	Shares   string
	Views    string
}

// Eval runs a state script and returns the object it carries. A script that
// is a bare object literal is evaluated as an expression; anything else runs
// as a program with window aliased to the global object.
func Eval(src string) (map[string]any, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrNoState
	}

	vm := goja.New()
	global := vm.GlobalObject()
	_ = vm.Set("window", global)
	_ = vm.Set("self", global)

	if strings.HasPrefix(src, "{") {
		v, err := vm.RunString("(" + src + ")")
		if err != nil {
			return nil, fmt.Errorf("evaluate state: %w", err)
		}
		return object(v)
	}

	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("run state script: %w", err)
	}
	for _, name := range stateGlobals {
		v := vm.Get(name)
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		return object(v)
	}
	return nil, ErrNoState
}

func object(v goja.Value) (map[string]any, error) {
	m, ok := v.Export().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: state is %T", ErrNoState, v.Export())
	}
	return m, nil
}

// VideoStats evaluates src and returns the counters of videoID. An empty
// videoID accepts whichever video the page describes.
func VideoStats(src, videoID string) (Stats, error) {
	state, err := Eval(src)
	if err != nil {
		return Stats{}, err
	}

	if item, ok := dig(state, "__DEFAULT_SCOPE__", "webapp.video-detail", "itemInfo", "itemStruct").(map[string]any); ok && sameVideo(item, videoID) {
		if s, ok := statsOf(item); ok {
			return s, nil
		}
	}

	if items, ok := dig(state, "ItemModule").(map[string]any); ok {
		if videoID != "" {
			if item, ok := items[videoID].(map[string]any); ok {
				if s, ok := statsOf(item); ok {
					return s, nil
				}
			}
		} else if len(items) == 1 {
			for _, v := range items {
				if item, ok := v.(map[string]any); ok {
					if s, ok := statsOf(item); ok {
						return s, nil
					}
				}
			}
		}
	}

	return Stats{}, fmt.Errorf("%w: video %q", ErrNoStats, videoID)
}

// VideoID returns the numeric id at the end of a /video/ link, or "".
func VideoID(link string) string {
	_, rest, ok := strings.Cut(link, "/video/")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func dig(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func sameVideo(item map[string]any, videoID string) bool {
	if videoID == "" {
		return true
	}
	id, ok := item["id"]
	return !ok || fmt.Sprint(id) == videoID
}

// statsOf prefers statsV2, whose counters are strings and do not overflow.
func statsOf(item map[string]any) (Stats, bool) {
	for _, key := range []string{"statsV2", "stats"} {
		st, ok := item[key].(map[string]any)
		if !ok {
			continue
		}
		if _, ok := st["diggCount"]; !ok {
			continue
		}
		return Stats{
			Likes:    count(st["diggCount"]),
			Comments: count(st["commentCount"]),
			Shares:   count(st["shareCount"]),
			Views:    count(st["playCount"]),
		}, true
	}
	return Stats{}, false
}

func count(v any) string {
	switch n := v.(type) {
	case nil:
		return "0"
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
