package topics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/smartctx/internal/core"
)

// StickyLabel names the synthesized topic holding standing instructions.
const StickyLabel = "Instructions & Preferences"

type extraction struct {
	// nil when the reply has no topics key; an explicit [] is a valid
	// empty topic set.
	Topics *[]struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	} `json:"topics"`
	StickyMessageIDs []string `json:"sticky_message_ids"`
}

// parseExtraction turns a model reply into a topic set. Sticky ids not in
// known are dropped; the sticky topic, if any, is appended last.
func parseExtraction(content string, known map[string]struct{}) ([]core.Topic, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object found in response", core.ErrParse)
	}

	var ex extraction
	if err := json.Unmarshal([]byte(raw), &ex); err != nil {
		return nil, fmt.Errorf("%w: unmarshal extraction: %w", core.ErrParse, err)
	}
	if ex.Topics == nil {
		return nil, fmt.Errorf("%w: reply has no topics array", core.ErrParse)
	}
	found := *ex.Topics

	topics := make([]core.Topic, 0, len(found)+1)
	labels := make(map[string]struct{}, len(found))
	for _, t := range found {
		label := strings.TrimSpace(t.Label)
		if label == "" || label == StickyLabel {
			continue
		}
		if _, dup := labels[label]; dup {
			continue
		}
		labels[label] = struct{}{}
		topics = append(topics, core.Topic{
			Label: label,
			Count: max(t.Count, 0),
		})
	}

	ids := make([]string, 0, len(ex.StickyMessageIDs))
	seen := make(map[string]struct{}, len(ex.StickyMessageIDs))
	for _, id := range ex.StickyMessageIDs {
		id = strings.TrimSpace(id)
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		topics = append(topics, core.Topic{
			Label:      StickyLabel,
			Count:      len(ids),
			Sticky:     true,
			MessageIDs: ids,
		})
	}
	return topics, nil
}

// extractJSONObject returns the outermost {...} span, tolerating code fences
// and prose around it.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(content, "}")
	if end < start {
		return ""
	}

	return content[start : end+1]
}
