package survey

import (
	"bytes"
	"encoding/json"
	"fmt"

	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

type counterEntry struct {
	Data struct {
		Name  string             `json:"name"`
		Count map[string]float64 `json:"count"`
		Extra struct {
			Name  string             `json:"name"`
			Count map[string]float64 `json:"count"`
		} `json:"extra"`
	} `json:"data"`
	Ranges       orderedRanges `json:"ranges"`
	CurrentRange string        `json:"currentRange"`
}

// orderedRanges keeps the document order of the `ranges` object, which is the selector order.
type orderedRanges dashboard.CategorySet

func (r *orderedRanges) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ranges must be an object")
	}
	var out orderedRanges
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ranges key must be a string")
		}
		var label string
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("ranges[%s]: %w", key, err)
		}
		out = append(out, dashboard.Category{Key: key, Label: label})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

// DecodeCounters converts the raw project widgets payload into counter reports.
// Entries without a `data` object or with mistyped fields are skipped.
func DecodeCounters(raw map[string]json.RawMessage) map[string]dashboard.CounterReport {
	reports := make(map[string]dashboard.CounterReport, len(raw))
	for key, entryRaw := range raw {
		var entry counterEntry
		if err := json.Unmarshal(entryRaw, &entry); err != nil {
			continue
		}
		if entry.Data.Count == nil {
			continue
		}
		reports[key] = dashboard.CounterReport{
			Name:         entry.Data.Name,
			Counts:       entry.Data.Count,
			ExtraName:    entry.Data.Extra.Name,
			ExtraCounts:  entry.Data.Extra.Count,
			Ranges:       dashboard.CategorySet(entry.Ranges),
			CurrentRange: entry.CurrentRange,
		}
	}
	return reports
}
