package models

import (
	"bytes"
	"encoding/json"
)

// List decodes either a bare JSON array or a paginated envelope
// {"count": n, "results": [...]} into a slice.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return err
	}
	*l = page.Results
	return nil
}
