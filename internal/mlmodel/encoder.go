package mlmodel

import "sort"

// LabelEncoder maps string classes to integer codes. Classes are sorted
// so that the fitted encoding is independent of input order.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// FitLabelEncoder learns the sorted set of distinct classes
func FitLabelEncoder(values []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// Encode returns the integer code for a class. Unseen classes return
// ok == false; callers decide the fallback code.
func (e *LabelEncoder) Encode(value string) (int, bool) {
	i := sort.SearchStrings(e.Classes, value)
	if i < len(e.Classes) && e.Classes[i] == value {
		return i, true
	}
	return 0, false
}
