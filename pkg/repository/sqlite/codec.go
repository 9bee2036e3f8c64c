package sqlite

import (
	"encoding/json"
	"time"
)

func nowUnixNano() int64 {
	return time.Now().UnixNano()
}

// encodeSnapshot serializes the object to its opaque snapshot form. A
// failure here is a programming-error-level condition; callers skip the
// offending object and keep the rest of the batch.
func encodeSnapshot(v any) (string, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// decodeSnapshot reconstructs the object from its snapshot. The snapshot
// is ground truth; structured columns are write-only projections and are
// never read back into the object.
func decodeSnapshot[T any](snapshot string) (*T, bool) {
	var v T
	if err := json.Unmarshal([]byte(snapshot), &v); err != nil {
		return nil, false
	}
	return &v, true
}
