package timex

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are tried in order. Besides RFC 3339 the zoneless forms
// are accepted because the original backend wrote datetime.isoformat()
// values, which carry microseconds but no timezone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Timestamp wraps time.Time so it can be unmarshalled both from RFC 3339
// strings and from zoneless ISO-8601 strings. Zoneless values are read as
// UTC. It always marshals as RFC 3339.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
