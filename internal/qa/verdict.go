package qa

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Verdict is a human judgment that may not have been given yet.
type Verdict int

const (
	Unset    Verdict = iota // No judgment recorded
	Accepted                // Operator answered (A)ccept
	Rejected                // Operator answered (R)eject
)

// VerdictOf converts an accept/reject decision into a Verdict.
func VerdictOf(accepted bool) Verdict {
	if accepted {
		return Accepted
	}
	return Rejected
}

// IsSet reports whether a judgment has been recorded.
func (v Verdict) IsSet() bool {
	return v == Accepted || v == Rejected
}

// Bool returns true only for Accepted. Unset and Rejected are both false.
func (v Verdict) Bool() bool {
	return v == Accepted
}

func (v Verdict) String() string {
	switch v {
	case Unset:
		return "unset"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// MarshalJSON encodes Unset as null and the other variants as booleans,
// which is the layout of existing annotation files.
func (v Verdict) MarshalJSON() ([]byte, error) {
	switch v {
	case Unset:
		return []byte("null"), nil
	case Accepted:
		return []byte("true"), nil
	case Rejected:
		return []byte("false"), nil
	default:
		return nil, fmt.Errorf("qa: unknown verdict %d", int(v))
	}
}

func (v *Verdict) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Unset
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("qa: verdict must be null, true or false: %w", err)
	}
	*v = VerdictOf(b)
	return nil
}
