package response

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Response describes a single fetch of a URL.
type Response struct {
	// Time is when the fetch happened, in seconds since the Unix epoch.
	Time   Optional
	URL    string
	Status int
	// Type is the Content-Type of the fetched resource.
	Type   string
	Length Optional
	// Digests of the fetched content keyed by algorithm name. See
	// [digest.Algorithms] for the names that are read when encoding.
	Digests map[string][]byte
}

// Optional is an unsigned 64-bit value that may be absent. The zero value is
// absent.
type Optional struct {
	value uint64
	ok    bool
}

// Some returns a present optional holding v.
func Some(v uint64) Optional {
	return Optional{value: v, ok: true}
}

// None returns an absent optional.
func None() Optional {
	return Optional{}
}

func (o Optional) Get() (uint64, bool) {
	return o.value, o.ok
}

func (o Optional) Present() bool {
	return o.ok
}

// Or returns the value, or def when absent.
func (o Optional) Or(def uint64) uint64 {
	if !o.ok {
		return def
	}
	return o.value
}

func (o Optional) String() string {
	if !o.ok {
		return "none"
	}
	return strconv.FormatUint(o.value, 10)
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(o.value, 10)), nil
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional{}
		return nil
	}
	var v uint64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("decoding optional uint64: %w", err)
	}
	*o = Some(v)
	return nil
}
