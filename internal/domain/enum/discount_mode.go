package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DiscountMode tells whether a requested discount is an amount or a percentage
type DiscountMode int

const (
	DiscountModeFlat    DiscountMode = 0
	DiscountModePercent DiscountMode = 1
)

func (m DiscountMode) String() string {
	if m == DiscountModePercent {
		return "percent"
	}
	return "flat"
}

func (m DiscountMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *DiscountMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if i < int(DiscountModeFlat) || i > int(DiscountModePercent) {
			return fmt.Errorf("unknown discount mode %d", i)
		}
		*m = DiscountMode(i)
		return nil
	}
	switch strings.ToLower(str) {
	case "flat", "amount", "":
		*m = DiscountModeFlat
	case "percent", "percentage", "%":
		*m = DiscountModePercent
	default:
		return fmt.Errorf("unknown discount mode %q", str)
	}
	return nil
}
