package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BillStatus is the lifecycle position of a bill draft
type BillStatus int

const (
	BillStatusEmpty     BillStatus = 0
	BillStatusBuilding  BillStatus = 1
	BillStatusHeld      BillStatus = 2
	BillStatusFinalized BillStatus = 3
)

func (s BillStatus) String() string {
	names := [...]string{"Empty", "Building", "Held", "Finalized"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Empty"
	}
	return names[s]
}

func (s BillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = BillStatus(i)
		return nil
	}
	switch str {
	case "Empty":
		*s = BillStatusEmpty
	case "Building":
		*s = BillStatusBuilding
	case "Held":
		*s = BillStatusHeld
	case "Finalized":
		*s = BillStatusFinalized
	}
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BillStatusEmpty
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = BillStatus(v)
	case int:
		*s = BillStatus(v)
	}
	return nil
}
