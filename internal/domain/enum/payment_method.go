package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMethod is how a bill was settled at checkout
type PaymentMethod int

const (
	PaymentMethodCash PaymentMethod = 0
	PaymentMethodCard PaymentMethod = 1
	PaymentMethodUPI  PaymentMethod = 2
)

func (m PaymentMethod) String() string {
	names := [...]string{"Cash", "Card", "UPI"}
	if int(m) < 0 || int(m) >= len(names) {
		return "Cash"
	}
	return names[m]
}

// IsCash reports whether change has to be computed for this method.
func (m PaymentMethod) IsCash() bool {
	return m == PaymentMethodCash
}

// ParsePaymentMethod accepts the display name in any case.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentMethodCash, nil
	case "card":
		return PaymentMethodCard, nil
	case "upi":
		return PaymentMethodUPI, nil
	}
	return PaymentMethodCash, fmt.Errorf("unknown payment method %q", s)
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if i < 0 || i > int(PaymentMethodUPI) {
			return fmt.Errorf("unknown payment method %d", i)
		}
		*m = PaymentMethod(i)
		return nil
	}
	parsed, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
