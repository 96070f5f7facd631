package enums

import "fmt"

type ShippingMethod string

const (
	ShippingMethodStandard ShippingMethod = "Standard"
	ShippingMethodExpress  ShippingMethod = "Express"
)

func (m ShippingMethod) String() string {
	return string(m)
}

func (m ShippingMethod) IsValid() bool {
	return m == ShippingMethodStandard || m == ShippingMethodExpress
}

// ParseShippingMethod defaults an empty value to Standard.
func ParseShippingMethod(value string) (ShippingMethod, error) {
	if value == "" {
		return ShippingMethodStandard, nil
	}
	m := ShippingMethod(value)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid shipping method %q", value)
	}
	return m, nil
}
