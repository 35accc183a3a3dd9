package validation

import "testing"

type sample struct {
	Phone string `json:"phone_number" validate:"required,phone8"`
	Time  string `json:"time" validate:"required,hhmm"`
	Items []item `json:"items" validate:"required,min=1,dive"`
}

type item struct {
	Quantity int `json:"quantity" validate:"min=1"`
}

func TestNewAcceptsValidInput(t *testing.T) {
	v := New()
	in := sample{Phone: "12345678", Time: "09:30", Items: []item{{Quantity: 1}}}
	if err := v.Struct(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFieldsUsesJSONNames(t *testing.T) {
	v := New()
	in := sample{Phone: "1234567", Time: "24:00", Items: []item{{Quantity: 0}}}
	err := v.Struct(in)
	if err == nil {
		t.Fatal("expected validation error")
	}
	fields := Fields(err)
	for _, key := range []string{"phone_number", "time", "items[0].quantity"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in %v", key, fields)
		}
	}
}

func TestIsPhone(t *testing.T) {
	cases := map[string]bool{
		"12345678":  true,
		"1234567":   false,
		"123456789": false,
		"1234567a":  false,
		"":          false,
	}
	for in, want := range cases {
		if got := IsPhone(in); got != want {
			t.Errorf("IsPhone(%q) = %v", in, got)
		}
	}
}
