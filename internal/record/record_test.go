package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"OrderID", "order_id"},
		{"Order ID", "order_id"},
		{"order_id", "order_id"},
		{"CompanyName", "company_name"},
		{"Company Name", "company_name"},
		{"Country/Region", "country_region"},
		{"State-Province", "state_province"},
		{" ShippedDate ", "shipped_date"},
		{"ID", "id"},
		{"EmployeeID", "employee_id"},
		{"unit price", "unit_price"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, NaturalKey("ALFKI"), KeyOf("alfki "))
	assert.Equal(t, NaturalKey("ALFKI"), KeyOf("ALFKI"))
	assert.Equal(t, NaturalKey("10248|11"), KeyOf("10248", "11"))
	assert.Equal(t, KeyOf(" alfki"), KeyOf("Alfki "))
}

func TestValueFormat(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null renders empty", NullValue(KindString), ""},
		{"null date renders empty", NullValue(KindDate), ""},
		{"string", StringValue("Berlin"), "Berlin"},
		{"integer", IntValue(42), "42"},
		{"number drops trailing zeros", NumberValue(14.5), "14.5"},
		{"date", DateValue(time.Date(2012, 7, 4, 13, 30, 0, 0, time.UTC)), "2012-07-04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Format())
		})
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, StringValue("Berlin ").Equal(StringValue("Berlin")))
	assert.False(t, StringValue("Berlin").Equal(StringValue("London")))
	assert.True(t, IntValue(5).Equal(IntValue(5)))
	assert.True(t, NullValue(KindString).Equal(NullValue(KindInteger)))
	assert.False(t, NullValue(KindString).Equal(StringValue("")))

	d1 := DateValue(time.Date(2012, 1, 1, 9, 0, 0, 0, time.UTC))
	d2 := DateValue(time.Date(2012, 1, 1, 17, 0, 0, 0, time.UTC))
	assert.True(t, d1.Equal(d2), "same calendar day compares equal")
}

func TestCleanGet(t *testing.T) {
	c := Clean{Values: map[string]Value{"city": StringValue("Berlin")}}
	assert.Equal(t, "Berlin", c.Get("city").Str)
	assert.True(t, c.Get("missing").Null, "absent column reads as null")
}

func TestDateValueTruncatesToDay(t *testing.T) {
	v := DateValue(time.Date(2012, 3, 15, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2012, 3, 15, 0, 0, 0, 0, time.UTC), v.Date)
}
