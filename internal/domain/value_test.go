package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValue_Presence(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  Presence
	}{
		{name: "absent", value: Absent(), want: PresenceAbsent},
		{name: "zero value is absent", value: Value{}, want: PresenceAbsent},
		{name: "string is absent", value: String("10"), want: PresenceAbsent},
		{name: "zero", value: Number(decimal.Zero), want: PresenceZero},
		{name: "negative zero text", value: Number(decimal.RequireFromString("-0.00")), want: PresenceZero},
		{name: "non-zero", value: Number(decimal.NewFromInt(-3)), want: PresenceNonZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Presence())
		})
	}
}

func TestValue_Usable(t *testing.T) {
	zero := Number(decimal.Zero)
	one := Number(decimal.NewFromInt(1))

	assert.False(t, zero.Usable(ZeroAsAbsent))
	assert.True(t, zero.Usable(ZeroAsValue))
	assert.True(t, one.Usable(ZeroAsAbsent))
	assert.False(t, Absent().Usable(ZeroAsValue))
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "", Absent().Text())
	assert.Equal(t, "Fundo Alfa", String("Fundo Alfa").Text())
	assert.Equal(t, "2024-01-31", Date(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)).Text())
	assert.Equal(t, "1.5", Number(decimal.RequireFromString("1.50")).Text())
}

func TestValue_Accessors(t *testing.T) {
	s, ok := String("x").Str()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = Number(decimal.Zero).Str()
	assert.False(t, ok)

	_, ok = String("2024-01-31").Time()
	assert.False(t, ok, "text is never a date without coercion")

	d, ok := Number(decimal.NewFromInt(7)).Decimal()
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(7)))
}

func TestValue_Equal(t *testing.T) {
	sp := time.FixedZone("BRT", -3*3600)

	assert.True(t, Absent().Equal(Value{}))
	assert.True(t, Number(decimal.RequireFromString("1.0")).Equal(Number(decimal.NewFromInt(1))))
	assert.True(t, Date(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)).Equal(Date(time.Date(2024, 1, 30, 21, 0, 0, 0, sp))))
	assert.False(t, String("1").Equal(Number(decimal.NewFromInt(1))))
	assert.False(t, String("a").Equal(String("b")))
}

func TestZeroPolicy_Valid(t *testing.T) {
	assert.True(t, ZeroAsAbsent.Valid())
	assert.True(t, ZeroAsValue.Valid())
	assert.False(t, ZeroPolicy("sometimes").Valid())
	assert.Equal(t, ZeroAsAbsent, DefaultZeroPolicy)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "absent", KindAbsent.String())
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "date", KindDate.String())
	assert.Equal(t, "number", KindNumber.String())
}
