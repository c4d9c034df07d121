package promptpay

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuilder(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{name: "phone", target: "0812345678"},
		{name: "phone with separators", target: "081-234-5678"},
		{name: "national id", target: "1234567890123"},
		{name: "e-wallet id", target: "123456789012345"},
		{name: "empty", target: "", wantErr: true},
		{name: "too short", target: "12345", wantErr: true},
		{name: "garbage", target: "not-a-number", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBuilder(tc.target)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTarget)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBuilder_Payload(t *testing.T) {
	cases := []struct {
		name      string
		target    string
		amount    decimal.Decimal
		reference string
		want      string
	}{
		{
			name:   "phone",
			target: "0812345678",
			amount: decimal.NewFromInt(150),
			want:   "00020101021229370016A0000006770101110113006681234567853037645406150.005802TH6304C40C",
		}, {
			name:   "phone with separators",
			target: "081-234-5678",
			amount: decimal.NewFromInt(1),
			want:   "00020101021229370016A00000067701011101130066812345678530376454041.005802TH630403CF",
		}, {
			name:   "national id",
			target: "1234567890123",
			amount: decimal.NewFromFloat(42.5),
			want:   "00020101021229370016A000000677010111021312345678901235303764540542.505802TH6304236C",
		}, {
			name:      "phone with reference",
			target:    "0899999999",
			amount:    decimal.NewFromInt(50),
			reference: "a1b2c3d4",
			want:      "00020101021229370016A000000677010111011300668999999995303764540550.005802TH62120508a1b2c3d463047918",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := NewBuilder(tc.target)
			require.NoError(t, err)

			payload, payloadErr := b.Payload(tc.amount, tc.reference)
			require.NoError(t, payloadErr)
			assert.Equal(t, tc.want, payload)
		})
	}
}

func TestBuilder_Payload_InvalidAmount(t *testing.T) {
	b, err := NewBuilder("0812345678")
	require.NoError(t, err)

	_, zeroErr := b.Payload(decimal.Zero, "")
	assert.ErrorIs(t, zeroErr, ErrInvalidAmount)

	_, negErr := b.Payload(decimal.NewFromInt(-10), "")
	assert.ErrorIs(t, negErr, ErrInvalidAmount)
}

func TestBuilder_Payload_ReferenceTooLong(t *testing.T) {
	b, err := NewBuilder("0812345678")
	require.NoError(t, err)

	var longRef string
	for range 100 {
		longRef += "x"
	}
	_, refErr := b.Payload(decimal.NewFromInt(10), longRef)
	assert.ErrorIs(t, refErr, ErrReferenceTooLong)
}

func TestBuilder_StaticPayload(t *testing.T) {
	b, err := NewBuilder("0812345678")
	require.NoError(t, err)

	assert.Equal(t,
		"00020101021129370016A0000006770101110113006681234567853037645802TH6304823E",
		b.StaticPayload(),
	)
}
