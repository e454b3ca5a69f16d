package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	u := User{Password: HashPassword("secret")}

	assert.True(t, u.VerifyPassword("secret"))
	assert.False(t, u.VerifyPassword("wrong"))
	assert.False(t, (&User{Password: "not-a-hash"}).VerifyPassword("secret"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "小王", (&User{Username: "wang", Nickname: "小王"}).DisplayName())
	assert.Equal(t, "wang", (&User{Username: "wang"}).DisplayName())
}

func TestDateJSON(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
		err   bool
	}{
		{name: "day", input: `"2024-03-15"`, want: "2024-03-15"},
		{name: "month resolves to first day", input: `"2024-03"`, want: "2024-03-01"},
		{name: "timestamp is truncated", input: `"2024-03-15T10:20:30Z"`, want: "2024-03-15"},
		{name: "empty is zero", input: `""`, want: ""},
		{name: "garbage", input: `"15.03.2024"`, err: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d Date

			err := json.Unmarshal([]byte(tc.input), &d)
			if tc.err {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, d.String())

			out, err := json.Marshal(d)
			require.NoError(t, err)
			assert.JSONEq(t, `"`+tc.want+`"`, string(out))
		})
	}
}

func TestDateEndOfMonth(t *testing.T) {
	d, err := ParseDate("2024-02")
	require.NoError(t, err)

	assert.Equal(t, "2024-02-29", d.EndOfMonth().String())
}

func TestDateValueZeroIsNull(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	d, err := ParseDate("2024-01-02")
	require.NoError(t, err)

	v, err = d.Value()
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestDateScanNullResets(t *testing.T) {
	d, err := ParseDate("2024-01-02")
	require.NoError(t, err)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
}

func TestExpenseSumFees(t *testing.T) {
	fee := func(v int) *int { return &v }

	e := Expense{
		LicenseFee:       fee(100),
		AgencyFee:        fee(2400),
		OtherBusinessFee: fee(50),
	}

	assert.Equal(t, 2550, e.SumFees())
	assert.Zero(t, (&Expense{}).SumFees())
}
