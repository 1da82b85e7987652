package safemath

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMax(t *testing.T) {
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	assert.Zero(t, want.Cmp(Max().ToBig()))

	// Max hands out copies.
	m := Max()
	m.SetUint64(1)
	assert.Equal(t, 128, Max().BitLen())
}

func TestCheckedOps(t *testing.T) {
	one := uint256.NewInt(1)
	testCases := []struct {
		name        string
		op          func(x, y *uint256.Int) (*uint256.Int, error)
		x, y        *uint256.Int
		expected    *uint256.Int
		expectedErr error
	}{
		{name: "add", op: Add, x: uint256.NewInt(100), y: uint256.NewInt(200), expected: uint256.NewInt(300)},
		{name: "add at the limit", op: Add, x: new(uint256.Int).Sub(Max(), one), y: one, expected: Max()},
		{name: "add overflow", op: Add, x: Max(), y: one, expectedErr: ErrOverflow},
		{name: "sub", op: Sub, x: uint256.NewInt(300), y: uint256.NewInt(225), expected: uint256.NewInt(75)},
		{name: "sub to zero", op: Sub, x: uint256.NewInt(5), y: uint256.NewInt(5), expected: uint256.NewInt(0)},
		{name: "sub underflow", op: Sub, x: uint256.NewInt(1), y: uint256.NewInt(2), expectedErr: ErrOverflow},
		{name: "mul", op: Mul, x: uint256.NewInt(150), y: uint256.NewInt(300), expected: uint256.NewInt(45000)},
		{name: "mul by zero", op: Mul, x: Max(), y: uint256.NewInt(0), expected: uint256.NewInt(0)},
		{name: "mul overflow", op: Mul, x: new(uint256.Int).Lsh(one, 64), y: new(uint256.Int).Lsh(one, 64), expectedErr: ErrOverflow},
		{name: "div floors", op: Div, x: uint256.NewInt(45000), y: uint256.NewInt(199), expected: uint256.NewInt(226)},
		{name: "div ceil rounds up", op: DivCeil, x: uint256.NewInt(45000), y: uint256.NewInt(350), expected: uint256.NewInt(129)},
		{name: "div ceil exact", op: DivCeil, x: uint256.NewInt(45000), y: uint256.NewInt(200), expected: uint256.NewInt(225)},
		{name: "div ceil by zero", op: DivCeil, x: uint256.NewInt(0), y: uint256.NewInt(0), expectedErr: ErrDivideByZero},
		{name: "div by zero", op: Div, x: uint256.NewInt(1), y: uint256.NewInt(0), expectedErr: ErrDivideByZero},
		{name: "operand wider than 128 bits", op: Add, x: new(uint256.Int).Lsh(one, 128), y: one, expectedErr: ErrOverflow},
		{name: "nil operand", op: Mul, x: nil, y: one, expectedErr: ErrNilOperand},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.op(tc.x, tc.y)
			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Eq(got), "expected %s, got %s", tc.expected.Dec(), got.Dec())
		})
	}
}

func TestCheckedOpsDoNotMutateOperands(t *testing.T) {
	x, y := uint256.NewInt(7), uint256.NewInt(3)
	_, err := Add(x, y)
	require.NoError(t, err)
	_, err = Mul(x, y)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), x.Uint64())
	assert.Equal(t, uint64(3), y.Uint64())
}

func TestMulWide(t *testing.T) {
	got, err := MulWide(Max(), Max())
	require.NoError(t, err)

	m := Max().ToBig()
	want := new(big.Int).Mul(m, m)
	assert.Zero(t, want.Cmp(got.ToBig()))

	_, err = MulWide(new(uint256.Int).Lsh(uint256.NewInt(1), 200), uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestFromDecimal(t *testing.T) {
	got, err := FromDecimal("340282366920938463463374607431768211455")
	require.NoError(t, err)
	assert.True(t, Max().Eq(got))

	_, err = FromDecimal("340282366920938463463374607431768211456")
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FromDecimal("-1")
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FromDecimal("12abc")
	assert.Error(t, err)
}
