package account

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDigest = "$2a$04$digest"

func TestNew(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		acc, err := NewOverdraft(1001, testDigest, 1000, 500)
		require.NoError(t, err)
		require.NotNil(t, acc)

		assert.Equal(t, int64(1001), acc.Number)
		assert.Equal(t, testDigest, acc.CredentialDigest)
		assert.Equal(t, int64(1000), acc.GetBalance())
		assert.Equal(t, KindOverdraft, acc.Kind)
		assert.Equal(t, int64(500), acc.OverdraftLimit)
	})

	t.Run("OverdraftLimitIgnoredForOtherKinds", func(t *testing.T) {
		acc, err := New(1002, testDigest, 10, KindStandard, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(0), acc.OverdraftLimit)
	})

	tests := []struct {
		name      string
		number    int64
		digest    string
		balance   int64
		kind      Kind
		overdraft int64
		wantErr   error
	}{
		{"zero number", 0, testDigest, 0, KindStandard, 0, ErrInvalidNumber},
		{"empty digest", 1, "", 0, KindStandard, 0, ErrEmptyCredential},
		{"negative standard balance", 1, testDigest, -1, KindStandard, 0, ErrNegativeBalance},
		{"negative limited balance", 1, testDigest, -1, KindWithdrawalLimited, 0, ErrNegativeBalance},
		{"negative overdraft limit", 1, testDigest, 0, KindOverdraft, -5, ErrNegativeOverdraft},
		{"balance beyond overdraft", 1, testDigest, -501, KindOverdraft, 500, ErrBalanceBelowOverdraft},
		{"unknown kind", 1, testDigest, 0, Kind("savings"), 0, ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := New(tt.number, tt.digest, tt.balance, tt.kind, tt.overdraft)
			assert.Nil(t, acc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"normal", "overdraft", "limited"} {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}

	_, err := ParseKind("Overdraft")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestAccount_Deposit(t *testing.T) {
	kinds := []Kind{KindStandard, KindOverdraft, KindWithdrawalLimited}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			acc, err := New(7, testDigest, 100, kind, 50)
			require.NoError(t, err)

			assert.False(t, acc.Deposit(-1), "negative deposit must fail")
			assert.Equal(t, int64(100), acc.GetBalance())

			assert.True(t, acc.Deposit(0), "zero deposit is a no-op success")
			assert.Equal(t, int64(100), acc.GetBalance())

			assert.True(t, acc.Deposit(250))
			assert.Equal(t, int64(350), acc.GetBalance())
		})
	}
}

func TestAccount_Deposit_Overflow(t *testing.T) {
	t.Run("StandardNearMax", func(t *testing.T) {
		acc, err := NewStandard(1, testDigest, math.MaxInt64-10)
		require.NoError(t, err)

		assert.False(t, acc.CanDeposit(11))
		assert.False(t, acc.Deposit(11))
		assert.Equal(t, int64(math.MaxInt64-10), acc.GetBalance())

		assert.True(t, acc.Deposit(10))
		assert.Equal(t, int64(math.MaxInt64), acc.GetBalance())
		assert.False(t, acc.Deposit(1))
		assert.True(t, acc.Deposit(0))
	})

	t.Run("RepeatedLargeDepositsStayNonNegative", func(t *testing.T) {
		acc, err := NewStandard(1, testDigest, 500)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			acc.Deposit(999999999999999999)
			assert.GreaterOrEqual(t, acc.GetBalance(), int64(0))
		}
		assert.Equal(t, int64(500+9*999999999999999999), acc.GetBalance())
	})

	t.Run("OverdrawnAcceptsMaxAmount", func(t *testing.T) {
		acc, err := NewOverdraft(2, testDigest, -100, 100)
		require.NoError(t, err)

		assert.True(t, acc.Deposit(math.MaxInt64))
		assert.Equal(t, int64(math.MaxInt64-100), acc.GetBalance())
	})
}

func TestAccount_Withdraw_OverdraftLargeValues(t *testing.T) {
	acc, err := NewOverdraft(2, testDigest, math.MaxInt64-5, math.MaxInt64)
	require.NoError(t, err)

	assert.True(t, acc.Withdraw(math.MaxInt64))
	assert.Equal(t, int64(-5), acc.GetBalance())
}

func TestAccount_Withdraw_Standard(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		wantOK      bool
		wantBalance int64
	}{
		{"negative", -10, false, 100},
		{"zero", 0, true, 100},
		{"partial", 40, true, 60},
		{"exact balance", 100, true, 0},
		{"over balance", 101, false, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewStandard(1, testDigest, 100)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOK, acc.Withdraw(tt.amount))
			assert.Equal(t, tt.wantBalance, acc.GetBalance())
		})
	}
}

func TestAccount_Withdraw_Overdraft(t *testing.T) {
	t.Run("IntoOverdraftThenBlocked", func(t *testing.T) {
		acc, err := NewOverdraft(2, testDigest, 1000, 500)
		require.NoError(t, err)

		assert.True(t, acc.Withdraw(1500))
		assert.Equal(t, int64(-500), acc.GetBalance())

		assert.False(t, acc.Withdraw(1), "would exceed -500")
		assert.Equal(t, int64(-500), acc.GetBalance())
	})

	t.Run("BeyondLimit", func(t *testing.T) {
		acc, err := NewOverdraft(2, testDigest, 100, 50)
		require.NoError(t, err)

		assert.False(t, acc.Withdraw(151))
		assert.Equal(t, int64(100), acc.GetBalance())
	})

	t.Run("Negative", func(t *testing.T) {
		acc, err := NewOverdraft(2, testDigest, 100, 50)
		require.NoError(t, err)

		assert.False(t, acc.Withdraw(-1))
		assert.Equal(t, int64(100), acc.GetBalance())
	})

	t.Run("BalanceNeverBelowLimit", func(t *testing.T) {
		acc, err := NewOverdraft(2, testDigest, 30, 70)
		require.NoError(t, err)

		for _, amt := range []int64{20, 35, 40, 10, 5, 1} {
			acc.Withdraw(amt)
			assert.GreaterOrEqual(t, acc.GetBalance(), -acc.OverdraftLimit)
		}
	})
}

func TestAccount_Withdraw_Limited(t *testing.T) {
	t.Run("FourthWithdrawalFails", func(t *testing.T) {
		acc, err := NewWithdrawalLimited(3, testDigest, 1000)
		require.NoError(t, err)

		for i := 0; i < MaxWithdrawalsPerDay; i++ {
			require.True(t, acc.Withdraw(200), "withdrawal %d", i+1)
		}
		assert.Equal(t, int64(400), acc.GetBalance())
		assert.Equal(t, 0, acc.WithdrawalsLeft())

		assert.False(t, acc.Withdraw(100))
		assert.Equal(t, int64(400), acc.GetBalance())
		assert.Equal(t, MaxWithdrawalsPerDay, acc.WithdrawalsToday)
	})

	t.Run("InsufficientFundsDoesNotConsumeWithdrawal", func(t *testing.T) {
		acc, err := NewWithdrawalLimited(3, testDigest, 50)
		require.NoError(t, err)

		assert.False(t, acc.Withdraw(51))
		assert.Equal(t, 0, acc.WithdrawalsToday)
		assert.Equal(t, MaxWithdrawalsPerDay, acc.WithdrawalsLeft())
	})

	t.Run("NegativeDoesNotConsumeWithdrawal", func(t *testing.T) {
		acc, err := NewWithdrawalLimited(3, testDigest, 50)
		require.NoError(t, err)

		assert.False(t, acc.Withdraw(-5))
		assert.Equal(t, 0, acc.WithdrawalsToday)
	})
}

func TestAccount_WithdrawalsLeft_UnlimitedKinds(t *testing.T) {
	acc, err := NewStandard(1, testDigest, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, acc.WithdrawalsLeft())
}

func TestAccount_SetOverdraftLimit(t *testing.T) {
	od, err := NewOverdraft(1, testDigest, 0, 100)
	require.NoError(t, err)
	assert.True(t, od.SetOverdraftLimit(800))
	assert.Equal(t, int64(800), od.OverdraftLimit)
	assert.False(t, od.SetOverdraftLimit(-1))
	assert.Equal(t, int64(800), od.OverdraftLimit)

	std, err := NewStandard(2, testDigest, 0)
	require.NoError(t, err)
	assert.False(t, std.SetOverdraftLimit(100))
	assert.Equal(t, int64(0), std.OverdraftLimit)
}

func TestAccount_SnapshotRestore(t *testing.T) {
	acc, err := NewWithdrawalLimited(9, testDigest, 500)
	require.NoError(t, err)

	snap := acc.Snapshot()
	require.True(t, acc.Withdraw(100))
	acc.CredentialDigest = "other"

	acc.Restore(snap)
	assert.Equal(t, int64(500), acc.Balance)
	assert.Equal(t, 0, acc.WithdrawalsToday)
	assert.Equal(t, testDigest, acc.CredentialDigest)
}

func TestErrMalformedRow_Is(t *testing.T) {
	err := error(ErrMalformedRow{Line: 4, Reason: "bad balance"})
	assert.ErrorIs(t, err, ErrMalformedRow{})
	assert.ErrorIs(t, err, ErrMalformedRow{Line: 4})
	assert.NotErrorIs(t, err, ErrMalformedRow{Line: 5})
	assert.Equal(t, "malformed account row 4: bad balance", err.Error())
}
