package flashsale

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-flash-sale.git/internal/clock"
)

func TestDiscountPercentExact(t *testing.T) {
	// 30jt -> 25jt = diskon 16.67 (half-up, 2 desimal)
	d := DiscountPercent(decimal.NewFromInt(30_000_000), decimal.NewFromInt(25_000_000))
	assert.Equal(t, "16.67", d.String())
}

func TestDiscountPercentHalfUp(t *testing.T) {
	cases := []struct {
		regular, flash int64
		want           string
	}{
		{100, 75, "25"},
		{200, 199, "0.5"},
		{3, 1, "66.67"},
		{3, 2, "33.33"},
		{100, 100, "0"},
	}
	for _, c := range cases {
		d := DiscountPercent(decimal.NewFromInt(c.regular), decimal.NewFromInt(c.flash))
		assert.Equal(t, c.want, d.String(), "regular=%d flash=%d", c.regular, c.flash)
	}
}

func TestDiscountPercentZeroRegular(t *testing.T) {
	d := DiscountPercent(decimal.Zero, decimal.NewFromInt(10))
	assert.True(t, d.IsZero())
}

func TestRemainingSecondsClamped(t *testing.T) {
	now := testNow
	assert.Equal(t, int64(90), remainingSeconds(now, now.Add(90*time.Second)))
	assert.Equal(t, int64(0), remainingSeconds(now, now))
	// window sudah lewat: tidak boleh negatif
	assert.Equal(t, int64(0), remainingSeconds(now, now.Add(-5*time.Minute)))
}

func TestListActive(t *testing.T) {
	st := newStore()
	st.sales = []ActiveSale{
		{
			Ledger:  *st.ledger,
			Product: *st.product,
		},
	}
	svc := newService(st)

	views, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, "ledger-1", v.LedgerID)
	assert.Equal(t, "product-1", v.ProductID)
	assert.Equal(t, "Laptop Gaming", v.ProductName)
	assert.Equal(t, "16.67", v.DiscountPercentage.String())
	assert.Equal(t, 40, v.AvailableUnits)
	assert.Equal(t, 50, v.TotalUnits)
	assert.Equal(t, "10:00:00", v.StartTime)
	assert.Equal(t, "12:00:00", v.EndTime)
	assert.Equal(t, int64(90*60), v.RemainingSeconds)
}

func TestListActiveRecomputedPerCall(t *testing.T) {
	st := newStore()
	st.sales = []ActiveSale{{Ledger: *st.ledger, Product: *st.product}}
	svc := newService(st)

	first, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// stok ledger berubah di antara dua panggilan; view tidak boleh di-cache
	st.sales[0].Ledger.SoldUnits = 49
	second, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, second[0].AvailableUnits)
}

func TestListActiveExpiredWindow(t *testing.T) {
	st := newStore()
	ledger := *st.ledger
	ledger.EndsAt = testNow.Add(-1 * time.Minute)
	st.sales = []ActiveSale{{Ledger: ledger, Product: *st.product}}
	svc := &Service{Store: st, Clock: clock.Fixed{T: testNow}}

	views, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(0), views[0].RemainingSeconds)
}
