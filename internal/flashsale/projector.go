package flashsale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ListActive memetakan ledger aktif saat ini ke view katalog. Baca murni,
// tanpa lock, dihitung ulang setiap panggilan.
func (s *Service) ListActive(ctx context.Context) ([]SaleView, error) {
	now := s.Clock.Now()
	sales, err := s.Store.ListActiveSales(ctx, now)
	if err != nil {
		return nil, err
	}
	views := make([]SaleView, 0, len(sales))
	for _, sale := range sales {
		views = append(views, buildView(sale, now))
	}
	return views, nil
}

func buildView(s ActiveSale, now time.Time) SaleView {
	return SaleView{
		LedgerID:           s.Ledger.ID,
		ProductID:          s.Ledger.ProductID,
		ProductName:        s.Product.Name,
		Description:        s.Product.Description,
		RegularPrice:       s.Product.RegularPrice,
		FlashPrice:         s.Ledger.FlashPrice,
		DiscountPercentage: DiscountPercent(s.Product.RegularPrice, s.Ledger.FlashPrice),
		AvailableUnits:     s.Ledger.TotalUnits - s.Ledger.SoldUnits,
		TotalUnits:         s.Ledger.TotalUnits,
		StartTime:          s.Ledger.StartsAt.Format("15:04:05"),
		EndTime:            s.Ledger.EndsAt.Format("15:04:05"),
		RemainingSeconds:   remainingSeconds(now, s.Ledger.EndsAt),
	}
}

// DiscountPercent = (regular - flash) / regular * 100, half-up 2 desimal.
// Pembagian dibulatkan half-up ke 4 desimal dulu, sama seperti perhitungan
// harga di sisi authoring, supaya angkanya exact dan stabil.
func DiscountPercent(regular, flash decimal.Decimal) decimal.Decimal {
	if regular.IsZero() {
		return decimal.Zero.Round(2)
	}
	return regular.Sub(flash).DivRound(regular, 4).Mul(hundred).Round(2)
}

func remainingSeconds(now, end time.Time) int64 {
	secs := int64(end.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
