package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-flash-sale.git/internal/flashsale"
	kafkax "github.com/ariefcatur/go-flash-sale.git/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

type fakeStore struct {
	orderStatus flashsale.OrderStatus
	orderErr    error
	stock       int
	stockErr    error

	movements   map[string]*Movement // key = movement_type:reference_id
	inserts     int
	existsCalls int
	loseRace    bool // simulasi kalah race: insert jatuh ke DO NOTHING
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orderStatus: flashsale.StatusCompleted,
		stock:       7,
		movements:   map[string]*Movement{},
	}
}

func (f *fakeStore) MovementExists(ctx context.Context, movementType, referenceID string) (bool, error) {
	f.existsCalls++
	_, ok := f.movements[movementType+":"+referenceID]
	return ok, nil
}

func (f *fakeStore) GetOrderStatus(ctx context.Context, orderID string) (flashsale.OrderStatus, error) {
	if f.orderErr != nil {
		return "", f.orderErr
	}
	return f.orderStatus, nil
}

func (f *fakeStore) GetProductStock(ctx context.Context, productID string) (int, error) {
	if f.stockErr != nil {
		return 0, f.stockErr
	}
	return f.stock, nil
}

func (f *fakeStore) InsertMovement(ctx context.Context, m *Movement) (bool, error) {
	f.inserts++
	key := m.MovementType + ":" + m.ReferenceID
	if f.loseRace {
		f.loseRace = false
		f.movements[key] = m // "pemenang lain" yang nulis
		return false, nil
	}
	if _, ok := f.movements[key]; ok {
		return false, nil
	}
	c := *m
	f.movements[key] = &c
	return true, nil
}

func TestReferenceID(t *testing.T) {
	assert.Equal(t, "ORDER_abc-123", ReferenceID("abc-123"))
}

func TestReconcileRecordsMovement(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}

	require.NoError(t, svc.Reconcile(context.Background(), "order-1", "product-1"))

	m, ok := st.movements[MovementFlashSaleOrder+":ORDER_order-1"]
	require.True(t, ok)
	assert.Equal(t, "product-1", m.ProductID)
	assert.Equal(t, -1, m.QuantityChange)
	// stok sudah dikurangi purchase tx; before direkonstruksi dari after
	assert.Equal(t, 8, m.StockBefore)
	assert.Equal(t, 7, m.StockAfter)
}

func TestReconcileIdempotent(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}

	require.NoError(t, svc.Reconcile(context.Background(), "order-1", "product-1"))
	require.NoError(t, svc.Reconcile(context.Background(), "order-1", "product-1"))

	// dua kali panggil, tetap satu baris dan insert kedua tidak dicoba
	assert.Len(t, st.movements, 1)
	assert.Equal(t, 1, st.inserts)
}

func TestReconcileSkipsNonCompleted(t *testing.T) {
	st := newFakeStore()
	st.orderStatus = flashsale.StatusCancelled
	svc := &Service{Store: st}

	require.NoError(t, svc.Reconcile(context.Background(), "order-1", "product-1"))
	assert.Empty(t, st.movements)
}

func TestReconcileOrderNotFound(t *testing.T) {
	st := newFakeStore()
	st.orderErr = flashsale.ErrOrderNotFound
	svc := &Service{Store: st}

	err := svc.Reconcile(context.Background(), "order-x", "product-1")
	require.ErrorIs(t, err, flashsale.ErrOrderNotFound)
	assert.Empty(t, st.movements)
}

func TestReconcileProductNotFound(t *testing.T) {
	st := newFakeStore()
	st.stockErr = flashsale.ErrProductNotFound
	svc := &Service{Store: st}

	err := svc.Reconcile(context.Background(), "order-1", "product-x")
	require.ErrorIs(t, err, flashsale.ErrProductNotFound)
}

func completedEvent(eventID, orderID, productID string) kafkago.Message {
	env := flashsale.Envelope{
		EventID:   eventID,
		EventType: flashsale.EventOrderCompleted,
		Payload: kafkax.MustMarshal(flashsale.OrderCompletedPayload{
			OrderID:   orderID,
			ProductID: productID,
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

// Delivery pertama gagal transient -> offset tidak di-commit. Redelivery
// event yang sama harus tetap sampai ke Reconcile dan nulis movement,
// bukan ketelan dedup.
func TestHandleOrderCompletedRetryAfterFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	st := newFakeStore()
	st.orderErr = errors.New("connection reset")
	svc := &Service{Store: st, Redis: rdb}

	msg := completedEvent("ev-1", "order-1", "product-1")
	require.Error(t, svc.HandleOrderCompleted(context.Background(), msg))
	assert.Empty(t, st.movements)

	// store pulih, Kafka kirim ulang event yang sama
	st.orderErr = nil
	require.NoError(t, svc.HandleOrderCompleted(context.Background(), msg))

	m, ok := st.movements[MovementFlashSaleOrder+":ORDER_order-1"]
	require.True(t, ok, "redelivery harus nulis movement")
	assert.Equal(t, "product-1", m.ProductID)
}

func TestHandleOrderCompletedDedupAfterSuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	st := newFakeStore()
	svc := &Service{Store: st, Redis: rdb}

	msg := completedEvent("ev-1", "order-1", "product-1")
	require.NoError(t, svc.HandleOrderCompleted(context.Background(), msg))
	calls := st.existsCalls

	// event dobel setelah sukses: berhenti di fast path Redis,
	// store tidak disentuh lagi
	require.NoError(t, svc.HandleOrderCompleted(context.Background(), msg))
	assert.Equal(t, calls, st.existsCalls)
	assert.Len(t, st.movements, 1)
	assert.Equal(t, 1, st.inserts)
}

func TestHandleOrderCompletedIgnoresOtherEvents(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}

	env := flashsale.Envelope{EventID: "ev-x", EventType: "SomethingElse"}
	msg := kafkago.Message{Value: kafkax.MustMarshal(env)}
	require.NoError(t, svc.HandleOrderCompleted(context.Background(), msg))
	assert.Empty(t, st.movements)
}

func TestReconcileLosingRaceIsBenign(t *testing.T) {
	st := newFakeStore()
	st.loseRace = true
	svc := &Service{Store: st}

	// duplikat yang kalah di unique constraint bukan error
	require.NoError(t, svc.Reconcile(context.Background(), "order-1", "product-1"))
	assert.Len(t, st.movements, 1)
}
