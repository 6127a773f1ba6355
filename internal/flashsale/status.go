package flashsale

type OrderStatus string

const (
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// COMPLETED boleh dibatalkan (refund flow); CANCELLED terminal.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusCompleted: {StatusCancelled: true},
	StatusCancelled: {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}
