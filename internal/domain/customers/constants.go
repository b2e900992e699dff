package customers

const (
	FilterName     = "name"
	FilterLocation = "location"
	FilterContact  = "contact"

	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusDispatched = "Dispatched"
	OrderStatusDelivered  = "Delivered"

	PaymentModeCash         = "Cash"
	PaymentModeBankTransfer = "Bank Transfer"
	PaymentModeUPI          = "UPI"
	PaymentModeCard         = "Card"
)

var (
	Filters       = []string{FilterName, FilterLocation, FilterContact}
	OrderStatuses = []string{OrderStatusPending, OrderStatusProcessing, OrderStatusDispatched, OrderStatusDelivered}
	PaymentModes  = []string{PaymentModeCash, PaymentModeBankTransfer, PaymentModeUPI, PaymentModeCard}
)
