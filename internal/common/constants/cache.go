package constants

const (
	CacheKeyProduct           = "products:%s"
	CacheKeyUserOrders        = "orders:user:%s:v%d"
	CacheKeyUserOrdersVersion = "orders:user:%s:version"
)

const EventOrderCreated = "order.created"
