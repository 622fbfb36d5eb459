package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyToken              = "token"
	KeyEmail              = "email"
	KeyUsername           = "username"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyPathValues         = "pathValues"
	KeyDbURL              = "dbUrl"
	KeyCacheKey           = "cacheKey"
	KeyJsonCache          = "jsonCache"
	KeyUserID             = "userId"
	KeyProductID          = "productId"
	KeyProduct            = "product"
	KeyProducts           = "products"
	KeyCategory           = "category"
	KeyCart               = "cart"
	KeyCartLine           = "cartLine"
	KeyCartLines          = "cartLines"
	KeyCartLineQuantity   = "cartLineQuantity"
	KeyOrderID            = "orderId"
	KeyOrder              = "order"
	KeyOrders             = "orders"
	KeyOrderItems         = "orderItems"
	KeyOrderTotal         = "orderTotal"
	KeyAttempt            = "attempt"
	KeyEvent              = "event"
	KeyEventDriver        = "eventDriver"
	KeyTopic              = "topic"
	KeyFilename           = "filename"
	KeyStatusCode         = "statusCode"
)
