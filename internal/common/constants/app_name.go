package constants

const (
	AppShop                = "shop"
	AppUserService         = "user-service"
	AppNotificationService = "notification-service"
	AppProductService      = "product-service"
	AppOrderService        = "order-service"
	AppCartService         = "cart-service"
	AppMainShop            = "main shop"
	AudienceUser           = "audience-user"
)
