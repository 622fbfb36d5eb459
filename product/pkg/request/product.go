package request

type InsertProduct struct {
	Title       string `validate:"required,max=255" json:"title"`
	Price       string `validate:"required,price"   json:"price"`
	Description string `json:"description"`
	Image       string `validate:"omitempty,url"    json:"image"`
	Category    string `validate:"omitempty,max=64" json:"category"`
}

type FindProducts struct {
	Category string `validate:"omitempty,max=64" json:"category"`
}
