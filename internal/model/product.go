package model

// Product is a catalog entry from the `products` table.
type Product struct {
    ID         int64   `json:"id"`
    SKU        string  `json:"sku"`
    Name       string  `json:"name"`
    Category   string  `json:"category"`
    PriceCents int64   `json:"priceCents"`
    Image      string  `json:"image"`
    Badge      *string `json:"badge,omitempty"`
    Stock      int     `json:"stock"`
}

// InventoryItem is the stock view returned to integration clients.
type InventoryItem struct {
    ID    int64  `json:"id"`
    SKU   string `json:"sku"`
    Name  string `json:"name"`
    Stock int    `json:"stock"`
}
