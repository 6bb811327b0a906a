package entity

type Order struct {
	ID       int    `json:"id"`
	UserID   int    `json:"user_id"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`

	// Username is the owner's username, loaded alongside the order.
	// Nil when the owning user row is missing.
	Username *string `json:"-"`
}

// CreateOrderRequest is the request payload for creating an order.
// Quantity is a pointer so an absent field can be told apart from zero.
type CreateOrderRequest struct {
	Item     string `json:"item"`
	Quantity *int   `json:"quantity"`

	// IdempotentKey comes from the Idempotent-Key header, not the body.
	IdempotentKey string `json:"-"`
}

// OrderResponse is the only wire representation of an order. The user
// field carries the owner's username, or null if the owner is missing.
type OrderResponse struct {
	ID       int     `json:"id"`
	Item     string  `json:"item"`
	Quantity int     `json:"quantity"`
	User     *string `json:"user"`
}

func (o *Order) Response() OrderResponse {
	return OrderResponse{
		ID:       o.ID,
		Item:     o.Item,
		Quantity: o.Quantity,
		User:     o.Username,
	}
}

/*
Mysql Schema:

CREATE TABLE orders (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	item VARCHAR(100) NOT NULL,
	quantity INT NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);
*/
