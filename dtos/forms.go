package dtos

// Form fields arrive as entered; the handlers trim and validate them so
// they can answer with the storefront's own messages.

type NewsletterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	FarmSize string `json:"farm_size"`
	Tips     bool   `json:"tips"`
	Market   bool   `json:"market"`
	Offers   bool   `json:"offers"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

type SubscriberCountResponse struct {
	Count   int64  `json:"count"`
	Display string `json:"display"`
}

type ContactRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Quantity string `json:"quantity"`
	Message  string `json:"message"`
}

type DraftResponse struct {
	Message string `json:"message"`
}
