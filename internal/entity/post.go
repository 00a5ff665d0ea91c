package entity

import "time"

// ImageRef points at an object in the image store. ID is the provider's
// canonical object key and is what deletion uses; URL is for clients.
type ImageRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Post struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Price            float64    `json:"price"`
	Location         string     `json:"location"`
	Area             float64    `json:"area"`
	CategoryID       string     `json:"categoryId"`
	ServiceBookingID string     `json:"servicesBookingId,omitempty"`
	Images           []ImageRef `json:"images"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// PostDetail is a Post with its references resolved for display.
type PostDetail struct {
	Post
	Owner    *User     `json:"owner,omitempty"`
	Category *Category `json:"category,omitempty"`
}
