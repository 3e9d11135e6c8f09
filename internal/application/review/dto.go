package review

import (
	"time"

	"github.com/bizdir/backend/internal/domain/review"
	"github.com/google/uuid"
)

// CreateReviewInput contains the input for a new review
type CreateReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=120"`
	Content string `json:"content" binding:"required,min=10,max=5000"`
}

// UpdateReviewInput contains the editable review fields
type UpdateReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=120"`
	Content string `json:"content" binding:"required,min=10,max=5000"`
}

// RespondInput contains the owner's reply
type RespondInput struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// ListReviewsInput pages through reviews
type ListReviewsInput struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OwnerResponseDTO is the owner's reply to a review
type OwnerResponseDTO struct {
	Content     string    `json:"content"`
	RespondedAt time.Time `json:"responded_at"`
}

// ReviewResponse is the API view of a review
type ReviewResponse struct {
	ID            uuid.UUID         `json:"id"`
	ListingID     uuid.UUID         `json:"listing_id"`
	AuthorID      uuid.UUID         `json:"author_id"`
	Rating        int               `json:"rating"`
	Title         string            `json:"title,omitempty"`
	Content       string            `json:"content"`
	Status        string            `json:"status"`
	OwnerResponse *OwnerResponseDTO `json:"owner_response,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ToReviewResponse converts a domain review to its response DTO
func ToReviewResponse(r *review.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		ListingID: r.ListingID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Title:     r.Title,
		Content:   r.Content,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.OwnerResponse != nil {
		resp.OwnerResponse = &OwnerResponseDTO{
			Content:     r.OwnerResponse.Content,
			RespondedAt: r.OwnerResponse.RespondedAt,
		}
	}
	return resp
}
