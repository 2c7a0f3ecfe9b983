package swap

type CreateSwapReq struct {
	BookID        int64   `json:"book_id" validate:"required,gt=0"`
	OfferedBookID *int64  `json:"offered_book_id,omitempty" validate:"omitempty,gt=0"`
	Message       *string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

type CounterOfferReq struct {
	CounterBookID int64   `json:"counter_book_id" validate:"required,gt=0"`
	Message       *string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

type CompleteSwapReq struct {
	Rating   int     `json:"rating" validate:"required,min=1,max=5"`
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=2000"`
}
