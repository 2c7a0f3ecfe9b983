// model/book.go
package model

import "time"

type Book struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}
