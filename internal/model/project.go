package model

import "time"

// Project is a single portfolio entry. Thumbnail is an opaque URL into the
// external image host; the server never touches the asset itself.
type Project struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	Thumbnail    string    `json:"thumbnail"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
