package models

import "time"

// PostInput represents a blog post create/update payload
type PostInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// PostResponse is the client-visible shape of a blog post
type PostResponse struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Category   string     `json:"category"`
	AuthorName string     `json:"authorName"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// PostFilter holds the recognized listing query parameters.
// Empty string filters are ignored.
type PostFilter struct {
	Author     string
	Tag        string
	Category   string
	Search     string
	SortBy     string
	Descending bool
	PageNumber int
	PageSize   int
}

// PagedResult is a bounded slice of the filtered/sorted result set
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"totalItems"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}
