package models

import "time"

// Read-only view models returned by the backend API. The client never
// mutates these outside of the screens that render them.

type Document struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CategoryID    int64     `json:"categoryId"`
	CategoryName  string    `json:"categoryName"`
	UploaderID    int64     `json:"uploaderId"`
	UploaderName  string    `json:"uploaderName"`
	FileURL       string    `json:"fileUrl"`
	DownloadCount int       `json:"downloadCount"`
	PointsCost    int       `json:"pointsCost"`
	IsApproved    bool      `json:"isApproved"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type School struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type Post struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	Content      string    `json:"content"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Comment struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"documentId"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type FollowEntry struct {
	UserID   int64  `json:"userId"`
	FullName string `json:"fullName"`
	Level    int    `json:"level"`
	Points   int    `json:"points"`
}
