package models

import "time"

type Document struct {
	ID             string
	OrganizationID string
	ProjectID      string
	UploadedBy     string
	Bucket         string
	ObjectKey      string
	Name           string
	Format         string
	SizeBytes      int64
	Checksum       []byte
	Signature      []byte
	CreatedAt      time.Time
}

type Notification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	Type      string
	IsRead    bool
	CreatedAt time.Time
}
