package model

// Image points at an uploaded file in object storage. StorageID is the
// S3 key needed to delete or replace the object later, URL is what
// clients embed directly.
type Image struct {
	URL       string `json:"url"`
	StorageID string `json:"storageId,omitempty"`
}

// DefaultUserPhoto is assigned on signup when no photo was uploaded.
// It has no storage ID because nothing was put to S3 for it.
var DefaultUserPhoto = Image{URL: "/default-user.jpg"}
