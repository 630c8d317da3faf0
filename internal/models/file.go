package models

// RemoteFile is one entry of a Drive folder listing
type RemoteFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// FetchedFile is a remote file fully loaded into memory
type FetchedFile struct {
	Name     string
	MimeType string
	Content  []byte
}
