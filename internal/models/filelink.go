package models

// FileLink maps an uploaded attachment (avatar, shared file) to a signed
// retrieval URL and a QR code pointing at it, so mobile clients can scan
// to fetch large files instead of downloading over the chat socket.
type FileLink struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Link    string `json:"link" db:"link"`
	QRLink  string `json:"qrLink" db:"qrlink"`
}
