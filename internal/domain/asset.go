package domain

// AssetKind enumerates uploaded asset types.
type AssetKind string

const AssetKindDesign AssetKind = "design"

// Asset describes a blob after it has been uploaded to the blob store.
type Asset struct {
	Kind      AssetKind `json:"kind"`
	SecureURL string    `json:"secure_url"`
	Key       string    `json:"key,omitempty"`
	MIME      string    `json:"mime"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Bytes     int64     `json:"bytes"`
	Checksum  string    `json:"checksum,omitempty"`
}
