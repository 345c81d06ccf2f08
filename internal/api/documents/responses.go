package documents

type UploadResponse struct {
	DocID       string `json:"docId"`
	FileName    string `json:"fileName"`
	Type        string `json:"type"`
	ChunksCount int    `json:"chunksCount"`
}

type DocumentSummary struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	FileName  string `json:"fileName"`
	FileSize  int64  `json:"fileSize"`
	CreatedAt string `json:"createdAt"`
}
