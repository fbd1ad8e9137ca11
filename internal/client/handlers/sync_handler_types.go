package handlers

type SyncResponse struct {
	Code string `json:"code"`
	ID   string `json:"id"`
}
