package handlers

type TagsResponse struct {
	AlbumArtist string `json:"albumArtist"`
	Album       string `json:"album"`
	CoverArt    string `json:"coverArt"`
}
