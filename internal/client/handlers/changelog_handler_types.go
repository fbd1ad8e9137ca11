package handlers

type ChangelogItem struct {
	ParentPath string `json:"parentRelativePath"`
	At         string `json:"at"`
	Path       string `json:"relativePath"`
}

type ChangelogResponse struct {
	Total   int             `json:"total"` // -1 until the first page is loaded
	Loaded  int             `json:"loaded"`
	Loading bool            `json:"loading"`
	HasMore bool            `json:"hasMore"`
	Items   []ChangelogItem `json:"items"`
}
