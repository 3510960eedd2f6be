package core

// File is one named blob committed to a memory space.
// The service stores episodic memory under "episodic.data" and character
// memory under "character.data".
type File struct {
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

// Well-known file names inside a memory space.
const (
	EpisodicFile  = "episodic.data"
	CharacterFile = "character.data"
)

// ListOptions carries the optional paging controls shared by dashboard and
// marketplace listings. Values are passed through to the service verbatim.
type ListOptions struct {
	Paginate string
	Sort     string
	Filters  string
}

// Params renders the non-empty options as query parameters.
func (o ListOptions) Params() map[string]string {
	params := map[string]string{}
	if o.Paginate != "" {
		params["paginate"] = o.Paginate
	}
	if o.Sort != "" {
		params["sort"] = o.Sort
	}
	if o.Filters != "" {
		params["filters"] = o.Filters
	}
	return params
}
