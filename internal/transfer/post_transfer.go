package transfer

// PostContent is the payload the content pipeline submits with a new post.
// The queue stores it as an opaque blob; only the formatter reads it back.
type PostContent struct {
	Caption  string   `json:"caption"`
	Topic    string   `json:"topic"`
	Hashtags []string `json:"hashtags,omitempty"`
	Template string   `json:"template,omitempty"`
	Theme    string   `json:"theme,omitempty"`
}

// PostCreation is the request body of POST /api/posts/create.
type PostCreation struct {
	Caption   string   `json:"caption"`
	Topic     string   `json:"topic"`
	Hashtags  []string `json:"hashtags,omitempty"`
	Template  string   `json:"template,omitempty"`
	Theme     string   `json:"theme,omitempty"`
	ImagePath string   `json:"image_path,omitempty"`
	Notify    *bool    `json:"notify,omitempty"`
}
