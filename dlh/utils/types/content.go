package types

// CourseRequest is used for both create and update; absent fields are left alone on update.
type CourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

type SeedResponse struct {
	Added int `json:"added"`
}

type KnowledgeRequest struct {
	Value string `json:"value"`
}

type KnowledgeImportRequest struct {
	URL string `json:"url"`
}

type KnowledgeResponse struct {
	Value string `json:"value"`
}

type ImageRequest struct {
	Prompt string `json:"prompt"`
}
