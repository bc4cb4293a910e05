package models

// Category is a blog category as returned by the meta endpoint.
type Category struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Tag is a blog tag as returned by the meta endpoint.
type Tag struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// BlogMeta is the taxonomy the blog exposes for post composition.
type BlogMeta struct {
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
}
