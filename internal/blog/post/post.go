// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package post implements the blog posts written by verified accounts.

Posts can only be changed by their author. Requests for someone else's post
are answered as if the post did not exist.
*/
package post

import "github.com/taibuivan/quill/pkg/timestamp"

// ContentMaxLength bounds a post body in characters.
const ContentMaxLength = 10000

// FieldContent is the JSON field of the post body.
const FieldContent = "content"

// # Domain Entities

// Post is one blog entry.
type Post struct {
	ID       int64               `json:"id"`
	Created  timestamp.Timestamp `json:"created"`
	Content  string              `json:"content"`
	AuthorID int64               `json:"author_id"`

	// Author is resolved for listings and is not stored in the posts table.
	Author string `json:"author,omitempty"`
}
