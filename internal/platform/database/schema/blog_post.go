// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// PostTable represents the 'posts' table
type PostTable struct {
	Table    string
	ID       string
	Created  string
	Content  string
	AuthorID string
}

// Post is the schema definition for posts
var Post = PostTable{
	Table:    "posts",
	ID:       "id",
	Created:  "created",
	Content:  "content",
	AuthorID: "author_id",
}

// Columns returns all standard column names
func (t PostTable) Columns() []string {
	return []string{t.ID, t.Created, t.Content, t.AuthorID}
}
