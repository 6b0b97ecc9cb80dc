// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination turns "page" and "limit" query parameters into bounded
// OFFSET/LIMIT pairs and describes the resulting page in list responses.
//
// Each listing declares its own [Policy]: the blog index shows short pages of
// posts while the admin user table allows longer ones.
package pagination

import (
	"net/http"
	"strconv"
)

// DefaultPage is the starting page (1-indexed).
const DefaultPage = 1

// Policy bounds the page size of one listing.
type Policy struct {
	// Default applies when the client sends no usable limit.
	Default int
	// Max caps what a client may ask for.
	Max int
}

var (
	// Posts pages the blog index.
	Posts = Policy{Default: 10, Max: 50}

	// Users pages the admin user table.
	Users = Policy{Default: 25, Max: 200}
)

// Params holds the page and limit of one list request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Within returns p with the page raised to 1 and the limit brought inside policy.
// A missing limit takes the default, an excessive one is cut to the maximum.
func (p Params) Within(policy Policy) Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	switch {
	case p.Limit < 1:
		p.Limit = policy.Default
	case p.Limit > policy.Max:
		p.Limit = policy.Max
	}
	return p
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewMeta describes page params of a listing holding total items.
func NewMeta(params Params, total int) Meta {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}

	return Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// FromRequest reads "page" and "limit" from the query string and bounds them by policy.
// Values that are not integers count as missing.
func FromRequest(r *http.Request, policy Policy) Params {
	return Params{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}.Within(policy)
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
