package domain

import (
	"net/url"
	"strconv"
)

// QueryResult - одна закоммиченная страница (или накопленные страницы) выдачи.
type QueryResult struct {
	Items      []Property `json:"results"`
	TotalCount int        `json:"count"`
	Next       string     `json:"next,omitempty"`
	Previous   string     `json:"previous,omitempty"`
	Page       *int       `json:"page,omitempty"`
	TotalPages *int       `json:"total_pages,omitempty"`
}

// HasNext - есть ли у результата следующая страница.
func (r QueryResult) HasNext() bool {
	return r.Next != ""
}

// Clone копирует результат, чтобы читатели не делили слайс с оркестратором.
func (r QueryResult) Clone() QueryResult {
	c := r
	if r.Items != nil {
		c.Items = make([]Property, len(r.Items))
		copy(c.Items, r.Items)
	}
	c.Page = cloneInt(r.Page)
	c.TotalPages = cloneInt(r.TotalPages)
	return c
}

// PageFromURL достает номер страницы из параметра `page` ссылки пагинации.
// Ссылка без `page` означает первую страницу (nil, true).
func PageFromURL(raw string) (*int, bool) {
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	p := u.Query().Get(FilterPage)
	if p == "" {
		return nil, true
	}
	n, err := strconv.Atoi(p)
	if err != nil || n < 1 {
		return nil, false
	}
	return &n, true
}
