package web

import "strconv"

const (
	LoginPath  = "/accounts/login/"
	LogoutPath = "/accounts/logout/"
)

// BookListPath is the URL of the list view.
func BookListPath() string {
	return "/books/"
}

// BookDetailPath is the URL of the detail view for id.
func BookDetailPath(id int64) string {
	return "/books/" + strconv.FormatInt(id, 10) + "/"
}
