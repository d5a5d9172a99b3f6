package httpx

import (
	"net/http"
	"net/url"
	"strconv"

	"animal-shelter-api/internal/platform/paging"
)

// BaseURL es scheme://host del request, respetando X-Forwarded-Proto.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

func SelfLink(r *http.Request, collection string, id int64) string {
	return BaseURL(r) + "/" + collection + "/" + strconv.FormatInt(id, 10)
}

// Links de una página. previous solo existe si el request trajo cursor.
type Links struct {
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

func PageLinks(r *http.Request, collection, nextCursor string) Links {
	base := BaseURL(r) + "/" + collection
	var l Links
	if c := r.URL.Query().Get("cursor"); c != "" {
		l.Previous = base + "?cursor=" + url.QueryEscape(c)
	}
	if nextCursor != "" {
		l.Next = base + "?cursor=" + url.QueryEscape(nextCursor)
	}
	return l
}

// ParsePage lee ?cursor= y usa limit como tamaño de página.
func ParsePage(r *http.Request, limit int) (paging.Page, error) {
	return paging.Parse(r.URL.Query().Get("cursor"), limit)
}
