// Package paging implementa paginación keyset (id > cursor) con cursores opacos.
package paging

import (
	"encoding/base64"
	"strconv"
	"strings"

	"animal-shelter-api/internal/domain/errs"
)

const DefaultLimit = 5

type Page struct {
	After int64
	Limit int
}

// Result es una página ya recortada. Next vacío => no hay más.
type Result[T any] struct {
	Items []T
	Next  string
}

func EncodeCursor(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte("id:" + strconv.FormatInt(id, 10)))
}

func DecodeCursor(cursor string) (int64, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, errs.Invalid("invalid cursor")
	}
	s, ok := strings.CutPrefix(string(raw), "id:")
	if !ok {
		return 0, errs.Invalid("invalid cursor")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, errs.Invalid("invalid cursor")
	}
	return id, nil
}

// Parse arma la Page a partir del cursor de query string.
func Parse(cursor string, limit int) (Page, error) {
	after, err := DecodeCursor(cursor)
	if err != nil {
		return Page{}, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Page{After: after, Limit: limit}, nil
}

// Fetch es lo que se le pide al repo: un elemento extra para saber si hay siguiente.
func (p Page) Fetch() int {
	return p.Limit + 1
}

// Build recorta items (pedidos con Fetch) y calcula el cursor siguiente.
func Build[T any](items []T, p Page, idOf func(T) int64) Result[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) <= p.Limit {
		return Result[T]{Items: items}
	}
	items = items[:p.Limit]
	return Result[T]{
		Items: items,
		Next:  EncodeCursor(idOf(items[len(items)-1])),
	}
}
