package validate

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
)

// maxNoteBytes bounds a single journal entry. Generous: the classifier
// truncates its own input, so long notes are allowed but not unbounded.
const maxNoteBytes = 20000

// NoteContent validates a note body.
func NoteContent(v string) error {
	if v == "" {
		return fmt.Errorf("content is required")
	}
	if len(v) > maxNoteBytes {
		return fmt.Errorf("content exceeds %d bytes", maxNoteBytes)
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// PageParams parses ?page= and ?perPage= query parameters. Absent or
// malformed values fall back to defaults via Page.Normalize.
func PageParams(r *http.Request) model.Page {
	var p model.Page
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("perPage")); err == nil {
		p.PerPage = v
	}
	return p.Normalize()
}
