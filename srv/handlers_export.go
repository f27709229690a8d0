package srv

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/opd-ai/bookforge/bookcompiler"
)

// handleExport renders the whole document before writing anything, so a
// failure can still be reported as a JSON 500.
func (s *Server) handleExport(format bookcompiler.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, err := s.ownedBook(r, "export")
		if err != nil {
			s.fail(w, r, err)
			return
		}

		snapshot := book.Snapshot()
		// Covers are stored as "/uploads/<name>"; the compiler resolves
		// them under UploadsDir.
		snapshot.CoverImagePath = strings.TrimPrefix(snapshot.CoverImagePath, uploadsPrefix)

		res, err := s.compiler.Compile(snapshot, format)
		if err != nil {
			s.fail(w, r, newAPIError(http.StatusInternalServerError, "Server Error during document export", err))
			return
		}

		w.Header().Set("Content-Type", res.MimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(res.Data); err != nil {
			s.log.Warn("writing export", "book_id", book.ID, "error", err)
		}
	}
}
