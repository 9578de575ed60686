package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/proposal-engine/internal/imaging"
	"github.com/ziadkadry99/proposal-engine/internal/server"
	"github.com/ziadkadry99/proposal-engine/internal/session"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func pageIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, badRequest("invalid page index %q", chi.URLParam(r, "index"))
	}
	return i, nil
}

type sessionInfo struct {
	ID          string `json:"id"`
	HasTemplate bool   `json:"has_template"`
	Pages       int    `json:"pages"`
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	e := engineOf(r)
	info := sessionInfo{ID: w.Header().Get(server.SessionHeader), HasTemplate: e.HasTemplate()}
	if info.HasTemplate {
		if pages, err := e.Pages(); err == nil {
			info.Pages = len(pages)
		}
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	text, err := engineOf(r).Template()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, text)
}

func (h *Handler) putTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUpload()))
	if err != nil {
		writeError(w, badRequest("reading template: %v", err))
		return
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		writeError(w, badRequest("empty template"))
		return
	}
	if err := engineOf(r).ReplaceTemplate(string(data)); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) listPages(w http.ResponseWriter, r *http.Request) {
	pages, err := engineOf(r).Pages()
	if err != nil {
		writeError(w, err)
		return
	}
	if pages == nil {
		pages = []session.PageInfo{}
	}
	writeJSON(w, http.StatusOK, pages)
}

func (h *Handler) addPage(w http.ResponseWriter, r *http.Request) {
	id, err := engineOf(r).AddPage()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"block_id": id})
}

func (h *Handler) addMarkdownPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Markdown string `json:"markdown"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Markdown) == "" {
		writeError(w, badRequest("markdown is required"))
		return
	}
	if err := engineOf(r).AddMarkdownPage(req.Markdown); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *Handler) setPageEnabled(w http.ResponseWriter, r *http.Request) {
	i, err := pageIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if req.Enabled == nil {
		writeError(w, badRequest("enabled is required"))
		return
	}
	if err := engineOf(r).SetPageEnabled(i, *req.Enabled); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) movePage(w http.ResponseWriter, r *http.Request) {
	i, err := pageIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if err := engineOf(r).MovePage(i, req.Delta); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) duplicatePage(w http.ResponseWriter, r *http.Request) {
	i, err := pageIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := engineOf(r).DuplicatePage(i); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *Handler) deletePage(w http.ResponseWriter, r *http.Request) {
	i, err := pageIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := engineOf(r).DeletePage(i); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) listBlocks(w http.ResponseWriter, r *http.Request) {
	i, err := pageIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	blocks, err := engineOf(r).Blocks(i)
	if err != nil {
		writeError(w, err)
		return
	}
	if blocks == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (h *Handler) addBlock(w http.ResponseWriter, r *http.Request) {
	i, err := pageIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := engineOf(r).AddBlock(i)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"block_id": id})
}

func (h *Handler) getBlock(w http.ResponseWriter, r *http.Request) {
	b, err := engineOf(r).Block(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) saveBlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if err := engineOf(r).SaveBlock(chi.URLParam(r, "id"), req.Title, req.Body); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) deleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := engineOf(r).DeleteBlock(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

type regionBody struct {
	HTML string `json:"html"`
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := engineOf(r).Tables()
	if err != nil {
		writeError(w, err)
		return
	}
	if tables == nil {
		tables = []int{}
	}
	writeJSON(w, http.StatusOK, tables)
}

func tableNumber(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		return 0, badRequest("invalid table number %q", chi.URLParam(r, "n"))
	}
	return n, nil
}

func (h *Handler) getTable(w http.ResponseWriter, r *http.Request) {
	n, err := tableNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}
	html, err := engineOf(r).Table(n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regionBody{HTML: html})
}

func (h *Handler) setTable(w http.ResponseWriter, r *http.Request) {
	n, err := tableNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req regionBody
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if err := engineOf(r).SetTable(n, req.HTML); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) listIconGroups(w http.ResponseWriter, r *http.Request) {
	keys, err := engineOf(r).IconGroups()
	if err != nil {
		writeError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *Handler) getIconGroup(w http.ResponseWriter, r *http.Request) {
	html, err := engineOf(r).IconGroup(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regionBody{HTML: html})
}

func (h *Handler) setIconGroup(w http.ResponseWriter, r *http.Request) {
	var req regionBody
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if err := engineOf(r).SetIconGroup(chi.URLParam(r, "key"), req.HTML); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) getLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engineOf(r).Layout())
}

func (h *Handler) setLayout(w http.ResponseWriter, r *http.Request) {
	var values map[string]int
	if err := decodeJSON(r, &values, false); err != nil {
		writeError(w, err)
		return
	}
	e := engineOf(r)
	if err := e.SetLayout(values); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Layout())
}

func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engineOf(r).SlotImages())
}

// formFiles reads the uploaded files of field from a multipart request.
func (h *Handler) formFiles(w http.ResponseWriter, r *http.Request, field string) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload())
	if err := r.ParseMultipartForm(h.maxUpload()); err != nil {
		return nil, badRequest("reading upload: %v", err)
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, badRequest("no %q file in upload", field)
	}
	return files, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) uploadSlot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, ok := session.LookupSlot(key); !ok {
		writeError(w, fmt.Errorf("%w: %s", session.ErrUnknownSlot, key))
		return
	}
	files, err := h.formFiles(w, r, "file")
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := readFormFile(files[0])
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := engineOf(r).SaveSlotImage(key, files[0].Filename, data); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) clearSlot(w http.ResponseWriter, r *http.Request) {
	if err := engineOf(r).ClearSlotImage(chi.URLParam(r, "key")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

type attachmentInfo struct {
	Name     string `json:"name"`
	Uploaded bool   `json:"uploaded"`
}

func (h *Handler) listAttachments(w http.ResponseWriter, r *http.Request) {
	e := engineOf(r)
	paths, err := e.Attachments()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]attachmentInfo, 0, len(paths))
	for _, p := range paths {
		out = append(out, attachmentInfo{Name: filepath.Base(p), Uploaded: filepath.Dir(p) == e.UploadsDir()})
	}
	writeJSON(w, http.StatusOK, out)
}

// uploadAttachments stores every readable image of the batch. Files that
// cannot be read or are not images are listed under "failed".
func (h *Handler) uploadAttachments(w http.ResponseWriter, r *http.Request) {
	files, err := h.formFiles(w, r, "file")
	if err != nil {
		writeError(w, err)
		return
	}
	var uploads []session.SourceImage
	var unreadable []string
	for _, fh := range files {
		data, err := readFormFile(fh)
		if err != nil {
			unreadable = append(unreadable, err.Error())
			continue
		}
		uploads = append(uploads, session.SourceImage{Name: fh.Filename, Data: data})
	}
	res, err := engineOf(r).AddAttachments(uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	res.Failed = append(unreadable, res.Failed...)

	status := http.StatusOK
	if len(res.Added) > 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (h *Handler) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := engineOf(r).RemoveAttachment(chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	if h.Builder == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "page extraction is not configured"})
		return
	}
	files, err := h.formFiles(w, r, "file")
	if err != nil {
		writeError(w, err)
		return
	}
	var images []session.SourceImage
	for _, fh := range files {
		data, err := readFormFile(fh)
		if err != nil {
			writeError(w, err)
			return
		}
		images = append(images, session.SourceImage{
			Name: fh.Filename,
			MIME: imaging.MimeType(fh.Filename),
			Data: data,
		})
	}
	res, err := engineOf(r).ExtractPages(r.Context(), h.Builder, images)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// MergeFields fills the empty fields of f from defaults. With f.NoEmail set
// the email stays empty so the email line is removed.
func MergeFields(f, defaults session.Fields) session.Fields {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	out := session.Fields{
		Recipient: pick(f.Recipient, defaults.Recipient),
		Proposer:  pick(f.Proposer, defaults.Proposer),
		Tel:       pick(f.Tel, defaults.Tel),
		Email:     pick(f.Email, defaults.Email),
		Primary:   pick(f.Primary, defaults.Primary),
		Accent:    pick(f.Accent, defaults.Accent),
	}
	if f.NoEmail {
		out.Email, out.NoEmail = "", true
	}
	return out
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	var f session.Fields
	if err := decodeJSON(r, &f, true); err != nil {
		writeError(w, err)
		return
	}
	out, err := engineOf(r).Export(MergeFields(f, h.Defaults), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="proposal.html"`)
	if len(out.Warnings) > 0 {
		w.Header().Set("X-Export-Warnings", strconv.Itoa(len(out.Warnings)))
	}
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out.HTML)
}
