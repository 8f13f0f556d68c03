package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jjtimmons/seqcmp/internal/align"
	"github.com/jjtimmons/seqcmp/internal/history"
	"github.com/jjtimmons/seqcmp/internal/metrics"
	"github.com/jjtimmons/seqcmp/internal/output"
	"github.com/jjtimmons/seqcmp/internal/render"
	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/jjtimmons/seqcmp/internal/session"
)

var errNoHistory = errors.New("history is not kept by this server")

const noRecordsMessage = "No proteins found in file."

type recordsResponse struct {
	Source  string       `json:"source"`
	Records []seq.Record `json:"records"`
	Message string       `json:"message,omitempty"`
}

type selectionRequest struct {
	Primary []string `json:"primary"`
	Test    []string `json:"test"`
}

type selectionResponse struct {
	Primary []seq.Record `json:"primary"`
	Test    []seq.Record `json:"test"`
	Summary string       `json:"summary"`
	Ready   bool         `json:"ready"`
}

type compareResponse struct {
	Empty       bool                `json:"empty"`
	Message     string              `json:"message,omitempty"`
	HistoryID   string              `json:"history_id,omitempty"`
	Comparisons []output.Comparison `json:"comparisons"`
	Text        string              `json:"text"`
}

type sequenceInput struct {
	Name     string `json:"name"`
	Sequence string `json:"sequence" binding:"required,residues"`
}

type alignRequest struct {
	Primary sequenceInput `json:"primary"`
	Test    sequenceInput `json:"test"`
}

type alignResponse struct {
	output.Comparison
	Text string `json:"text"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRecords(c *gin.Context) {
	c.JSON(http.StatusOK, recordsResponse{
		Source:  s.session.Source(),
		Records: nonNil(s.session.Records()),
	})
}

// loadRecords replaces the session's records with the FASTA in the body.
// A file without any sequences still replaces them, leaving nothing loaded.
func (s *Server) loadRecords(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
	recs, err := seq.ParseFASTA(body)
	var msg string
	switch {
	case errors.Is(err, seq.ErrNoRecords):
		recs, msg = []seq.Record{}, noRecordsMessage
	case err != nil:
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	source := c.DefaultQuery("source", "upload")
	if err := s.session.Load(source, recs); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("loaded records", "source", source, "records", len(recs))

	c.JSON(http.StatusOK, recordsResponse{Source: source, Records: recs, Message: msg})
}

func (s *Server) getSelection(c *gin.Context) {
	c.JSON(http.StatusOK, s.selection())
}

// putSelection replaces both groups. Each entry is a record ID, a record name
// or "all".
func (s *Server) putSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	recs := s.session.Records()
	primary, err := session.Resolve(recs, req.Primary)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	test, err := session.Resolve(recs, req.Test)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	if err := s.session.SetSelection(session.Primary, primary); err != nil {
		s.fail(c, http.StatusConflict, err)
		return
	}
	if err := s.session.SetSelection(session.Test, test); err != nil {
		s.fail(c, http.StatusConflict, err)
		return
	}

	c.JSON(http.StatusOK, s.selection())
}

func (s *Server) selection() selectionResponse {
	return selectionResponse{
		Primary: nonNil(s.session.Selected(session.Primary)),
		Test:    nonNil(s.session.Selected(session.Test)),
		Summary: s.session.Summary(),
		Ready:   s.session.Ready(),
	}
}

// compare builds the report for the current selection.
func (s *Server) compare(c *gin.Context) {
	start := time.Now()
	r, e, err := s.session.Compare(c.Request.Context())
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}
	metrics.ObserveReport(r, time.Since(start))

	if r.Empty() {
		c.JSON(http.StatusOK, compareResponse{
			Empty:       true,
			Message:     render.NoSelection,
			Comparisons: []output.Comparison{},
		})
		return
	}

	resp := compareResponse{
		Comparisons: output.NewDocument(r).Comparisons,
		Text:        r.String(),
	}
	if e != nil {
		resp.HistoryID = e.ID
	}
	c.JSON(http.StatusOK, resp)
}

// align compares two sequences from the body, outside of the session.
func (s *Server) align(c *gin.Context) {
	var req alignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	r, err := report.Build(report.Selection{
		Primaries: []seq.Record{req.Primary.record("primary")},
		Tests:     []seq.Record{req.Test.record("test")},
	})
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}
	metrics.ObserveReport(r, time.Since(start))

	c.JSON(http.StatusOK, alignResponse{
		Comparison: output.NewDocument(r).Comparisons[0],
		Text:       r.String(),
	})
}

func (in sequenceInput) record(id string) seq.Record {
	name := in.Name
	if name == "" {
		name = id
	}
	return seq.Record{ID: id, Name: name, Seq: seq.Normalize(in.Sequence)}
}

func (s *Server) listHistory(c *gin.Context) {
	store := s.session.History()
	if store == nil {
		s.fail(c, http.StatusNotFound, errNoHistory)
		return
	}

	entries, err := store.List()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(entries))
}

func (s *Server) getHistory(c *gin.Context) {
	e, ok := s.entry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) putNotes(c *gin.Context) {
	store := s.session.History()
	if store == nil {
		s.fail(c, http.StatusNotFound, errNoHistory)
		return
	}

	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	e, err := store.SetNotes(c.Param("id"), req.Notes)
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// exportHistory rebuilds an entry's report, notes included, as a text file.
func (s *Server) exportHistory(c *gin.Context) {
	e, ok := s.entry(c)
	if !ok {
		return
	}

	text, err := history.Export(e)
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.exportFile))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (s *Server) deleteHistory(c *gin.Context) {
	store := s.session.History()
	if store == nil {
		s.fail(c, http.StatusNotFound, errNoHistory)
		return
	}

	if err := store.Delete(c.Param("id")); err != nil {
		s.fail(c, statusOf(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// entry looks up the history entry named in the path, responding with an
// error if there isn't one.
func (s *Server) entry(c *gin.Context) (*history.Entry, bool) {
	store := s.session.History()
	if store == nil {
		s.fail(c, http.StatusNotFound, errNoHistory)
		return nil, false
	}

	e, err := store.Get(c.Param("id"))
	if err != nil {
		s.fail(c, statusOf(err), err)
		return nil, false
	}
	return e, true
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrUnknownRecord), errors.Is(err, seq.ErrNoRecords):
		return http.StatusBadRequest
	case errors.Is(err, align.ErrEmptySequence):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
