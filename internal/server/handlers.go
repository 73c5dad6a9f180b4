package server

import (
	"errors"
	"fmt"
	"net/http"

	"fjacquet/spend-dashboard/internal/common"
	"fjacquet/spend-dashboard/internal/fileutils"
	"fjacquet/spend-dashboard/internal/filter"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/parsererror"
	"fjacquet/spend-dashboard/internal/presenter"
	"fjacquet/spend-dashboard/internal/session"

	"github.com/gin-gonic/gin"
)

type formatInfo struct {
	Name                      string   `json:"name"`
	Description               string   `json:"description"`
	Columns                   []string `json:"columns"`
	Usage                     string   `json:"usage"`
	DefaultExcludedCategories []string `json:"default_excluded_categories"`
	Default                   bool     `json:"default"`
}

type sessionResponse struct {
	Session   *session.Session     `json:"session"`
	Dashboard *presenter.Dashboard `json:"dashboard"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) listFormats(c *gin.Context) {
	reg := s.service.Formats()
	out := []formatInfo{}
	for _, f := range reg.List() {
		out = append(out, formatInfo{
			Name:                      f.Name,
			Description:               f.Description,
			Columns:                   f.Columns(),
			Usage:                     f.Usage(),
			DefaultExcludedCategories: append([]string{}, f.DefaultExcludedCategories...),
			Default:                   f.Name == reg.Default(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createSession(c *gin.Context) {
	upload, err := s.readUpload(c, "")
	if err != nil {
		s.fail(c, err)
		return
	}
	loaded, err := s.service.Load(c.Request.Context(), upload.Format, upload.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	upload.Format = loaded.Format.Name
	upload.Fingerprint = loaded.Fingerprint

	d, err := s.service.Build(c.Request.Context(), loaded, loaded.Defaults)
	if err != nil {
		s.fail(c, err)
		return
	}

	sess := s.sessions.Create(upload)
	s.logger.Info("Session created",
		logging.F(logging.FieldSession, sess.ID),
		logging.F(logging.FieldFormat, sess.Format),
		logging.F(logging.FieldCount, len(loaded.Result.Transactions)))
	c.JSON(http.StatusCreated, sessionResponse{Session: sess, Dashboard: d})
}

func (s *Server) replaceFile(c *gin.Context) {
	current, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	upload, err := s.readUpload(c, current.Format)
	if err != nil {
		s.fail(c, err)
		return
	}
	loaded, err := s.service.Load(c.Request.Context(), upload.Format, upload.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	upload.Format = loaded.Format.Name
	upload.Fingerprint = loaded.Fingerprint

	d, err := s.service.Build(c.Request.Context(), loaded, loaded.Defaults)
	if err != nil {
		s.fail(c, err)
		return
	}

	sess, previous, err := s.sessions.Replace(current.ID, upload)
	if err != nil {
		s.fail(c, err)
		return
	}
	if previous != sess.Fingerprint && !s.sessions.Shared(previous, sess.ID) {
		s.service.Invalidate(c.Request.Context(), previous)
	}
	c.JSON(http.StatusOK, sessionResponse{Session: sess, Dashboard: d})
}

func (s *Server) getDashboard(c *gin.Context) {
	_, d, err := s.dashboardFor(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) exportTransactions(c *gin.Context) {
	sess, d, err := s.dashboardFor(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "transactions-"+sess.ID+".csv"))
	c.Status(http.StatusOK)
	rows := d.Export
	if rows == nil {
		rows = []presenter.ExportRow{}
	}
	if err := common.WriteCSV(c.Writer, rows, 0); err != nil {
		s.logger.WithError(err).Error("Failed to stream CSV export", logging.F(logging.FieldSession, sess.ID))
	}
}

func (s *Server) deleteSession(c *gin.Context) {
	sess, err := s.sessions.Delete(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !s.sessions.Shared(sess.Fingerprint, sess.ID) {
		s.service.Invalidate(c.Request.Context(), sess.Fingerprint)
	}
	c.Status(http.StatusNoContent)
}

// dashboardFor loads the session's file through the cache and applies the
// filter given in the query string.
func (s *Server) dashboardFor(c *gin.Context) (*session.Session, *presenter.Dashboard, error) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return nil, nil, err
	}
	loaded, err := s.service.Load(c.Request.Context(), sess.Format, sess.Content())
	if err != nil {
		return nil, nil, err
	}
	spec, err := s.service.Spec(loaded, paramsFromQuery(c))
	if err != nil {
		return nil, nil, err
	}
	d, err := s.service.Build(c.Request.Context(), loaded, spec)
	if err != nil {
		return nil, nil, err
	}
	return sess, d, nil
}

// paramsFromQuery reads from, to, month and the repeatable account and
// category parameters. A parameter that is present but empty selects nothing.
func paramsFromQuery(c *gin.Context) filter.Params {
	p := filter.Params{
		From:  c.Query("from"),
		To:    c.Query("to"),
		Month: c.Query("month"),
	}
	p.Accounts, p.AccountsSet = c.GetQueryArray("account")
	p.Categories, p.CategoriesSet = c.GetQueryArray("category")
	return p
}

func (s *Server) readUpload(c *gin.Context, defaultFormat string) (session.Upload, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return session.Upload{}, fmt.Errorf("%w: missing multipart field 'file'", errBadRequest)
	}
	if s.opts.MaxUploadBytes > 0 && header.Size > s.opts.MaxUploadBytes {
		return session.Upload{}, fmt.Errorf("%w: %s", fileutils.ErrTooLarge, header.Filename)
	}
	file, err := header.Open()
	if err != nil {
		return session.Upload{}, fmt.Errorf("opening upload: %w", err)
	}
	defer file.Close()

	content, err := fileutils.ReadLimited(file, s.opts.MaxUploadBytes)
	if err != nil {
		return session.Upload{}, err
	}

	formatName := c.PostForm("format")
	if formatName == "" {
		formatName = defaultFormat
	}
	return session.Upload{
		Format:   formatName,
		FileName: header.Filename,
		Content:  content,
	}, nil
}

var errBadRequest = errors.New("bad request")

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var invalid *parsererror.InvalidFormatError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, filter.ErrInvalidParam),
		errors.Is(err, parsererror.ErrUnknownFormat):
		status = http.StatusBadRequest
	case errors.Is(err, fileutils.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &invalid):
		status = http.StatusUnprocessableEntity
		if invalid.ExpectedFormat != "" {
			body["hint"] = presenter.Hint(invalid.ExpectedFormat)
		}
	case parsererror.IsFileLevel(err):
		status = http.StatusUnprocessableEntity
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed", logging.F(logging.FieldPath, c.FullPath()))
	}
	c.AbortWithStatusJSON(status, body)
}
