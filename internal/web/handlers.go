package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/export"
	"github.com/Zuo-Peng/wachat-insight/internal/extract"
	"github.com/Zuo-Peng/wachat-insight/internal/metrics"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
	"github.com/Zuo-Peng/wachat-insight/internal/render"
)

const maxPageSize = 1000

type RecordsRequest struct {
	PaginationQuery
}

type RecordsPage struct {
	Total   int                `json:"total"`
	Offset  int                `json:"offset"`
	Limit   int                `json:"limit"`
	Records []parse.ChatRecord `json:"records"`
}

type DatasetSummary struct {
	Origin   string `json:"origin"`
	Records  int    `json:"records"`
	Entries  int    `json:"entries"`
	Failures int    `json:"failures"`
	LoadedAt string `json:"loaded_at"`
}

func summarize(ds *pipeline.Dataset, origin string) DatasetSummary {
	return DatasetSummary{
		Origin:   origin,
		Records:  len(ds.Records),
		Entries:  len(ds.Entries),
		Failures: len(ds.Failures),
		LoadedAt: ds.LoadedAt.Format("2006-01-02T15:04:05"),
	}
}

func (s *Service) getHealth(c *gin.Context) {
	ds, origin, err := s.source.Dataset()
	body := gin.H{"status": "ok"}
	if ds != nil {
		body["dataset"] = summarize(ds, origin)
	}
	if err != nil {
		body["last_error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

// dataset returns the loaded dataset or answers 503.
func (s *Service) dataset(c *gin.Context) (*pipeline.Dataset, bool) {
	ds, _, _ := s.source.Dataset()
	if ds == nil {
		ServiceUnavailable(c, ErrNotLoaded.Error())
		return nil, false
	}
	return ds, true
}

// filter reads the from, to and sender query parameters. sender may repeat
// or hold a comma-separated list.
func filter(c *gin.Context) (parse.Filter, bool) {
	f, err := parse.ParseFilter(c.Query("from"), c.Query("to"), c.QueryArray("sender"))
	if err != nil {
		BadRequest(c, err.Error())
		return parse.Filter{}, false
	}
	return f, true
}

func (s *Service) report(c *gin.Context) (*pipeline.Report, bool) {
	f, ok := filter(c)
	if !ok {
		return nil, false
	}
	rep, err := s.source.Report(f)
	if errors.Is(err, ErrNotLoaded) {
		ServiceUnavailable(c, err.Error())
		return nil, false
	}
	if err != nil {
		InternalServerError(c, err.Error())
		return nil, false
	}
	return rep, true
}

func (s *Service) getSenders(c *gin.Context) {
	ds, ok := s.dataset(c)
	if !ok {
		return
	}
	SendSuccess(c, metrics.Compute(ds.Records).MessagesPerParticipant)
}

func (s *Service) getRecords(c *gin.Context) {
	var req RecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "invalid paging parameters: "+err.Error())
		return
	}
	if req.Offset < 0 || req.Limit <= 0 {
		BadRequest(c, "limit must be positive and offset not negative")
		return
	}
	if req.Limit > maxPageSize {
		req.Limit = maxPageSize
	}
	f, ok := filter(c)
	if !ok {
		return
	}
	ds, ok := s.dataset(c)
	if !ok {
		return
	}

	records := f.Apply(ds.Records)
	page := RecordsPage{Total: len(records), Offset: req.Offset, Limit: req.Limit, Records: []parse.ChatRecord{}}
	if req.Offset < len(records) {
		end := req.Offset + req.Limit
		if end > len(records) {
			end = len(records)
		}
		page.Records = records[req.Offset:end]
	}
	SendSuccess(c, page)
}

func (s *Service) getMetrics(c *gin.Context) {
	f, ok := filter(c)
	if !ok {
		return
	}
	ds, ok := s.dataset(c)
	if !ok {
		return
	}
	SendSuccess(c, metrics.Compute(f.Apply(ds.Records)))
}

func (s *Service) getContent(c *gin.Context) {
	if rep, ok := s.report(c); ok {
		SendSuccess(c, rep.Content)
	}
}

func (s *Service) getReport(c *gin.Context) {
	if rep, ok := s.report(c); ok {
		SendSuccess(c, rep)
	}
}

func (s *Service) getReportText(c *gin.Context) {
	if rep, ok := s.report(c); ok {
		c.String(http.StatusOK, render.RenderReport(rep, false))
	}
}

func (s *Service) getWordCloud(c *gin.Context) {
	rep, ok := s.report(c)
	if !ok {
		return
	}
	if !rep.Content.HasWordCloud() {
		if rep.Content.WordCloudErr == nil {
			NotFound(c, "word cloud disabled")
			return
		}
		if errors.Is(rep.Content.WordCloudErr, content.ErrEmptyCorpus) {
			NotFound(c, rep.Content.WordCloudErr.Error())
			return
		}
		InternalServerError(c, fmt.Sprintf("word cloud: %v", rep.Content.WordCloudErr))
		return
	}
	c.Data(http.StatusOK, "image/png", rep.Content.WordCloud)
}

func (s *Service) getExport(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.CSV)))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	rep, ok := s.report(c)
	if !ok {
		return
	}
	b, err := export.Report(rep, format)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="wca-report.%s"`, format))
	c.Data(http.StatusOK, format.ContentType(), b)
}

// postUpload replaces the dataset with the zip archives sent as multipart
// "file" fields.
func (s *Service) postUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.conf.MaxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "invalid upload: "+err.Error())
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		BadRequest(c, `no "file" fields in upload`)
		return
	}

	bufs := make([]extract.Buffer, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		bufs = append(bufs, extract.Buffer{Name: fh.Filename, Data: data})
	}

	ds, err := s.source.Upload(c.Request.Context(), bufs)
	if err != nil {
		if errors.Is(err, extract.ErrNoInput) {
			BadRequest(c, err.Error())
			return
		}
		InternalServerError(c, err.Error())
		return
	}
	log.Info().Int("archives", len(bufs)).Int("records", len(ds.Records)).Msg("upload loaded")
	SendSuccess(c, summarize(ds, "upload"))
}

func (s *Service) postReload(c *gin.Context) {
	if err := s.source.Reload(c.Request.Context()); err != nil {
		if errors.Is(err, extract.ErrNoInput) {
			BadRequest(c, err.Error())
			return
		}
		InternalServerError(c, err.Error())
		return
	}
	ds, origin, _ := s.source.Dataset()
	SendSuccess(c, summarize(ds, origin))
}
