package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"coverage-sim/internal/calculator"
	"coverage-sim/internal/dataset"
	"coverage-sim/internal/eligibility"
	"coverage-sim/internal/export"
	"coverage-sim/internal/filter"
	"coverage-sim/internal/models"
	"coverage-sim/internal/simulator"
)

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)

// runRequest is the body shared by simulate, runs and export routes.
// Unset fields fall back to the configured simulation defaults.
type runRequest struct {
	Principals           []string       `json:"principals"`
	ActiveCompetitors    []string       `json:"active_competitors"`
	AllCompetitorsActive *bool          `json:"all_competitors_active"`
	RadiusKM             *float64       `json:"radius_km"`
	Mode                 string         `json:"mode"`
	Distance             string         `json:"distance"`
	Filters              filter.Filters `json:"filters"`
	// MaxCustomers caps the customer layer of the GeoJSON export.
	MaxCustomers int `json:"max_customers"`
}

type optionsRequest struct {
	Filters filter.Filters `json:"filters"`
	Cascade *bool          `json:"cascade"`
}

// bindOptional decodes a JSON body; an empty body leaves v untouched.
func bindOptional(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return eris.Wrap(errBadRequest, err.Error())
	}
	return nil
}

func (s *Server) params(req runRequest) simulator.Params {
	p := simulator.Params{
		Principals:           req.Principals,
		ActiveCompetitors:    req.ActiveCompetitors,
		AllCompetitorsActive: true,
		RadiusKM:             s.cfg.Simulation.RadiusKM,
		Mode:                 eligibility.Mode(s.cfg.Simulation.Mode),
		Distance:             calculator.Method(s.cfg.Simulation.Distance),
	}
	if req.AllCompetitorsActive != nil {
		p.AllCompetitorsActive = *req.AllCompetitorsActive
	}
	if req.RadiusKM != nil {
		p.RadiusKM = *req.RadiusKM
	}
	if req.Mode != "" {
		p.Mode = eligibility.Mode(req.Mode)
	}
	if req.Distance != "" {
		p.Distance = calculator.Method(req.Distance)
	}
	return p
}

// snapshot applies the request filters to the dataset's customers. The
// provider table is never filtered: principals and competitors are picked
// by name and radius only.
func snapshot(ds *Dataset, f filter.Filters) simulator.Snapshot {
	return simulator.Snapshot{
		Customers: f.Customers(ds.Snapshot.Customers),
		Providers: ds.Snapshot.Providers,
	}
}

func (s *Server) lookupDataset(c *gin.Context) (*Dataset, bool) {
	ds, ok := s.store.Get(c.Param("id"))
	if !ok {
		fail(c, eris.Wrapf(errNotFound, "dataset %q", c.Param("id")))
	}
	return ds, ok
}

// readUpload decodes one multipart file with the loader for its extension.
func readUpload[T any](c *gin.Context, field string, read func(io.Reader, dataset.Format) ([]T, error)) ([]T, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, eris.Wrapf(errBadRequest, "missing %q file", field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "server: open %s upload", field)
	}
	defer f.Close()

	rows, err := read(f, dataset.FormatFromName(fh.Filename))
	if err != nil {
		return nil, eris.Wrap(errBadRequest, err.Error())
	}
	return rows, nil
}

func (s *Server) handleUpload(c *gin.Context) {
	if s.cfg.Server.MaxUploadMB > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadMB<<20)
	}

	opts := dataset.Options{ReclassifyCustomers: s.cfg.Dataset.ReclassifyCustomers}
	customers, err := readUpload(c, "customers", func(r io.Reader, f dataset.Format) ([]models.Customer, error) {
		return dataset.ReadCustomers(r, f, opts)
	})
	if err != nil {
		fail(c, err)
		return
	}
	providers, err := readUpload(c, "providers", dataset.ReadProviders)
	if err != nil {
		fail(c, err)
		return
	}

	ds := s.store.Put(simulator.Snapshot{Customers: customers, Providers: providers})
	s.metrics.SetDatasets(s.store.Len())
	zap.L().Info("server: dataset stored",
		zap.String("id", ds.ID),
		zap.Int("customers", len(customers)),
		zap.Int("providers", len(providers)),
	)

	c.JSON(http.StatusCreated, gin.H{
		"id":        ds.ID,
		"customers": len(customers),
		"providers": len(providers),
		"zones":     ds.Zones,
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		fail(c, eris.Wrapf(errNotFound, "dataset %q", c.Param("id")))
		return
	}
	s.jobs.RemoveDataset(c.Param("id"))
	s.metrics.SetDatasets(s.store.Len())
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProviders(c *gin.Context) {
	ds, ok := s.lookupDataset(c)
	if !ok {
		return
	}
	providers := filter.ProvidersInZone(ds.Snapshot.Providers, c.Query("zone"))
	if providers == nil {
		providers = []models.Provider{}
	}
	c.JSON(http.StatusOK, gin.H{"zones": ds.Zones, "providers": providers})
}

func (s *Server) handleOptions(c *gin.Context) {
	ds, ok := s.lookupDataset(c)
	if !ok {
		return
	}
	var req optionsRequest
	if err := bindOptional(c, &req); err != nil {
		fail(c, err)
		return
	}
	cascade := s.cfg.Filter.Cascade
	if req.Cascade != nil {
		cascade = *req.Cascade
	}
	c.JSON(http.StatusOK, filter.BuildOptions(ds.Snapshot.Customers, req.Filters, cascade))
}

// compute binds the run request and runs the engine synchronously.
func (s *Server) compute(c *gin.Context) (*simulator.Result, runRequest, bool) {
	var req runRequest
	ds, ok := s.lookupDataset(c)
	if !ok {
		return nil, req, false
	}
	if err := bindOptional(c, &req); err != nil {
		fail(c, err)
		return nil, req, false
	}
	res, err := s.engine.Compute(c.Request.Context(), snapshot(ds, req.Filters), s.params(req))
	if err != nil {
		fail(c, err)
		return nil, req, false
	}
	return res, req, true
}

func (s *Server) handleSimulate(c *gin.Context) {
	res, _, ok := s.compute(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleStartRun(c *gin.Context) {
	ds, ok := s.lookupDataset(c)
	if !ok {
		return
	}
	var req runRequest
	if err := bindOptional(c, &req); err != nil {
		fail(c, err)
		return
	}
	params := s.params(req)
	if err := params.Validate(); err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := newJob(ds.ID, cancel)
	s.jobs.add(job)
	job.Log(fmt.Sprintf("run started: %d principals, radius %.2f km", len(params.Principals), params.RadiusKM))

	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				job.finish(nil, eris.Errorf("panic: %v", r), false)
			}
		}()
		res, err := s.engine.WithProgress(job.SetProgress).Compute(ctx, snapshot(ds, req.Filters), params)
		job.finish(res, err, err != nil && ctx.Err() == context.Canceled)
	}()

	c.JSON(http.StatusAccepted, gin.H{"id": job.ID})
}

func (s *Server) lookupJob(c *gin.Context) (*Job, bool) {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		fail(c, eris.Wrapf(errNotFound, "run %q", c.Param("id")))
	}
	return job, ok
}

func (s *Server) handleRunStatus(c *gin.Context) {
	if job, ok := s.lookupJob(c); ok {
		c.JSON(http.StatusOK, job.View())
	}
}

func (s *Server) handleRunCancel(c *gin.Context) {
	if job, ok := s.lookupJob(c); ok {
		job.Cancel()
		c.JSON(http.StatusAccepted, job.View())
	}
}

type exporter struct {
	filename    string
	contentType string
	write       func(w io.Writer, res *simulator.Result, req runRequest) error
}

var (
	exportCustomersCSV = exporter{
		filename:    "customers.csv",
		contentType: "text/csv; charset=utf-8",
		write: func(w io.Writer, res *simulator.Result, _ runRequest) error {
			return export.WriteCustomersCSV(w, res.Customers, res.Assignments)
		},
	}
	exportProvidersCSV = exporter{
		filename:    "providers.csv",
		contentType: "text/csv; charset=utf-8",
		write: func(w io.Writer, res *simulator.Result, _ runRequest) error {
			providers := make([]models.Provider, 0, len(res.Principals)+len(res.Candidates))
			providers = append(providers, res.Principals...)
			providers = append(providers, res.Candidates...)
			return export.WriteProvidersCSV(w, providers)
		},
	}
	exportGeoJSON = exporter{
		filename:    "layers.geojson",
		contentType: "application/geo+json",
		write: func(w io.Writer, res *simulator.Result, req runRequest) error {
			return export.WriteGeoJSON(w, res, req.MaxCustomers)
		},
	}
	exportReport = exporter{
		filename:    "report.xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		write: func(w io.Writer, res *simulator.Result, _ runRequest) error {
			return export.WriteReport(w, res)
		},
	}
)

// handleExport runs a simulation and streams one export of it. The body is
// buffered so a write error still produces a clean error response.
func (s *Server) handleExport(e exporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, req, ok := s.compute(c)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := e.write(&buf, res, req); err != nil {
			fail(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", e.filename))
		c.Data(http.StatusOK, e.contentType, buf.Bytes())
	}
}
