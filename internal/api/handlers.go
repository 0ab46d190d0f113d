package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/echem"
	"github.com/san-kum/echemsim/internal/experiment"
	"github.com/san-kum/echemsim/internal/export"
)

// Error codes of the error envelope.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeUnstable       = "UNSTABLE"
	CodeDegenerateGrid = "DEGENERATE_GRID"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listMechanisms(c *gin.Context) {
	c.JSON(http.StatusOK, ListResponse{
		Mechanisms: s.registry.ListMechanisms(),
		Techniques: s.registry.ListTechniques(),
	})
}

func (s *Server) listPresets(c *gin.Context) {
	c.JSON(http.StatusOK, ListResponse{Presets: config.ListPresets()})
}

func (s *Server) listRuns(c *gin.Context) {
	if s.store == nil {
		writeError(c, http.StatusNotFound, CodeNotFound, "run storage is not enabled", nil)
		return
	}
	runs, err := s.store.List()
	if err != nil {
		writeError(c, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	cfg, err := req.config()
	if err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	out, err := experiment.New(cfg, s.log).Run(c.Request.Context())
	if err != nil {
		writeSimulationError(c, err)
		return
	}

	resp := SimulateResponse{
		ID:        out.ID,
		ElapsedMS: float64(out.Elapsed.Microseconds()) / 1000,
		Result:    export.NewData(out.Result, out.Metrics, req.IncludeGrids),
	}
	if req.Save && s.store != nil {
		if resp.RunID, err = s.store.Save(out.Config, out.Result, out.Metrics); err != nil {
			writeError(c, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (r *SimulateRequest) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		if cfg = config.GetPreset(r.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	}
	if len(r.Config) > 0 {
		if err := json.Unmarshal(r.Config, cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return cfg, nil
}

func writeSimulationError(c *gin.Context, err error) {
	var (
		cfgErr  *echem.ConfigError
		stabErr *echem.StabilityError
	)
	switch {
	case errors.As(err, &stabErr):
		writeError(c, http.StatusUnprocessableEntity, CodeUnstable, err.Error(), map[string]interface{}{
			"species": stabErr.Species.String(),
			"lambda":  stabErr.Lambda,
			"limit":   stabErr.Limit,
		})
	case errors.Is(err, echem.ErrUnstable):
		writeError(c, http.StatusUnprocessableEntity, CodeUnstable, err.Error(), nil)
	case errors.Is(err, echem.ErrDegenerateGrid):
		writeError(c, http.StatusUnprocessableEntity, CodeDegenerateGrid, err.Error(), nil)
	case errors.As(err, &cfgErr):
		writeError(c, http.StatusBadRequest, CodeInvalidConfig, err.Error(), map[string]interface{}{
			"field":  cfgErr.Field,
			"reason": cfgErr.Reason,
		})
	case errors.Is(err, echem.ErrConfiguration):
		writeError(c, http.StatusBadRequest, CodeInvalidConfig, err.Error(), nil)
	default:
		writeError(c, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
	}
}

func writeError(c *gin.Context, status int, code, msg string, details map[string]interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: msg, Details: details},
	})
}
