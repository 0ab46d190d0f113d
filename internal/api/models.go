package api

import (
	"encoding/json"

	"github.com/san-kum/echemsim/internal/experiment"
	"github.com/san-kum/echemsim/internal/export"
)

// SimulateRequest starts from Preset (or the defaults) and overlays Config.
type SimulateRequest struct {
	Preset       string          `json:"preset,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`
	IncludeGrids bool            `json:"include_grids,omitempty"`
	Save         bool            `json:"save,omitempty"`
}

type SimulateResponse struct {
	ID        string      `json:"id"`
	RunID     string      `json:"run_id,omitempty"`
	ElapsedMS float64     `json:"elapsed_ms"`
	Result    export.Data `json:"result"`
}

type ListResponse struct {
	Mechanisms []experiment.Entry `json:"mechanisms,omitempty"`
	Techniques []experiment.Entry `json:"techniques,omitempty"`
	Presets    []string           `json:"presets,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
