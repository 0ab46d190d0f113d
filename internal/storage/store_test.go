package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/echemsim/internal/config"
	"github.com/san-kum/echemsim/internal/echem"
)

func simulate(t *testing.T, cfg *config.Config) *echem.Result {
	t.Helper()
	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	res, err := echem.Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("ec-fast")
	res := simulate(t, cfg)

	runID, err := st.Save(cfg, res, map[string]float64{"charge": 1.5})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "ec_") {
		t.Errorf("expected run id prefixed by mechanism, got %s", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Mechanism != "EC" {
		t.Errorf("expected mechanism EC, got %s", meta.Mechanism)
	}
	if meta.Samples != 1001 {
		t.Errorf("expected 1001 samples, got %d", meta.Samples)
	}
	if meta.Metrics["charge"] != 1.5 {
		t.Errorf("expected charge 1.5, got %f", meta.Metrics["charge"])
	}

	tr, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(tr.Current) != res.Len() {
		t.Fatalf("expected %d rows, got %d", res.Len(), len(tr.Current))
	}
	for i := range tr.Current {
		if tr.Current[i] != res.Current[i] || tr.Potential[i] != res.Potential[i] {
			t.Fatalf("row %d does not round trip", i)
		}
	}

	loaded, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if *loaded != *cfg {
		t.Error("config does not round trip")
	}
}

func TestStoreRerun(t *testing.T) {
	st := New(t.TempDir())
	cfg := config.GetPreset("ce")
	res := simulate(t, cfg)

	runID, err := st.Save(cfg, res, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	again, err := st.Rerun(runID)
	if err != nil {
		t.Fatalf("rerun failed: %v", err)
	}
	if again.Chemical[500][3] != res.Chemical[500][3] {
		t.Error("rerun should reproduce the grids exactly")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	res := simulate(t, cfg)
	for i := 0; i < 2; i++ {
		if _, err := st.Save(cfg, res, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadTraceCorrupt(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runDir := filepath.Join(dir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	body := "time,potential,current\n0,0.5,abc\n"
	if err := os.WriteFile(filepath.Join(runDir, traceFile), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadTrace("bad"); err == nil {
		t.Error("expected parse error")
	}
}
