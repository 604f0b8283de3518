package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-qc/internal/qc/testutil"
)

func TestAQLCalculate(t *testing.T) {
	env, _ := setupQCTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/qc/aql/calculate",
		map[string]interface{}{"lot_size": 100, "inspection_level": "III"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.Data(t, w)
	if data["sample_size"].(float64) != 50 || data["range"] != "91-150" || data["sampling_percentage"].(float64) != 50 {
		t.Fatalf("unexpected plan: %v", data)
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/qc/aql/calculate",
		map[string]interface{}{"lot_size": 1}, token)
	data = testutil.Data(t, w)
	if data["fallback"] != true || data["inspection_level"] != "II" || data["sample_size"].(float64) != 200 {
		t.Fatalf("expected level II fallback plan, got %v", data)
	}
}

func TestAQLEvaluate(t *testing.T) {
	env, _ := setupQCTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/qc/aql/evaluate",
		map[string]interface{}{"lot_size": 500, "defects_found": 0}, token)
	if testutil.Data(t, w)["decision"] != DecisionAccept {
		t.Fatalf("expected ACCEPT: %s", w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/qc/aql/evaluate",
		map[string]interface{}{"lot_size": 500, "defects_found": 1}, token)
	if testutil.Data(t, w)["decision"] != DecisionReject {
		t.Fatalf("expected REJECT: %s", w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/qc/aql/evaluate",
		map[string]interface{}{"lot_size": 500, "defects_found": -1}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDefectCodes(t *testing.T) {
	env, _ := setupQCTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/qc/defect-codes?method=embroidery", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	items := testutil.ParseResponse(w)["data"].([]interface{})
	if len(items) != 8 {
		t.Fatalf("expected 8 embroidery codes, got %d", len(items))
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/qc/defect-codes/SUBLIMATION/GHOSTING", nil, token)
	data := testutil.Data(t, w)
	dt := data["defect_type"].(map[string]interface{})
	if dt["severity"] != "MINOR" || dt["display_name"] != "Ghost Lines" || data["known"] != true {
		t.Fatalf("unexpected classification: %v", data)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/qc/defect-codes/DTF/SOMETHING_NEW", nil, token)
	data = testutil.Data(t, w)
	dt = data["defect_type"].(map[string]interface{})
	if dt["severity"] != "MINOR" || dt["display_name"] != "SOMETHING_NEW" || data["known"] != false {
		t.Fatalf("unknown codes should degrade to MINOR: %v", data)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/qc/defect-codes?method=VINYL", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown method, got %d", w.Code)
	}
}
