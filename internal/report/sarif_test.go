// internal/report/sarif_test.go
package report

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteSARIF_Golden(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, sampleResults(), "1.2.3"); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Properties map[string]any `json:"properties"`
			Tool       struct {
				Driver struct {
					Name    string `json:"name"`
					Version string `json:"version"`
					Rules   []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v; body=%s", err, buf.String())
	}
	if doc.Version != "2.1.0" {
		t.Fatalf("expected SARIF 2.1.0, got %v", doc.Version)
	}
	if len(doc.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(doc.Runs))
	}
	run := doc.Runs[0]
	if run.Tool.Driver.Name != "codegate" || run.Tool.Driver.Version != "1.2.3" {
		t.Fatalf("unexpected driver: %+v", run.Tool.Driver)
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results (finding + path block), got %d", len(run.Results))
	}
	first, second := run.Results[0], run.Results[1]
	if first.RuleID != "credit_card" || first.Level != "error" || first.Locations[0].PhysicalLocation.ArtifactLocation.URI != "src/billing.py" {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if second.RuleID != RuleBlockedPath {
		t.Fatalf("expected path block result, got %+v", second)
	}
	for _, r := range run.Results {
		if run.Tool.Driver.Rules[r.RuleIndex].ID != r.RuleID {
			t.Fatalf("ruleIndex %d does not point at %s", r.RuleIndex, r.RuleID)
		}
	}
	if run.Properties["scanErrors"].(float64) != 1 {
		t.Fatalf("expected scanErrors=1, got %#v", run.Properties)
	}
}

func TestWriteSARIF_NoResultsIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, sampleResults()[:1], "dev"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"results": []`)) {
		t.Fatalf("expected empty results array; got: %s", buf.String())
	}
}
