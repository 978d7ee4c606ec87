package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	dm "github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

func TestLoadIncidents(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "incidents.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
- id: "1"
  type: conducta
  severity: high
  student_id: s1
  student_name: Ana
  reporter_id: r1
  description: Pelea en el recreo
  date: 2024-03-04T08:00:00Z
- id: "2"
  type: ausencia
  severity: low
  student_id: s2
`), 0o644); err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "incidents.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"id":"1","type":"conducta","severity":"high","student_id":"s1","date":"2024-03-04T08:00:00Z"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	want := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	fromYAML, err := loadIncidents(yamlPath)
	if err != nil {
		t.Fatalf("loadIncidents(yaml) error = %v", err)
	}
	if len(fromYAML) != 2 || fromYAML[0].StudentName != "Ana" || fromYAML[1].Date != nil {
		t.Errorf("yaml incidents = %+v", fromYAML)
	}
	if fromYAML[0].Date == nil || !fromYAML[0].Date.Equal(want) {
		t.Errorf("yaml date = %v, want %v", fromYAML[0].Date, want)
	}

	fromJSON, err := loadIncidents(jsonPath)
	if err != nil {
		t.Fatalf("loadIncidents(json) error = %v", err)
	}
	if len(fromJSON) != 1 || fromJSON[0].Date == nil || !fromJSON[0].Date.Equal(want) {
		t.Errorf("json incidents = %+v", fromJSON)
	}

	if _, err := loadIncidents(filepath.Join(dir, "incidents.csv")); err == nil {
		t.Error("loadIncidents(csv) error = nil, want error")
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := &dm.Report{ID: "abc", Scope: dm.ScopeInstitution, Composite: "RESUMEN\nok"}

	if err := writeReport(path, report); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got dm.Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if got.ID != "abc" || got.Composite != "RESUMEN\nok" {
		t.Errorf("written report = %+v", got)
	}
}
