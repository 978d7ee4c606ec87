package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

var institutionSections = []model.Section{
	model.SectionSummary,
	model.SectionAlerts,
	model.SectionRecommendations,
}

func TestLocate_SummaryUpToRecommendations(t *testing.T) {
	raw := "RESUMEN:\nEl estudiante muestra avances en convivencia.\n\nRECOMENDACIONES:\n1. Reunión con acudientes."

	got := Locate(raw, []model.Section{model.SectionSummary, model.SectionRecommendations})

	if want := "El estudiante muestra avances en convivencia."; got[model.SectionSummary] != want {
		t.Errorf("summary = %q, want %q", got[model.SectionSummary], want)
	}
	if want := "1. Reunión con acudientes."; got[model.SectionRecommendations] != want {
		t.Errorf("recommendations = %q, want %q", got[model.SectionRecommendations], want)
	}
}

func TestLocate_HeadingSpellings(t *testing.T) {
	const body = "El grupo mejora."
	tests := []struct {
		name    string
		section model.Section
		raw     string
	}{
		{"plain colon", model.SectionSummary, "RESUMEN: El grupo mejora.\nRECOMENDACIONES: x"},
		{"lower case", model.SectionSummary, "resumen: El grupo mejora.\nRECOMENDACIONES: x"},
		{"long synonym", model.SectionSummary, "Resumen ejecutivo: El grupo mejora.\nRECOMENDACIONES: x"},
		{"bold with colon inside", model.SectionSummary, "**RESUMEN:** El grupo mejora.\nRECOMENDACIONES: x"},
		{"bold with colon outside", model.SectionSummary, "**Resumen**: El grupo mejora.\nRECOMENDACIONES: x"},
		{"markdown heading no colon", model.SectionSummary, "## Resumen\nEl grupo mejora.\n## Recomendaciones\nx"},
		{"own line no colon", model.SectionSummary, "RESUMEN\nEl grupo mejora.\nRECOMENDACIONES\nx"},
		{"upper case no colon", model.SectionSummary, "RESUMEN El grupo mejora.\nRECOMENDACIONES x"},
		{"colon after unfinished sentence", model.SectionRecommendations, "RESUMEN: Todo bien RECOMENDACIONES: El grupo mejora."},
		{"numbered", model.SectionSummary, "1. RESUMEN: El grupo mejora.\n2. RECOMENDACIONES: x"},
		{"accented", model.SectionPatterns, "ANÁLISIS DE PATRONES: El grupo mejora.\nRECOMENDACIONES: x"},
		{"unaccented", model.SectionPatterns, "ANALISIS DE PATRONES: El grupo mejora.\nRECOMENDACIONES: x"},
		{"decomposed accent", model.SectionPatterns, "ANA\u0301LISIS DE PATRONES: El grupo mejora.\nRECOMENDACIONES: x"},
		{"extra spaces", model.SectionPatterns, "Análisis  de   patrones: El grupo mejora.\nRECOMENDACIONES: x"},
		{"inline after sentence", model.SectionRiskFactors, "RESUMEN: Bien. Factores de riesgo: El grupo mejora.\nRECOMENDACIONES: x"},
		{"follow up short", model.SectionFollowUp, "RECOMENDACIONES: x\nSEGUIMIENTO: El grupo mejora."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locate(tt.raw, []model.Section{tt.section})
			if got[tt.section] != body {
				t.Errorf("%s = %q, want %q", tt.section, got[tt.section], body)
			}
		})
	}
}

func TestLocate_MissingSectionIsEmpty(t *testing.T) {
	got := Locate("RESUMEN: algo", []model.Section{model.SectionSummary, model.SectionFollowUp})
	if v, ok := got[model.SectionFollowUp]; !ok || v != "" {
		t.Errorf("follow up = %q (present %v), want empty and present", v, ok)
	}
}

func TestLocate_ReorderedSectionsDoNotOverlap(t *testing.T) {
	raw := "RECOMENDACIONES: llamar a casa.\nRESUMEN: semana difícil."

	got := Locate(raw, []model.Section{model.SectionSummary, model.SectionRecommendations})

	want := map[model.Section]string{
		model.SectionSummary:         "semana difícil.",
		model.SectionRecommendations: "llamar a casa.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Locate mismatch (-want +got):\n%s", diff)
	}
}

func TestLocate_WordInsideSentenceIsNotHeading(t *testing.T) {
	raw := "RESUMEN: Se revisaron los riesgos del grupo y su seguimiento semanal.\nRECOMENDACIONES: x"

	got := Locate(raw, []model.Section{model.SectionSummary, model.SectionRiskFactors, model.SectionFollowUp})

	if want := "Se revisaron los riesgos del grupo y su seguimiento semanal."; got[model.SectionSummary] != want {
		t.Errorf("summary = %q, want %q", got[model.SectionSummary], want)
	}
	if got[model.SectionRiskFactors] != "" || got[model.SectionFollowUp] != "" {
		t.Errorf("unexpected sections: %q / %q", got[model.SectionRiskFactors], got[model.SectionFollowUp])
	}
}

func TestLocate_CapitalizedProseIsNotHeading(t *testing.T) {
	raw := "Resumen de la semana muy tranquila.\nRECOMENDACIONES: x"

	got := Locate(raw, []model.Section{model.SectionSummary})

	if got[model.SectionSummary] != "" {
		t.Errorf("summary = %q, want empty", got[model.SectionSummary])
	}
}

func TestBuild_HeadingsWithoutSentenceBreak(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no punctuation", "RESUMEN: Todo bien RECOMENDACIONES: reforzar tutoria"},
		{"comma", "RESUMEN: Todo bien, RECOMENDACIONES: reforzar tutoria"},
		{"no colon", "RESUMEN Todo bien\nRECOMENDACIONES reforzar tutoria"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Build(tt.raw, Options{Expected: institutionSections, Truncated: true})
			if r.Summary != "Todo bien" {
				t.Errorf("Summary = %q", r.Summary)
			}
			if r.Recommendations != "reforzar tutoria" {
				t.Errorf("Recommendations = %q", r.Recommendations)
			}
			if r.Truncated {
				t.Error("Truncated = true, want false when both sections were found")
			}
			assertNoOverlap(t, r)
		})
	}
}

func TestBuild_RepeatedHeadingKeepsEveryBody(t *testing.T) {
	r := Build("RESUMEN: a\nRECOMENDACIONES: x. RESUMEN: b", Options{Expected: institutionSections})

	if r.Summary != "a\nb" {
		t.Errorf("Summary = %q, want both bodies", r.Summary)
	}
	if r.Recommendations != "x." {
		t.Errorf("Recommendations = %q", r.Recommendations)
	}
	if !strings.Contains(r.Composite, "b") {
		t.Errorf("Composite lost the second body: %q", r.Composite)
	}
}

func TestBuild_InlineSections(t *testing.T) {
	raw := "RESUMEN: Todo bien. ALERTAS INTELIGENTES: 3 estudiantes en riesgo. RECOMENDACIONES: reforzar tutoria."

	r := Build(raw, Options{Expected: institutionSections})

	if r.Summary != "Todo bien." {
		t.Errorf("Summary = %q", r.Summary)
	}
	if r.Alerts != "3 estudiantes en riesgo." {
		t.Errorf("Alerts = %q", r.Alerts)
	}
	if r.Recommendations != "reforzar tutoria." {
		t.Errorf("Recommendations = %q", r.Recommendations)
	}
	assertNoOverlap(t, r)
}

func TestBuild_AlertsBleedIntoSummary(t *testing.T) {
	raw := "RESUMEN: Todo tranquilo en la semana, Alertas: dos estudiantes con ausencias reiteradas\n" +
		"RECOMENDACIONES: citar a los acudientes."

	r := Build(raw, Options{Expected: institutionSections})

	if r.Summary != "Todo tranquilo en la semana" {
		t.Errorf("Summary = %q", r.Summary)
	}
	if r.Alerts != "dos estudiantes con ausencias reiteradas" {
		t.Errorf("Alerts = %q", r.Alerts)
	}
	if r.Recommendations != "citar a los acudientes." {
		t.Errorf("Recommendations = %q", r.Recommendations)
	}
	assertNoOverlap(t, r)
}

func TestBuild_AlertsBleedWithBullet(t *testing.T) {
	raw := "RESUMEN: Semana con pocos casos, Alertas: - revisar a Juan\nRECOMENDACIONES: hablar con Juan."

	r := Build(raw, Options{Expected: institutionSections})

	if r.Summary != "Semana con pocos casos" {
		t.Errorf("Summary = %q", r.Summary)
	}
	if r.Alerts != "revisar a Juan" {
		t.Errorf("Alerts = %q", r.Alerts)
	}
}

func TestBuild_AlertsInsideAnotherSection(t *testing.T) {
	raw := "RESUMEN: Semana estable.\n" +
		"ANÁLISIS DE PATRONES: Aumentan las tardanzas, Alertas: tres casos graves\n" +
		"RECOMENDACIONES: reforzar control."

	r := Build(raw, Options{})

	if r.Alerts != "tres casos graves" {
		t.Errorf("Alerts = %q", r.Alerts)
	}
	if r.Patterns != "Aumentan las tardanzas" {
		t.Errorf("Patterns = %q", r.Patterns)
	}
	if r.Summary != "Semana estable." {
		t.Errorf("Summary = %q", r.Summary)
	}
	assertNoOverlap(t, r)
}

func TestBuild_AlertsRecoveredFromRawText(t *testing.T) {
	raw := "RESUMEN: Semana con pocos casos, Alertas: revisar a Juan\nRECOMENDACIONES: hablar con Juan."

	r := Build(raw, Options{Expected: []model.Section{model.SectionSummary, model.SectionRecommendations}})

	if r.Summary != "Semana con pocos casos" {
		t.Errorf("Summary = %q", r.Summary)
	}
	if r.Alerts != "revisar a Juan" {
		t.Errorf("Alerts = %q", r.Alerts)
	}
	assertNoOverlap(t, r)
}

func TestBuild_LowercaseAlertsInProse(t *testing.T) {
	raw := "RESUMEN: Todo bien. Se emitieron dos alertas: una leve.\nRECOMENDACIONES: seguir igual."

	r := Build(raw, Options{Expected: institutionSections})

	if want := "Todo bien. Se emitieron dos alertas: una leve."; r.Summary != want {
		t.Errorf("Summary = %q, want %q", r.Summary, want)
	}
	if r.Alerts != "" {
		t.Errorf("Alerts = %q, want empty", r.Alerts)
	}
}

func TestBuild_ResidualAlertsHeading(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"colon without content", "RESUMEN: Sin novedades relevantes, ALERTAS:\nRECOMENDACIONES: mantener rutinas."},
		{"bare upper case", "RESUMEN: Sin novedades relevantes, ALERTAS\nRECOMENDACIONES: mantener rutinas."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Build(tt.raw, Options{Expected: institutionSections})
			if r.Summary != "Sin novedades relevantes" {
				t.Errorf("Summary = %q", r.Summary)
			}
			if r.Alerts != "" {
				t.Errorf("Alerts = %q, want empty", r.Alerts)
			}
		})
	}
}

func TestStripResidualAlerts_KeepsProse(t *testing.T) {
	in := "No se registraron alertas"
	if got := stripResidualAlerts(in); got != in {
		t.Errorf("stripResidualAlerts(%q) = %q", in, got)
	}
}

func TestBuild_NoHeadings(t *testing.T) {
	raw := "  El curso tuvo una semana tranquila sin incidentes graves.  \n"

	r := Build(raw, Options{Expected: institutionSections})

	if want := "El curso tuvo una semana tranquila sin incidentes graves."; r.Summary != want {
		t.Errorf("Summary = %q, want %q", r.Summary, want)
	}
	if r.Recommendations != FallbackRecommendation {
		t.Errorf("Recommendations = %q, want fallback", r.Recommendations)
	}
	if r.Alerts != "" {
		t.Errorf("Alerts = %q, want empty", r.Alerts)
	}
	want := "RESUMEN\n" + r.Summary + "\n\nRECOMENDACIONES\n" + FallbackRecommendation
	if r.Composite != want {
		t.Errorf("Composite = %q, want %q", r.Composite, want)
	}
}

func TestBuild_EmptyRaw(t *testing.T) {
	r := Build("", Options{})
	if r.Composite != "" || r.Summary != "" || r.Recommendations != "" {
		t.Errorf("empty input should give empty report, got %+v", r)
	}
}

func TestBuild_Truncation(t *testing.T) {
	r := Build("RESUMEN: el informe quedó a medi", Options{Truncated: true})
	if !r.Truncated {
		t.Error("Truncated = false, want true when recommendations were lost")
	}
	if r.Recommendations != FallbackRecommendation {
		t.Errorf("Recommendations = %q, want fallback", r.Recommendations)
	}

	r = Build("RESUMEN: completo.\nRECOMENDACIONES: nada más.", Options{Truncated: true})
	if r.Truncated {
		t.Error("Truncated = true, want false when nothing essential was lost")
	}
}

func TestBuild_StudentReportSections(t *testing.T) {
	raw := `**RESUMEN:** El estudiante acumula 6 incidentes, la mayoría de *conducta*.

## ANÁLISIS DE PATRONES
Los incidentes se concentran los lunes.

FORTALEZAS Y ÁREAS DE MEJORA: Buena relación con docentes.
FACTORES DE RIESGO: Ausencias repetidas.
RECOMENDACIONES: 1. Citar a acudientes 2. Acompañamiento de orientación
PLAN DE SEGUIMIENTO: Revisión quincenal.`

	r := Build(raw, Options{})

	want := &struct {
		Summary, Patterns, Strengths, RiskFactors, Recommendations, FollowUp string
	}{
		Summary:         "El estudiante acumula 6 incidentes, la mayoría de conducta.",
		Patterns:        "Los incidentes se concentran los lunes.",
		Strengths:       "Buena relación con docentes.",
		RiskFactors:     "Ausencias repetidas.",
		Recommendations: "1. Citar a acudientes\n2. Acompañamiento de orientación",
		FollowUp:        "Revisión quincenal.",
	}
	got := &struct {
		Summary, Patterns, Strengths, RiskFactors, Recommendations, FollowUp string
	}{r.Summary, r.Patterns, r.Strengths, r.RiskFactors, r.Recommendations, r.FollowUp}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(r.Composite, "RESUMEN\nEl estudiante") {
		t.Errorf("Composite = %q", r.Composite)
	}
	if strings.Contains(r.Composite, "ALERTAS") {
		t.Errorf("Composite should not contain empty sections: %q", r.Composite)
	}
}

func TestComposite_CanonicalOrder(t *testing.T) {
	fields := map[model.Section]string{
		model.SectionRecommendations: "b",
		model.SectionSummary:         "a",
		model.SectionAlerts:          "",
	}
	if got, want := Composite(fields, "raw"), "RESUMEN\na\n\nRECOMENDACIONES\nb"; got != want {
		t.Errorf("Composite = %q, want %q", got, want)
	}
	if got := Composite(nil, "raw text"); got != "raw text" {
		t.Errorf("Composite(nil) = %q, want raw text", got)
	}
}

func assertNoOverlap(t *testing.T, r *model.Report) {
	t.Helper()
	fields := r.Fields()
	for a, va := range fields {
		for b, vb := range fields {
			if a != b && vb != "" && strings.Contains(va, vb) {
				t.Errorf("%s (%q) contains %s (%q)", a, va, b, vb)
			}
		}
	}
}

func TestStripHeading(t *testing.T) {
	tests := []struct {
		in   string
		sec  model.Section
		want string
	}{
		{"ALERTAS: dos casos", model.SectionAlerts, "dos casos"},
		{"**Alertas tempranas:**\ndos casos", model.SectionAlerts, "dos casos"},
		{"RESUMEN\nSemana tranquila.", model.SectionSummary, "Semana tranquila."},
		{"RESUMEN Semana tranquila.", model.SectionSummary, "Semana tranquila."},
		{"Resumen de la semana", model.SectionSummary, "Resumen de la semana"},
		{"Semana tranquila. RESUMEN: otra", model.SectionSummary, "Semana tranquila. RESUMEN: otra"},
		{"  dos casos  ", model.SectionAlerts, "dos casos"},
	}
	for _, tt := range tests {
		if got := StripHeading(tt.in, tt.sec); got != tt.want {
			t.Errorf("StripHeading(%q, %s) = %q, want %q", tt.in, tt.sec, got, tt.want)
		}
	}
}
