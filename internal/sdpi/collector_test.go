package sdpi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdpix/internal/asciidoc"
	"sdpix/internal/core"
	"sdpix/pkg/document"
	"sdpix/pkg/schema"
)

const sampleDocument = `= SDPi Supplement
:doctype: book

== Bibliography

[bibliography]
* [[[ref_ieee_11073_10700,IEEE 11073-10700]]] IEEE 11073-10700 Standard for Base PKP

== Requirements

[sdpi_requirement#r1001,sdpi_req_level=shall,sdpi_req_type=tech_feature,sdpi_req_group="consumer,provider"]
****
[NORMATIVE]
A provider shall publish its MDIB.

[NOTE]
====
Publishing is described elsewhere.
====

[EXAMPLE]
====
.Sample
----
<mdib/>
----
====

[RELATED]
====
* First
** Nested
====
****

[sdpi_requirement#r1003,sdpi_req_level=may,sdpi_req_type=ref_ics,sdpi_ref_id=ref_ieee_11073_10700,sdpi_ref_section="5.2"]
****
[NORMATIVE]
A provider may support the optional service.
****

[sdpi_requirement#r1004,sdpi_req_level=shall,sdpi_req_type=risk_mitigation,sdpi_ses_type=general,sdpi_ses_test=wire]
****
[NORMATIVE]
The provider shall encrypt all traffic.
****

[role=use-case,sdpi_use_case_id=stad]
=== Use case: Stand-alone display

[sdpi_requirement#r1002,sdpi_req_level=should,sdpi_req_type=use_case_feature]
****
[NORMATIVE]
The consumer should show alerts.
****

[role=use-case-background]
====
*Given* the device is powered on
*And* the network is available
====

[role=use-case-scenario,sdpi_scenario="Display vital signs"]
====
[role=use-case-steps]
****
*When* the consumer connects
*Then* it displays the vital signs
*And* it updates them periodically
****
====
`

func collect(t *testing.T, text string) (*schema.Model, *recordingLogger, error) {
	t.Helper()
	doc, err := asciidoc.ParseString("test.adoc", text)
	require.NoError(t, err)

	logger := &recordingLogger{}
	model, err := NewCollector(CollectBibliography(doc), logger).Process(doc)
	return model, logger, err
}

func requirementDoc(number int, attrs, body string) string {
	return fmt.Sprintf("[sdpi_requirement#r%d,%s]\n****\n%s\n****\n", number, attrs, body)
}

func TestCollectorProcess(t *testing.T) {
	model, logger, err := collect(t, sampleDocument)
	require.NoError(t, err)
	require.NotNil(t, model)
	assert.Empty(t, logger.messages("warn"))

	assert.Equal(t, []int{1001, 1002, 1003, 1004}, model.RequirementNumbers())

	tech := model.Requirements[1001]
	assert.Equal(t, "R1001", tech.LocalID)
	assert.Equal(t, "r1001", tech.GlobalID)
	assert.Equal(t, schema.LevelShall, tech.Level)
	assert.Equal(t, schema.TypeTechFeature, tech.Type)
	assert.Equal(t, []string{"consumer", "provider"}, tech.Groups)
	assert.Equal(t, schema.RequirementSpecification{
		Normative: schema.ContentList{schema.Block{Lines: []string{"A provider shall publish its MDIB."}}},
		Note:      schema.ContentList{schema.Block{Lines: []string{"Publishing is described elsewhere."}}},
		Example:   schema.ContentList{schema.Listing{Title: "Sample", Lines: []string{"<mdib/>"}}},
		Related: schema.ContentList{schema.UnorderedList{Items: schema.ContentList{
			schema.ListItem{Marker: "*", Text: "First"},
		}}},
	}, tech.Specification)

	useCaseReq := model.Requirements[1002]
	assert.Equal(t, schema.TypeUseCase, useCaseReq.Type)
	assert.Equal(t, schema.LevelShould, useCaseReq.Level)
	assert.Equal(t, "stad", useCaseReq.UseCaseID)
	assert.Empty(t, useCaseReq.Groups)
	assert.NotNil(t, useCaseReq.Groups)

	refIcs := model.Requirements[1003]
	require.NotNil(t, refIcs.RefIcs)
	assert.Equal(t, schema.RefIcsDetails{
		StandardID: "ref_ieee_11073_10700",
		Source:     "IEEE 11073-10700 Standard for Base PKP",
		Section:    "5.2",
	}, *refIcs.RefIcs)

	risk := model.Requirements[1004]
	require.NotNil(t, risk.RiskMitigation)
	assert.Equal(t, schema.MitigationGeneral, risk.RiskMitigation.SesType)
	assert.Equal(t, schema.TestabilityWire, risk.RiskMitigation.Testability)

	for _, n := range model.RequirementNumbers() {
		r := model.Requirements[n]
		assert.NoError(t, schema.ValidateRequirement(&r), "requirement %d", n)
	}

	require.Equal(t, []string{"stad"}, model.UseCaseIDs())
	uc := model.UseCases["stad"]
	assert.Equal(t, "Use case: Stand-alone display", uc.Title)
	assert.Equal(t, "_use_case_stand_alone_display", uc.Anchor)
	assert.Equal(t, []schema.GherkinStep{
		{Type: schema.StepGiven, Description: "the device is powered on"},
		{Type: schema.StepAnd, Description: "the network is available"},
	}, uc.Specification.Background)
	assert.Equal(t, []schema.UseCaseScenario{{
		Title: "Display vital signs",
		Steps: []schema.GherkinStep{
			{Type: schema.StepWhen, Description: "the consumer connects"},
			{Type: schema.StepThen, Description: "it displays the vital signs"},
			{Type: schema.StepAnd, Description: "it updates them periodically"},
		},
	}}, uc.Specification.Scenarios)
}

func TestCollectorUseCaseRequirementMarksBlock(t *testing.T) {
	doc, err := asciidoc.ParseString("test.adoc", sampleDocument)
	require.NoError(t, err)

	_, err = NewCollector(CollectBibliography(doc), core.NewNopLogger()).Process(doc)
	require.NoError(t, err)

	found := false
	doc.Walk(func(n *document.Node) bool {
		if n.ID == "r1002" {
			found = true
			assert.Equal(t, "stad", n.Attributes.Get(schema.AttrUseCaseID))
		}
		return true
	})
	assert.True(t, found)
}

func TestCollectorDuplicateRequirement(t *testing.T) {
	text := requirementDoc(1, "sdpi_req_level=shall", "The x shall y.") + "\n" +
		requirementDoc(1, "sdpi_req_level=shall", "The x shall z.")

	model, _, err := collect(t, text)
	require.Error(t, err)
	assert.Nil(t, model)
	assert.Contains(t, err.Error(), "duplicate requirement #1")

	var extractionErr *core.ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, 7, extractionErr.Location.Line)
}

func TestCollectorKeywordArity(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		text    string
		wantErr string
	}{
		{"shall once", "shall", "The provider shall do it.", ""},
		{"should once", "should", "The provider should do it.", ""},
		{"may once", "may", "The provider may do it.", ""},
		{"level is case insensitive", "SHALL", "The provider shall do it.", ""},
		{"shall twice", "shall", "It shall do this and shall do that.", "should have exactly one shall keyword, not 2"},
		{"shall missing", "shall", "The provider does it.", "should have exactly one shall keyword, not 0"},
		{"keyword is case sensitive", "shall", "Providers SHALL do it.", "should have exactly one shall keyword, not 0"},
		{"shall with may", "shall", "It shall do this and may do that.", "should not have any may (1)"},
		{"should with shall", "should", "It should do this and shall do that.", "should not have any shall (1)"},
		{"may with should", "may", "It may do this and should do that.", "should not have any should (1)"},
		{"whole words only", "shall", "It shall do it, marshall mayhem.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := requirementDoc(7, "sdpi_req_type=tech_feature,sdpi_req_level="+tt.level, "[NORMATIVE]\n"+tt.text)
			model, _, err := collect(t, text)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Contains(t, model.Requirements, 7)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "requirement #7 "+tt.wantErr)
		})
	}
}

func TestCollectorKeywordsInLists(t *testing.T) {
	body := "[NORMATIVE]\n====\nThe provider shall support:\n\n* option a\n* option b which may be used\n===="
	_, _, err := collect(t, requirementDoc(8, "sdpi_req_type=tech_feature,sdpi_req_level=shall", body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should not have any may (1)")
}

func TestCollectorRequirementAttributes(t *testing.T) {
	tests := []struct {
		name    string
		attrs   string
		wantErr string
	}{
		{"missing level", "sdpi_req_type=tech_feature", "missing sdpi_req_level attribute for requirement #3"},
		{"invalid level", "sdpi_req_level=must,sdpi_req_type=tech_feature", `invalid requirement level "must"`},
		{"invalid type", "sdpi_req_level=shall,sdpi_req_type=feature", `invalid requirement type "feature"`},
		{"ihe profile", "sdpi_req_level=shall,sdpi_req_type=ihe_profile", "currently unsupported"},
		{"use case outside use case", "sdpi_req_level=shall,sdpi_req_type=use_case_feature", "can't find use case in parents for requirement #3"},
		{"ref ics without standard", "sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_section=1", "missing standard id"},
		{"ref ics without locator", "sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_id=ref_a", "at least one of sdpi_ref_section or sdpi_ref_req is required"},
		{"ref ics empty section", `sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_id=ref_a,sdpi_ref_section=""`, "at least one of sdpi_ref_section or sdpi_ref_req is required"},
		{"ref ics blank locators", `sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_id=ref_a,sdpi_ref_section=" ",sdpi_ref_req=""`, "at least one of sdpi_ref_section or sdpi_ref_req is required"},
		{"ref ics empty section with requirement", `sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_id=ref_a,sdpi_ref_section="",sdpi_ref_req=R42`, ""},
		{"ref ics unknown standard", "sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_id=ref_unknown,sdpi_ref_section=1", "bibliography entry for ref_unknown is missing"},
		{"ref ics section only", "sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_id=ref_a,sdpi_ref_section=1", ""},
		{"ref ics requirement only", "sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_id=ref_a,sdpi_ref_req=R42", ""},
		{"risk without ses type", "sdpi_req_level=shall,sdpi_req_type=risk_mitigation,sdpi_ses_test=wire", "missing ses type"},
		{"risk invalid ses type", "sdpi_req_level=shall,sdpi_req_type=risk_mitigation,sdpi_ses_type=special,sdpi_ses_test=wire", "invalid ses type (special)"},
		{"risk without testability", "sdpi_req_level=shall,sdpi_req_type=risk_mitigation,sdpi_ses_type=aspect", "missing test type"},
		{"risk invalid testability", "sdpi_req_level=shall,sdpi_req_type=risk_mitigation,sdpi_ses_type=aspect,sdpi_ses_test=guess", "invalid test type (guess)"},
		{"risk valid", "sdpi_req_level=shall,sdpi_req_type=risk_mitigation,sdpi_ses_type=aspect,sdpi_ses_test=inspect", ""},
	}

	bib := "[bibliography]\n* [[[ref_a]]] Standard A\n\n"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, _, err := collect(t, bib+requirementDoc(3, tt.attrs, "[NORMATIVE]\nThe provider shall do it."))
			if tt.wantErr == "" {
				require.NoError(t, err)
				r := model.Requirements[3]
				assert.NoError(t, schema.ValidateRequirement(&r))
				return
			}
			require.Error(t, err)
			assert.Nil(t, model)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "test.adoc:")
		})
	}
}

func TestCollectorRefIcsLocators(t *testing.T) {
	bib := "[bibliography]\n* [[[ref_a]]] Standard A\n\n"
	model, _, err := collect(t, bib+requirementDoc(3,
		"sdpi_req_level=shall,sdpi_req_type=ref_ics,sdpi_ref_id=ref_a,sdpi_ref_req=R42",
		"[NORMATIVE]\nThe provider shall do it."))
	require.NoError(t, err)

	assert.Equal(t, &schema.RefIcsDetails{
		StandardID:  "ref_a",
		Source:      "Standard A",
		Requirement: "R42",
	}, model.Requirements[3].RefIcs)
}

func TestCollectorMissingRequirementNumber(t *testing.T) {
	_, _, err := collect(t, "[role=requirement,sdpi_req_level=shall]\n****\nIt shall.\n****\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing the requirement-number attribute")

	_, _, err = collect(t, "[role=requirement,requirement-number=abc,sdpi_req_level=shall]\n****\nIt shall.\n****\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid requirement number "abc"`)

	_, _, err = collect(t, "[role=requirement,requirement-number=5,sdpi_req_level=shall]\n****\nIt shall.\n****\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirement #5 is missing the id attribute")
}

func TestCollectorMissingTypeDefaultsToTechFeature(t *testing.T) {
	model, logger, err := collect(t, requirementDoc(4, "sdpi_req_level=shall", "[NORMATIVE]\nThe provider shall do it."))
	require.NoError(t, err)

	assert.Equal(t, schema.TypeTechFeature, model.Requirements[4].Type)
	assert.Equal(t, []string{"requirement type missing, assuming tech_feature"}, logger.messages("warn"))
}

func TestCollectorPromotesUnstyledContent(t *testing.T) {
	body := "The provider shall do it.\n\nIt does it quickly."
	model, logger, err := collect(t, requirementDoc(5, "sdpi_req_level=shall,sdpi_req_type=tech_feature", body))
	require.NoError(t, err)

	assert.Equal(t, schema.ContentList{
		schema.Block{Lines: []string{"The provider shall do it."}},
		schema.Block{Lines: []string{"It does it quickly."}},
	}, model.Requirements[5].Specification.Normative)
	assert.Equal(t, []string{
		"unstyled content in requirement",
		"unstyled content in requirement",
		"missing normative content, using unstyled paragraphs",
	}, logger.messages("warn"))
}

func TestCollectorStyledNormativeIgnoresUnstyled(t *testing.T) {
	body := "[NORMATIVE]\nThe provider shall do it.\n\nContext that may help."
	model, logger, err := collect(t, requirementDoc(5, "sdpi_req_level=shall,sdpi_req_type=tech_feature", body))
	require.NoError(t, err)

	assert.Len(t, model.Requirements[5].Specification.Normative, 1)
	assert.Equal(t, []string{"unstyled content in requirement"}, logger.messages("warn"))
}

func TestCollectorLegacyExampleNote(t *testing.T) {
	body := "[NORMATIVE]\nThe provider shall do it.\n\n====\nA legacy note.\n===="
	model, logger, err := collect(t, requirementDoc(6, "sdpi_req_level=shall,sdpi_req_type=tech_feature", body))
	require.NoError(t, err)

	assert.Equal(t, schema.ContentList{schema.Block{Lines: []string{"A legacy note."}}},
		model.Requirements[6].Specification.Note)
	assert.Equal(t, []string{"notes should be a NOTE block, treating example block as note"}, logger.messages("warn"))
}

func TestCollectorMissingNormativeStatement(t *testing.T) {
	body := "[NOTE]\n====\nOnly a note.\n===="
	_, _, err := collect(t, requirementDoc(9, "sdpi_req_level=shall,sdpi_req_type=tech_feature", body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirement #9 missing the required normative statement")
}

func TestCollectorUseCaseErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			"scenario without steps",
			"[role=use-case-scenario,sdpi_scenario=Alone]\n====\nNothing here.\n====\n",
			"missing steps for scenario Alone",
		},
		{
			"scenario followed by another scenario",
			"[role=use-case-scenario,sdpi_scenario=First]\n====\nx\n====\n\n[role=use-case-scenario,sdpi_scenario=Second]\n====\n[role=use-case-steps]\n--\n*When* y\n--\n====\n",
			"missing steps for scenario First",
		},
		{
			"scenario without title",
			"[role=use-case-scenario]\n====\n[role=use-case-steps]\n--\n*When* y\n--\n====\n",
			"missing required scenario title",
		},
		{
			"steps with a list",
			"[role=use-case-scenario,sdpi_scenario=S]\n====\n[role=use-case-steps]\n--\n* not a step\n--\n====\n",
			"expected paragraph",
		},
		{
			"malformed step",
			"[role=use-case-background]\n====\nthe device is on\n====\n",
			"step invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "[role=use-case,sdpi_use_case_id=uc]\n== Use case\n\n" + tt.body
			model, _, err := collect(t, text)
			require.Error(t, err)
			assert.Nil(t, model)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCollectorUseCaseMissingID(t *testing.T) {
	_, _, err := collect(t, "[role=use-case]\n== Use case\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use case is missing the sdpi_use_case_id attribute")
}

func TestCollectorUseCaseScenariosInOrder(t *testing.T) {
	text := `[role=use-case,sdpi_use_case_id=uc]
== Use case

[role=use-case-scenario,sdpi_scenario=One]
====
[role=use-case-steps]
--
*When* a
--
====

--
[role=use-case-scenario,sdpi_scenario=Two]
====
[role=use-case-steps]
--
*When* b
*Then* c
--
====
--
`
	model, _, err := collect(t, text)
	require.NoError(t, err)

	scenarios := model.UseCases["uc"].Specification.Scenarios
	require.Len(t, scenarios, 2)
	assert.Equal(t, "One", scenarios[0].Title)
	assert.Len(t, scenarios[0].Steps, 1)
	assert.Equal(t, "Two", scenarios[1].Title)
	assert.Len(t, scenarios[1].Steps, 2)
	assert.Empty(t, model.UseCases["uc"].Specification.Background)
}

func TestCollectorUseCaseOverwrite(t *testing.T) {
	text := "[role=use-case,sdpi_use_case_id=uc]\n== First\n\n[role=use-case,sdpi_use_case_id=uc]\n== Second\n"
	model, logger, err := collect(t, text)
	require.NoError(t, err)

	assert.Equal(t, "Second", model.UseCases["uc"].Title)
	assert.Equal(t, []string{"use case id redefined, replacing earlier definition"}, logger.messages("warn"))
}

func TestCollectorFreshStatePerRun(t *testing.T) {
	doc, err := asciidoc.ParseString("test.adoc", requirementDoc(1, "sdpi_req_level=shall,sdpi_req_type=tech_feature", "It shall."))
	require.NoError(t, err)

	c := NewCollector(nil, core.NewNopLogger())
	first, err := c.Process(doc)
	require.NoError(t, err)
	second, err := c.Process(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}
