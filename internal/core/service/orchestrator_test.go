package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

type recorder struct {
	calls    []model.PlatformID
	variants map[model.PlatformID]*model.Variant
}

func newRecorder() *recorder {
	return &recorder{
		calls:    make([]model.PlatformID, 0),
		variants: make(map[model.PlatformID]*model.Variant),
	}
}

func (r *recorder) collaborator(platform model.PlatformID) port.Collaborator {
	return port.CollaboratorFunc(func(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
		r.calls = append(r.calls, platform)
		r.variants[platform] = variant
		return &model.PublishedRef{
			ID:  string(platform) + "-1",
			URL: fmt.Sprintf("https://%s.example.com/%s", platform, variant.Metadata.Slug),
		}, nil
	})
}

func storyTechnicalCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat := defaultCatalog(t)

	cat.Platforms = []model.PlatformRuleSet{
		{
			ID:           "a",
			Enabled:      true,
			KeepRegions:  []string{"story"},
			DropRegions:  []string{"technical"},
			Capabilities: []model.Capability{model.CapabilityFencedCode},
		},
		{
			ID:           "b",
			Enabled:      true,
			KeepRegions:  []string{"technical"},
			DropRegions:  []string{"story"},
			Capabilities: []model.Capability{model.CapabilityFencedCode},
		},
	}

	return cat
}

func TestOrchestrateStoryAndTechnical(t *testing.T) {
	cat := storyTechnicalCatalog(t)
	doc := loadDocument(t, cat, "story_technical.md")

	rec := newRecorder()

	orchestrator := NewOrchestrator(cat, map[model.PlatformID]port.Collaborator{
		"a": rec.collaborator("a"),
		"b": rec.collaborator("b"),
	})

	report := orchestrator.Orchestrate(context.Background(), doc)

	if e, g := 2, len(report.Outcomes); e != g {
		t.Fatalf("len(report.Outcomes): expected '%v', got '%v'", e, g)
	}

	for i, platform := range []model.PlatformID{"a", "b"} {
		outcome := report.Outcomes[i]

		if e, g := platform, outcome.Platform; e != g {
			t.Errorf("report.Outcomes[%d].Platform: expected '%v', got '%v'", i, e, g)
		}

		if e, g := model.OutcomeSucceeded, outcome.Kind; e != g {
			t.Errorf("report.Outcomes[%d].Kind: expected '%v', got '%v'\n%s", i, e, g, spew.Sdump(outcome))
		}
	}

	a := rec.variants["a"].Content
	b := rec.variants["b"].Content

	for _, s := range []string{"## Story", "Story paragraph one.", "Story paragraph two."} {
		if !strings.Contains(a, s) {
			t.Errorf("variant a: expected to contain '%s'\n%s", s, a)
		}
		if strings.Contains(b, s) {
			t.Errorf("variant b: expected not to contain '%s'\n%s", s, b)
		}
	}

	for _, s := range []string{"## Setup steps", "Technical paragraph.", "fmt.Println(\"technical\")"} {
		if !strings.Contains(b, s) {
			t.Errorf("variant b: expected to contain '%s'\n%s", s, b)
		}
		if strings.Contains(a, s) {
			t.Errorf("variant a: expected not to contain '%s'\n%s", s, a)
		}
	}

	if e, g := model.ReportSuccess, report.Status(); e != g {
		t.Errorf("report.Status(): expected '%v', got '%v'", e, g)
	}
}

func TestOrchestrateConstraintFailure(t *testing.T) {
	cat := storyTechnicalCatalog(t)

	maxTags := 5
	cat.Platforms = append(cat.Platforms, model.PlatformRuleSet{
		ID:      "c",
		Enabled: true,
		Constraints: []model.MetadataConstraint{
			{Field: model.FieldTags, Max: &maxTags, Mode: model.ConstraintReject},
		},
	})

	doc := loadDocument(t, cat, "many_tags.md")

	rec := newRecorder()

	orchestrator := NewOrchestrator(cat, map[model.PlatformID]port.Collaborator{
		"a": rec.collaborator("a"),
		"b": rec.collaborator("b"),
		"c": rec.collaborator("c"),
	})

	report := orchestrator.Orchestrate(context.Background(), doc)

	expected := []model.OutcomeKind{model.OutcomeSucceeded, model.OutcomeSucceeded, model.OutcomeFailed}

	if e, g := len(expected), len(report.Outcomes); e != g {
		t.Fatalf("len(report.Outcomes): expected '%v', got '%v'", e, g)
	}

	for i, kind := range expected {
		if e, g := kind, report.Outcomes[i].Kind; e != g {
			t.Errorf("report.Outcomes[%d].Kind: expected '%v', got '%v'", i, e, g)
		}
	}

	failed := report.Outcomes[2]

	if e, g := model.StateBuildFailed, failed.State; e != g {
		t.Errorf("failed.State: expected '%v', got '%v'", e, g)
	}

	var constraintErr *model.VariantConstraintError
	if !errors.As(failed.Err, &constraintErr) {
		t.Fatalf("expected a *model.VariantConstraintError, got '%v'", failed.Err)
	}

	if e, g := "max 5", constraintErr.Bound; e != g {
		t.Errorf("constraintErr.Bound: expected '%v', got '%v'", e, g)
	}

	if !strings.Contains(failed.Error, "tags") {
		t.Errorf("failed.Error: expected to name the tags field, got '%s'", failed.Error)
	}

	if e, g := []model.PlatformID{"a", "b"}, rec.calls; fmt.Sprint(e) != fmt.Sprint(g) {
		t.Errorf("rec.calls: expected '%v', got '%v'", e, g)
	}

	if e, g := model.ReportPartial, report.Status(); e != g {
		t.Errorf("report.Status(): expected '%v', got '%v'", e, g)
	}
}

func TestOrchestrateIsolation(t *testing.T) {
	const platforms = 4

	type failure int

	const (
		failBuild failure = iota
		failPublish
		panicPublish
		missingCollaborator
	)

	type testCase struct {
		Name    string
		Failure failure
		State   model.PlatformState
	}

	testCases := []testCase{
		{Name: "BuildError", Failure: failBuild, State: model.StateBuildFailed},
		{Name: "PublishError", Failure: failPublish, State: model.StateFailed},
		{Name: "PublishPanic", Failure: panicPublish, State: model.StateFailed},
		{Name: "MissingCollaborator", Failure: missingCollaborator, State: model.StateFailed},
	}

	for _, tc := range testCases {
		for k := 0; k < platforms; k++ {
			t.Run(fmt.Sprintf("%s/%d", tc.Name, k), func(t *testing.T) {
				cat := defaultCatalog(t)
				cat.Platforms = make([]model.PlatformRuleSet, 0, platforms)

				rec := newRecorder()
				collaborators := make(map[model.PlatformID]port.Collaborator)

				for i := 0; i < platforms; i++ {
					id := model.PlatformID(fmt.Sprintf("p%d", i))
					rules := model.PlatformRuleSet{ID: id, Enabled: true}
					collaborators[id] = rec.collaborator(id)

					if i == k {
						switch tc.Failure {
						case failBuild:
							rules.Layout = "{{ .Unknown }}"
						case failPublish:
							collaborators[id] = port.CollaboratorFunc(func(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
								return nil, errors.Wrap(port.ErrUnavailable, "remote down")
							})
						case panicPublish:
							collaborators[id] = port.CollaboratorFunc(func(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
								panic("boom")
							})
						case missingCollaborator:
							delete(collaborators, id)
						}
					}

					cat.Platforms = append(cat.Platforms, rules)
				}

				doc := loadDocument(t, cat, "story_technical.md")

				report := NewOrchestrator(cat, collaborators).Orchestrate(context.Background(), doc)

				if e, g := platforms, len(report.Outcomes); e != g {
					t.Fatalf("len(report.Outcomes): expected '%v', got '%v'", e, g)
				}

				for i, outcome := range report.Outcomes {
					if e, g := model.PlatformID(fmt.Sprintf("p%d", i)), outcome.Platform; e != g {
						t.Errorf("report.Outcomes[%d].Platform: expected '%v', got '%v'", i, e, g)
					}

					if i != k {
						if e, g := model.OutcomeSucceeded, outcome.Kind; e != g {
							t.Errorf("report.Outcomes[%d].Kind: expected '%v', got '%v'", i, e, g)
						}
						continue
					}

					if e, g := model.OutcomeFailed, outcome.Kind; e != g {
						t.Errorf("report.Outcomes[%d].Kind: expected '%v', got '%v'", i, e, g)
					}

					if e, g := tc.State, outcome.State; e != g {
						t.Errorf("report.Outcomes[%d].State: expected '%v', got '%v'", i, e, g)
					}

					if outcome.Err == nil || outcome.Error == "" {
						t.Errorf("report.Outcomes[%d]: expected an error", i)
					}

					if tc.State == model.StateFailed {
						var collaboratorErr *model.PublishCollaboratorError
						if !errors.As(outcome.Err, &collaboratorErr) {
							t.Errorf("expected a *model.PublishCollaboratorError, got '%v'", outcome.Err)
						}
					}
				}

				if e, g := platforms-1, report.Count(model.OutcomeSucceeded); e != g {
					t.Errorf("report.Count(succeeded): expected '%v', got '%v'", e, g)
				}

				if tc.Failure == failPublish {
					if !errors.Is(report.Outcomes[k].Err, port.ErrUnavailable) {
						t.Errorf("expected the collaborator error to wrap port.ErrUnavailable, got '%v'", report.Outcomes[k].Err)
					}
				}
			})
		}
	}
}

func TestOrchestrateDryRunEquivalence(t *testing.T) {
	cat := defaultCatalog(t)
	doc := loadDocument(t, cat, "article.md")

	rec := newRecorder()
	collaborators := make(map[model.PlatformID]port.Collaborator)
	for _, id := range cat.PlatformIDs() {
		collaborators[id] = rec.collaborator(id)
	}

	orchestrator := NewOrchestrator(cat, collaborators)

	dryRun := orchestrator.Orchestrate(context.Background(), doc, WithDryRun(true))

	if e, g := 0, len(rec.calls); e != g {
		t.Fatalf("len(rec.calls) after dry run: expected '%v', got '%v'", e, g)
	}

	published := orchestrator.Orchestrate(context.Background(), doc)

	if e, g := len(published.Outcomes), len(dryRun.Outcomes); e != g {
		t.Fatalf("len(dryRun.Outcomes): expected '%v', got '%v'", e, g)
	}

	if !dryRun.DryRun || published.DryRun {
		t.Errorf("unexpected DryRun flags: dry run '%v', published '%v'", dryRun.DryRun, published.DryRun)
	}

	for i := range published.Outcomes {
		r, d := published.Outcomes[i], dryRun.Outcomes[i]

		if e, g := r.Platform, d.Platform; e != g {
			t.Errorf("dryRun.Outcomes[%d].Platform: expected '%v', got '%v'", i, e, g)
		}

		if e, g := model.OutcomeSucceeded, r.Kind; e != g {
			t.Fatalf("published.Outcomes[%d].Kind: expected '%v', got '%v'\n%s", i, e, g, spew.Sdump(r))
		}

		if e, g := r.Kind, d.Kind; e != g {
			t.Errorf("dryRun.Outcomes[%d].Kind: expected '%v', got '%v'", i, e, g)
		}

		if d.Variant == nil || r.Variant == nil {
			t.Fatalf("outcome %d: expected both variants to be attached", i)
		}

		if e, g := r.Variant.Content, d.Variant.Content; e != g {
			t.Errorf("dryRun.Outcomes[%d].Variant.Content: expected '%v', got '%v'", i, e, g)
		}

		if e, g := rec.variants[r.Platform].Content, d.Variant.Content; e != g {
			t.Errorf("published content of '%s' differs from the dry run", r.Platform)
		}

		if d.Reference != nil {
			t.Errorf("dryRun.Outcomes[%d].Reference: expected nil, got '%v'", i, d.Reference)
		}

		if r.Reference == nil || r.Reference.URL == "" {
			t.Errorf("published.Outcomes[%d].Reference: expected a reference", i)
		}
	}
}

func TestOrchestrateSelectionAndDisabled(t *testing.T) {
	cat := defaultCatalog(t)
	doc := loadDocument(t, cat, "article.md")

	disabled := false
	metadata := doc.Metadata()
	metadata.Platforms["qiita"] = model.PlatformSettings{Enabled: &disabled}
	doc = model.NewDocument(metadata, doc.Blocks())

	rec := newRecorder()
	collaborators := make(map[model.PlatformID]port.Collaborator)
	for _, id := range cat.PlatformIDs() {
		collaborators[id] = rec.collaborator(id)
	}

	report := NewOrchestrator(cat, collaborators).Orchestrate(context.Background(), doc, WithPlatforms("zenn", "qiita"))

	type expectation struct {
		Kind   model.OutcomeKind
		Reason string
	}

	expected := map[model.PlatformID]expectation{
		"blog":  {Kind: model.OutcomeSkipped, Reason: ReasonNotSelected},
		"zenn":  {Kind: model.OutcomeSucceeded},
		"qiita": {Kind: model.OutcomeSkipped, Reason: ReasonDisabled},
		"note":  {Kind: model.OutcomeSkipped, Reason: ReasonNotSelected},
	}

	if e, g := len(expected), len(report.Outcomes); e != g {
		t.Fatalf("len(report.Outcomes): expected '%v', got '%v'", e, g)
	}

	for platform, exp := range expected {
		outcome, exists := report.Outcome(platform)
		if !exists {
			t.Errorf("outcome of '%s' not found", platform)
			continue
		}

		if e, g := exp.Kind, outcome.Kind; e != g {
			t.Errorf("outcome[%s].Kind: expected '%v', got '%v'", platform, e, g)
		}

		if e, g := exp.Reason, outcome.Reason; e != g {
			t.Errorf("outcome[%s].Reason: expected '%v', got '%v'", platform, e, g)
		}
	}

	if e, g := []model.PlatformID{"zenn"}, rec.calls; fmt.Sprint(e) != fmt.Sprint(g) {
		t.Errorf("rec.calls: expected '%v', got '%v'", e, g)
	}
}

func TestOrchestrateInterrupted(t *testing.T) {
	cat := defaultCatalog(t)
	doc := loadDocument(t, cat, "article.md")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newRecorder()
	collaborators := make(map[model.PlatformID]port.Collaborator)
	for _, id := range cat.PlatformIDs() {
		collaborators[id] = rec.collaborator(id)
	}

	// The second platform interrupts the run once it has published.
	second := cat.Platforms[1].ID
	collaborators[second] = port.CollaboratorFunc(func(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
		ref, err := rec.collaborator(second).Publish(ctx, variant)
		cancel()
		return ref, err
	})

	report := NewOrchestrator(cat, collaborators).Orchestrate(ctx, doc)

	if e, g := len(cat.Platforms), len(report.Outcomes); e != g {
		t.Fatalf("len(report.Outcomes): expected '%v', got '%v'", e, g)
	}

	for i, outcome := range report.Outcomes {
		if i < 2 {
			if e, g := model.OutcomeSucceeded, outcome.Kind; e != g {
				t.Errorf("report.Outcomes[%d].Kind: expected '%v', got '%v'", i, e, g)
			}
			continue
		}

		if e, g := model.OutcomeSkipped, outcome.Kind; e != g {
			t.Errorf("report.Outcomes[%d].Kind: expected '%v', got '%v'", i, e, g)
		}

		if e, g := ReasonInterrupted, outcome.Reason; e != g {
			t.Errorf("report.Outcomes[%d].Reason: expected '%v', got '%v'", i, e, g)
		}
	}

	if e, g := 2, len(rec.calls); e != g {
		t.Errorf("len(rec.calls): expected '%v', got '%v'", e, g)
	}
}

func TestOrchestrateCanceledWithSelection(t *testing.T) {
	cat := defaultCatalog(t)
	doc := loadDocument(t, cat, "article.md")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := newRecorder()
	collaborators := make(map[model.PlatformID]port.Collaborator)
	for _, id := range cat.PlatformIDs() {
		collaborators[id] = rec.collaborator(id)
	}

	report := NewOrchestrator(cat, collaborators).Orchestrate(ctx, doc, WithPlatforms("blog"))

	if e, g := len(cat.Platforms), len(report.Outcomes); e != g {
		t.Fatalf("len(report.Outcomes): expected '%v', got '%v'", e, g)
	}

	for _, outcome := range report.Outcomes {
		reason := ReasonNotSelected
		if outcome.Platform == "blog" {
			reason = ReasonInterrupted
		}

		if e, g := model.OutcomeSkipped, outcome.Kind; e != g {
			t.Errorf("outcome[%s].Kind: expected '%v', got '%v'", outcome.Platform, e, g)
		}

		if e, g := reason, outcome.Reason; e != g {
			t.Errorf("outcome[%s].Reason: expected '%v', got '%v'", outcome.Platform, e, g)
		}
	}

	if e, g := 0, len(rec.calls); e != g {
		t.Errorf("len(rec.calls): expected '%v', got '%v'", e, g)
	}
}
