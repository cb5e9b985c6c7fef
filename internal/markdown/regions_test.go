package markdown

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/pkg/errors"
)

func TestUnterminatedRegion(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("---\ntitle: Unterminated\n---\n\n")
	for i := 0; i < 10; i++ {
		if i == 3 {
			sb.WriteString("<!-- start -->\n\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("Paragraph %d.\n\n", i))
	}

	markers := WithMarkers(model.MarkerSyntax{
		Start:  `^<!--\s*start\s*-->$`,
		End:    `^<!--\s*end\s*-->$`,
		Region: "start",
	})

	doc, err := Parse([]byte(sb.String()), markers)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	blocks := doc.Blocks()

	if e, g := 10, len(blocks); e != g {
		t.Fatalf("len(blocks): expected '%v', got '%v'", e, g)
	}

	for i, b := range blocks {
		if e, g := i >= 3, b.InRegion("start"); e != g {
			t.Errorf("blocks[%d].InRegion(start): expected '%v', got '%v'", i, e, g)
		}
	}

	warnings := doc.Warnings()

	if e, g := 1, len(warnings); e != g {
		t.Fatalf("len(warnings): expected '%v', got '%v'", e, g)
	}

	if !strings.Contains(warnings[0].String(), "start") || !strings.Contains(warnings[0].String(), "closed at document end") {
		t.Errorf("warnings[0]: unexpected message '%s'", warnings[0])
	}

	regions := doc.Regions()

	if e, g := 1, len(regions); e != g {
		t.Fatalf("len(regions): expected '%v', got '%v'", e, g)
	}

	if e, g := 3, regions[0].Start; e != g {
		t.Errorf("regions[0].Start: expected '%v', got '%v'", e, g)
	}

	if e, g := 9, regions[0].End; e != g {
		t.Errorf("regions[0].End: expected '%v', got '%v'", e, g)
	}

	if regions[0].Closed {
		t.Errorf("regions[0].Closed: expected 'false'")
	}
}

func TestExtractRegions(t *testing.T) {
	type testCase struct {
		Name             string
		Body             string
		ExpectedRegions  []string
		ExpectedWarnings int
	}

	testCases := []testCase{
		{
			Name: "Untagged",
			Body: "First.\n\nSecond.\n",
			ExpectedRegions: []string{
				"",
				"",
			},
		},
		{
			Name: "Nested",
			Body: strings.Join([]string{
				"Before.",
				"<!-- region:outer -->",
				"Outer.",
				"<!-- region:inner -->",
				"Inner.",
				"<!-- endregion -->",
				"Outer again.",
				"<!-- endregion:outer -->",
				"After.",
			}, "\n\n"),
			ExpectedRegions: []string{
				"",
				"outer",
				"outer",
				"inner,outer",
				"inner,outer",
				"inner,outer",
				"outer",
				"outer",
				"",
			},
		},
		{
			Name: "OuterEndClosesInner",
			Body: strings.Join([]string{
				"<!-- region:outer -->",
				"<!-- paid -->",
				"Paid.",
				"<!-- endregion:outer -->",
				"After.",
			}, "\n\n"),
			ExpectedRegions: []string{
				"outer",
				"paid-only,outer",
				"paid-only,outer",
				"paid-only,outer",
				"",
			},
			ExpectedWarnings: 1,
		},
		{
			Name: "PlatformWrapper",
			Body: strings.Join([]string{
				"<!-- platform:qiita -->",
				"Qiita.",
				"<!-- endplatform -->",
				"<!-- platform:note -->",
				"note.",
				"<!-- endplatform -->",
			}, "\n\n"),
			ExpectedRegions: []string{
				"marker-wrapped:qiita",
				"marker-wrapped:qiita",
				"marker-wrapped:qiita",
				"marker-wrapped:note",
				"marker-wrapped:note",
				"marker-wrapped:note",
			},
		},
		{
			// Explicit regions take precedence over the heading region they
			// are placed in.
			Name: "ExplicitInsideHeadingRegion",
			Body: strings.Join([]string{
				"## Lessons learned",
				"Story.",
				"<!-- platform:blog -->",
				"Blog only story.",
				"<!-- endplatform -->",
				"## Next",
				"Shared.",
			}, "\n\n"),
			ExpectedRegions: []string{
				"story",
				"story",
				"marker-wrapped:blog,story",
				"marker-wrapped:blog,story",
				"marker-wrapped:blog,story",
				"",
				"",
			},
		},
		{
			Name: "HeadingRegionAcrossWrapper",
			Body: strings.Join([]string{
				"<!-- platform:zenn -->",
				"## Lessons learned",
				"Story.",
				"<!-- endplatform -->",
				"Outside.",
			}, "\n\n"),
			ExpectedRegions: []string{
				"marker-wrapped:zenn",
				"marker-wrapped:zenn,story",
				"marker-wrapped:zenn,story",
				"marker-wrapped:zenn,story",
				"story",
			},
		},
	}

	vocabulary := WithVocabulary(model.HeadingVocabulary{
		MinLevel: 2,
		Regions: []model.HeadingRegion{
			{Name: "story", Phrases: []string{"Lessons Learned"}},
		},
	})

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			data := "---\ntitle: Regions\n---\n\n" + tc.Body + "\n"

			doc, err := Parse([]byte(data), vocabulary)
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			blocks := doc.Blocks()

			if e, g := len(tc.ExpectedRegions), len(blocks); e != g {
				t.Fatalf("len(blocks): expected '%v', got '%v'", e, g)
			}

			for i, expected := range tc.ExpectedRegions {
				if e, g := expected, strings.Join(blocks[i].Regions, ","); e != g {
					t.Errorf("blocks[%d].Regions: expected '%v', got '%v'", i, e, g)
				}
			}

			if e, g := tc.ExpectedWarnings, len(doc.Warnings()); e != g {
				t.Errorf("len(doc.Warnings()): expected '%v', got '%v'", e, g)
			}
		})
	}
}

func TestEndMarkerWithoutStart(t *testing.T) {
	data := "---\ntitle: T\n---\n\n<!-- region:a -->\n\nA.\n\n<!-- endregion:b -->\n"

	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatalf("Parse() should have failed")
	}

	var malformed *model.MalformedDocumentError
	if !errors.As(err, &malformed) {
		t.Fatalf("err: expected '%T', got '%+v'", malformed, err)
	}

	if e, g := 2, malformed.Block; e != g {
		t.Errorf("malformed.Block: expected '%v', got '%v'", e, g)
	}
}

func TestNormalizeHeading(t *testing.T) {
	type testCase struct {
		Text     string
		Expected string
	}

	testCases := []testCase{
		{Text: "🔧 具体的な実装", Expected: "具体的な実装"},
		{Text: "  Lessons   LEARNED ", Expected: "lessons learned"},
		{Text: "**Step 1**: Setup", Expected: "step 1: setup"},
		{Text: "ＦＡＱ", Expected: "faq"},
	}

	for _, tc := range testCases {
		t.Run(tc.Text, func(t *testing.T) {
			if e, g := tc.Expected, NormalizeHeading(tc.Text); e != g {
				t.Errorf("NormalizeHeading(): expected '%v', got '%v'", e, g)
			}
		})
	}
}

func TestCalloutEnclosingMarkers(t *testing.T) {
	type testCase struct {
		Name            string
		Body            string
		ExpectedKinds   []model.BlockKind
		ExpectedRaws    []string
		ExpectedRegions []string
	}

	testCases := []testCase{
		{
			Name: "MarkersInside",
			Body: strings.Join([]string{
				":::note",
				"Shared.",
				"<!-- platform:zenn -->",
				"Zenn.",
				"<!-- endplatform -->",
				":::",
			}, "\n\n"),
			ExpectedKinds: []model.BlockKind{
				model.BlockCalloutOpen,
				model.BlockParagraph,
				model.BlockMarker,
				model.BlockParagraph,
				model.BlockMarker,
				model.BlockCalloutClose,
			},
			ExpectedRaws: []string{":::note", "Shared.", "<!-- platform:zenn -->", "Zenn.", "<!-- endplatform -->", ":::"},
			ExpectedRegions: []string{
				"",
				"",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"",
			},
		},
		{
			Name: "StartInsideEndOutside",
			Body: strings.Join([]string{
				":::note",
				"<!-- platform:zenn -->",
				"Zenn.",
				":::",
				"Zenn again.",
				"<!-- endplatform -->",
				"Shared.",
			}, "\n\n"),
			ExpectedKinds: []model.BlockKind{
				model.BlockCalloutOpen,
				model.BlockMarker,
				model.BlockParagraph,
				model.BlockCalloutClose,
				model.BlockParagraph,
				model.BlockMarker,
				model.BlockParagraph,
			},
			ExpectedRaws: []string{":::note", "<!-- platform:zenn -->", "Zenn.", ":::", "Zenn again.", "<!-- endplatform -->", "Shared."},
			ExpectedRegions: []string{
				"",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"",
			},
		},
		{
			Name: "DelimitersSharingParagraphs",
			Body: strings.Join([]string{
				":::note\nShared.",
				"<!-- platform:zenn -->",
				"Zenn.\n:::",
				"<!-- endplatform -->",
				"After.",
			}, "\n\n"),
			ExpectedKinds: []model.BlockKind{
				model.BlockCalloutOpen,
				model.BlockParagraph,
				model.BlockMarker,
				model.BlockParagraph,
				model.BlockCalloutClose,
				model.BlockMarker,
				model.BlockParagraph,
			},
			ExpectedRaws: []string{":::note", "Shared.", "<!-- platform:zenn -->", "Zenn.", ":::", "<!-- endplatform -->", "After."},
			ExpectedRegions: []string{
				"",
				"",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"marker-wrapped:zenn",
				"",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			data := "---\ntitle: Callout\n---\n\n" + tc.Body + "\n"

			doc, err := Parse([]byte(data))
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			blocks := doc.Blocks()

			if e, g := len(tc.ExpectedKinds), len(blocks); e != g {
				t.Fatalf("len(blocks): expected '%v', got '%v'", e, g)
			}

			for i, b := range blocks {
				if e, g := tc.ExpectedKinds[i], b.Kind; e != g {
					t.Errorf("blocks[%d].Kind: expected '%v', got '%v'", i, e, g)
				}

				if e, g := tc.ExpectedRaws[i], b.Raw; e != g {
					t.Errorf("blocks[%d].Raw: expected '%v', got '%v'", i, e, g)
				}

				if e, g := tc.ExpectedRegions[i], strings.Join(b.Regions, ","); e != g {
					t.Errorf("blocks[%d].Regions: expected '%v', got '%v'", i, e, g)
				}
			}

			if e, g := 0, len(doc.Warnings()); e != g {
				t.Errorf("len(doc.Warnings()): expected '%v', got '%v'", e, g)
			}
		})
	}
}
