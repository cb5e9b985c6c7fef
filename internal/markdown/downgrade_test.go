package markdown

import (
	"slices"
	"testing"

	"github.com/bornholm/crosspost/internal/core/model"
)

type capabilities []model.Capability

func (c capabilities) Supports(capability model.Capability) bool {
	return slices.Contains(c, capability)
}

func TestDowngrade(t *testing.T) {
	type testCase struct {
		Name             string
		Block            model.Block
		Capabilities     capabilities
		ExpectedContent  string
		ExpectedRemoved  bool
		ExpectedWarnings int
	}

	testCases := []testCase{
		{
			Name:            "SupportedInlineCode",
			Block:           model.Block{Kind: model.BlockParagraph, Raw: "Use `go test` here."},
			Capabilities:    capabilities{model.CapabilityInlineCode},
			ExpectedContent: "Use `go test` here.",
		},
		{
			Name:             "InlineCode",
			Block:            model.Block{Kind: model.BlockParagraph, Raw: "Use `go test` and `` a`b `` here, not \\`this\\`."},
			ExpectedContent:  "Use go test and a`b here, not \\`this\\`.",
			ExpectedWarnings: 1,
		},
		{
			Name:             "Strikethrough",
			Block:            model.Block{Kind: model.BlockList, Raw: "- ~~old~~ new\n- kept ~ tilde"},
			ExpectedContent:  "- old new\n- kept ~ tilde",
			ExpectedWarnings: 1,
		},
		{
			Name:             "FencedCodeAsText",
			Block:            model.Block{Kind: model.BlockFencedCode, Raw: "```go\nfmt.Println()\n```", Info: "go"},
			ExpectedContent:  "fmt.Println()",
			ExpectedWarnings: 1,
		},
		{
			Name:             "TableAsFencedCode",
			Block:            model.Block{Kind: model.BlockTable, Raw: "| a | b |\n|---|---|\n| 1 | 2 |"},
			Capabilities:     capabilities{model.CapabilityFencedCode},
			ExpectedContent:  "```\n| a | b |\n|---|---|\n| 1 | 2 |\n```",
			ExpectedWarnings: 1,
		},
		{
			Name:             "TableAsText",
			Block:            model.Block{Kind: model.BlockTable, Raw: "| a | b |\n|:--|--:|\n| 1 | 2 |"},
			ExpectedContent:  "a / b  \n1 / 2",
			ExpectedWarnings: 1,
		},
		{
			Name:             "Comment",
			Block:            model.Block{Kind: model.BlockHTML, Raw: "<!-- SNS共有の促進 -->"},
			ExpectedRemoved:  true,
			ExpectedWarnings: 1,
		},
		{
			Name:             "Script",
			Block:            model.Block{Kind: model.BlockHTML, Raw: "<script src=\"embed.js\"></script>"},
			Capabilities:     capabilities{model.CapabilityRawHTML},
			ExpectedRemoved:  true,
			ExpectedWarnings: 1,
		},
		{
			Name:             "RawHTML",
			Block:            model.Block{Kind: model.BlockHTML, Raw: "<div class=\"box\">\n<p>Boxed text</p>\n</div>"},
			ExpectedContent:  "Boxed text",
			ExpectedWarnings: 1,
		},
		{
			Name:             "CalloutMessage",
			Block:            model.Block{Kind: model.BlockCallout, Raw: ":::note warn\nBe careful.\n:::", Info: "note warn"},
			Capabilities:     capabilities{model.CapabilityCalloutMessage},
			ExpectedContent:  ":::message alert\nBe careful.\n:::",
			ExpectedWarnings: 1,
		},
		{
			Name:             "CalloutBold",
			Block:            model.Block{Kind: model.BlockCallout, Raw: ":::message\nFirst.\n\nSecond.\n:::", Info: "message"},
			ExpectedContent:  "**First.**\n\n**Second.**",
			ExpectedWarnings: 1,
		},
		{
			Name:            "CalloutOpenSupported",
			Block:           model.Block{Kind: model.BlockCalloutOpen, Raw: ":::note warn", Info: "note warn"},
			Capabilities:    capabilities{model.CapabilityCallout},
			ExpectedContent: ":::note warn",
		},
		{
			Name:             "CalloutOpenMessage",
			Block:            model.Block{Kind: model.BlockCalloutOpen, Raw: ":::note warn", Info: "note warn"},
			Capabilities:     capabilities{model.CapabilityCalloutMessage},
			ExpectedContent:  ":::message alert",
			ExpectedWarnings: 1,
		},
		{
			Name:            "CalloutCloseMessage",
			Block:           model.Block{Kind: model.BlockCalloutClose, Raw: ":::"},
			Capabilities:    capabilities{model.CapabilityCalloutMessage},
			ExpectedContent: ":::",
		},
		{
			Name:             "CalloutOpenRemoved",
			Block:            model.Block{Kind: model.BlockCalloutOpen, Raw: ":::note", Info: "note"},
			ExpectedRemoved:  true,
			ExpectedWarnings: 1,
		},
		{
			Name:            "CalloutCloseRemoved",
			Block:           model.Block{Kind: model.BlockCalloutClose, Raw: ":::"},
			ExpectedRemoved: true,
		},
		{
			Name:             "MathAsFencedCode",
			Block:            model.Block{Kind: model.BlockMath, Raw: "$$\ne = mc^2\n$$"},
			Capabilities:     capabilities{model.CapabilityFencedCode},
			ExpectedContent:  "```math\ne = mc^2\n```",
			ExpectedWarnings: 1,
		},
		{
			Name:            "Image",
			Block:           model.Block{Kind: model.BlockImage, Raw: "![`alt`](image.png)"},
			ExpectedContent: "![`alt`](image.png)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			content, removed, warnings := Downgrade(tc.Block, tc.Capabilities)

			if e, g := tc.ExpectedRemoved, removed; e != g {
				t.Errorf("removed: expected '%v', got '%v'", e, g)
			}

			if !tc.ExpectedRemoved {
				if e, g := tc.ExpectedContent, content; e != g {
					t.Errorf("content: expected '%v', got '%v'", e, g)
				}
			}

			if e, g := tc.ExpectedWarnings, len(warnings); e != g {
				t.Errorf("len(warnings): expected '%v', got '%v'", e, g)
			}
		})
	}
}

func TestReadHeader(t *testing.T) {
	header := ReadHeader("---\ntitle: Hello\ntopics: [go, test]\n---\n\nBody\n")
	if header == nil {
		t.Fatalf("header should not be nil")
	}

	if e, g := "Hello", header["title"]; e != g {
		t.Errorf("header[title]: expected '%v', got '%v'", e, g)
	}

	if header := ReadHeader("Body only\n"); header != nil {
		t.Errorf("header: expected nil, got '%v'", header)
	}
}
