package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Variant is the platform ready rendering of a document.
type Variant struct {
	Platform PlatformID      `json:"platform" yaml:"platform"`
	Content  string          `json:"content" yaml:"content"`
	Metadata VariantMetadata `json:"metadata" yaml:"metadata"`
	Warnings []Warning       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Checksum string          `json:"checksum" yaml:"checksum"`
}

// VariantMetadata is the metadata resolved for one platform.
type VariantMetadata struct {
	Title        string        `json:"title" yaml:"title"`
	Slug         string        `json:"slug" yaml:"slug"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	Tags         []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Topics       []string      `json:"topics,omitempty" yaml:"topics,omitempty"`
	Category     string        `json:"category,omitempty" yaml:"category,omitempty"`
	Author       string        `json:"author,omitempty" yaml:"author,omitempty"`
	Emoji        string        `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Type         string        `json:"type,omitempty" yaml:"type,omitempty"`
	Price        int           `json:"price,omitempty" yaml:"price,omitempty"`
	Private      bool          `json:"private,omitempty" yaml:"private,omitempty"`
	Status       PublishStatus `json:"status,omitempty" yaml:"status,omitempty"`
	ID           string        `json:"id,omitempty" yaml:"id,omitempty"`
	CanonicalURL string        `json:"canonicalUrl,omitempty" yaml:"canonicalUrl,omitempty"`
	CreatedAt    time.Time     `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt,omitzero" yaml:"updatedAt,omitempty"`
}

func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

type WarningAction string

const (
	ActionDropped    WarningAction = "dropped"
	ActionDowngraded WarningAction = "downgraded"
	ActionRemoved    WarningAction = "removed"
	ActionClamped    WarningAction = "clamped"
	ActionTruncated  WarningAction = "truncated"
	ActionResolved   WarningAction = "resolved"
	ActionClosed     WarningAction = "closed"
)

// Warning records a transformation decision. Warnings are informational and
// never fail a build.
type Warning struct {
	// Subject is the region name, markup construct or metadata field the
	// decision applies to.
	Subject string        `json:"subject" yaml:"subject"`
	Action  WarningAction `json:"action" yaml:"action"`
	Detail  string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	// Block is the index of the source block, -1 when not block related.
	Block int `json:"block" yaml:"block"`
}

func (w Warning) String() string {
	var s string
	if w.Block >= 0 {
		s = fmt.Sprintf("block %d: %s %s", w.Block, w.Subject, w.Action)
	} else {
		s = fmt.Sprintf("%s %s", w.Subject, w.Action)
	}
	if w.Detail != "" {
		s += " (" + w.Detail + ")"
	}
	return s
}
