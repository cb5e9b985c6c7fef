package service

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/pkg/errors"
)

func applyConstraint(platform model.PlatformID, c model.MetadataConstraint, metadata *model.VariantMetadata) ([]model.Warning, error) {
	var pattern *regexp.Regexp
	if c.Pattern != "" {
		var err error
		pattern, err = regexp.Compile(c.Pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "could not compile pattern of constraint '%s'", c.Field)
		}
	}

	constraint := &constraintChecker{platform: platform, constraint: c, pattern: pattern}

	switch c.Field {
	case model.FieldTags:
		tags, warnings, err := constraint.list(metadata.Tags)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		metadata.Tags = tags
		return warnings, nil

	case model.FieldTopics:
		topics, warnings, err := constraint.list(metadata.Topics)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		metadata.Topics = topics
		return warnings, nil

	case model.FieldTitle:
		title, warnings, err := constraint.text(metadata.Title)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		metadata.Title = title
		return warnings, nil

	case model.FieldDescription:
		description, warnings, err := constraint.text(metadata.Description)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		metadata.Description = description
		return warnings, nil

	case model.FieldSlug:
		slug, warnings, err := constraint.text(metadata.Slug)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		metadata.Slug = slug
		return warnings, nil

	case model.FieldPrice:
		price, warnings, err := constraint.number(metadata.Price)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		metadata.Price = price
		return warnings, nil
	}

	return nil, errors.Errorf("platform '%s': field '%s' cannot be constrained", platform, c.Field)
}

type constraintChecker struct {
	platform   model.PlatformID
	constraint model.MetadataConstraint
	pattern    *regexp.Regexp
}

func (c *constraintChecker) violation(bound string, value string) error {
	return &model.VariantConstraintError{
		Platform: c.platform,
		Field:    c.constraint.Field,
		Bound:    bound,
		Value:    value,
	}
}

func (c *constraintChecker) clamps() bool {
	return c.constraint.Mode == model.ConstraintClamp
}

func (c *constraintChecker) list(values []string) ([]string, []model.Warning, error) {
	warnings := make([]model.Warning, 0)

	if c.pattern != nil {
		for _, v := range values {
			if !c.pattern.MatchString(v) {
				return nil, nil, c.violation("pattern "+c.constraint.Pattern, strconv.Quote(v))
			}
		}
	}

	if max := c.constraint.Max; max != nil && len(values) > *max {
		if !c.clamps() {
			return nil, nil, c.violation(fmt.Sprintf("max %d", *max), strconv.Itoa(len(values)))
		}

		warnings = append(warnings, model.Warning{
			Subject: c.constraint.Field,
			Action:  model.ActionClamped,
			Detail:  fmt.Sprintf("kept the first %d of %d values", *max, len(values)),
			Block:   -1,
		})

		values = values[:*max]
	}

	if min := c.constraint.Min; min != nil && len(values) < *min {
		return nil, nil, c.violation(fmt.Sprintf("min %d", *min), strconv.Itoa(len(values)))
	}

	return values, warnings, nil
}

func (c *constraintChecker) text(value string) (string, []model.Warning, error) {
	warnings := make([]model.Warning, 0)

	if c.pattern != nil && !c.pattern.MatchString(value) {
		return "", nil, c.violation("pattern "+c.constraint.Pattern, strconv.Quote(value))
	}

	length := utf8.RuneCountInString(value)

	if max := c.constraint.Max; max != nil && length > *max {
		if !c.clamps() {
			return "", nil, c.violation(fmt.Sprintf("max length %d", *max), strconv.Itoa(length))
		}

		warnings = append(warnings, model.Warning{
			Subject: c.constraint.Field,
			Action:  model.ActionTruncated,
			Detail:  fmt.Sprintf("truncated from %d to %d characters", length, *max),
			Block:   -1,
		})

		value = string([]rune(value)[:*max])
	}

	if min := c.constraint.Min; min != nil && length < *min {
		return "", nil, c.violation(fmt.Sprintf("min length %d", *min), strconv.Itoa(length))
	}

	return value, warnings, nil
}

func (c *constraintChecker) number(value int) (int, []model.Warning, error) {
	warnings := make([]model.Warning, 0)

	if value == 0 && c.constraint.AllowZero {
		return value, warnings, nil
	}

	min, max := c.constraint.Min, c.constraint.Max

	clamped := value
	if min != nil && value < *min {
		clamped = *min
	}
	if max != nil && value > *max {
		clamped = *max
	}

	if clamped == value {
		return value, warnings, nil
	}

	if !c.clamps() {
		return 0, nil, c.violation(rangeBound(min, max, c.constraint.AllowZero), strconv.Itoa(value))
	}

	warnings = append(warnings, model.Warning{
		Subject: c.constraint.Field,
		Action:  model.ActionClamped,
		Detail:  fmt.Sprintf("%d clamped to %d", value, clamped),
		Block:   -1,
	})

	return clamped, warnings, nil
}

func rangeBound(min, max *int, allowZero bool) string {
	var bound string

	switch {
	case min != nil && max != nil:
		bound = fmt.Sprintf("range %d..%d", *min, *max)
	case min != nil:
		bound = fmt.Sprintf("min %d", *min)
	case max != nil:
		bound = fmt.Sprintf("max %d", *max)
	}

	if allowZero {
		bound = "0 or " + bound
	}

	return bound
}
