package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError is one problem found in a Config.
type ValidationError struct {
	Field   string
	Message string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult collects errors and warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid reports whether no errors were found.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error joins all errors into one, or returns nil.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$`)

// maxDimension bounds bar sizes; larger values are reported as warnings.
const maxDimension = 10000

// IsColor reports whether s is #RRGGBB or #RRGGBBAA.
func IsColor(s string) bool {
	return colorPattern.MatchString(s)
}

// Validate checks cfg and returns every problem found.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}
	validateBar(&cfg.Bar, result)
	validateColors(&cfg.Colors, result)
	for i, b := range cfg.Blocks {
		if b.Color != "" && !IsColor(b.Color) {
			result.AddError(fmt.Sprintf("blocks[%d].color", i), fmt.Sprintf("invalid color %q", b.Color))
		}
		if b.Text == "" {
			result.AddWarning(fmt.Sprintf("blocks[%d].text", i), "empty")
		}
	}
	for i, w := range cfg.Workspaces {
		if strings.TrimSpace(w) == "" {
			result.AddError(fmt.Sprintf("workspaces[%d]", i), "empty name")
		}
	}
	return result
}

func validateBar(bc *BarConfig, result *ValidationResult) {
	if bc.Height <= 0 {
		result.AddError("bar.height", fmt.Sprintf("must be positive, got %d", bc.Height))
	} else if bc.Height > maxDimension {
		result.AddWarning("bar.height", fmt.Sprintf("unusually large value %d", bc.Height))
	}
	if bc.Width < 0 {
		result.AddError("bar.width", fmt.Sprintf("must be non-negative, got %d", bc.Width))
	} else if bc.Width > maxDimension {
		result.AddWarning("bar.width", fmt.Sprintf("unusually large value %d", bc.Width))
	}
	if bc.Padding < 0 {
		result.AddError("bar.padding", fmt.Sprintf("must be non-negative, got %d", bc.Padding))
	}
	if bc.SeparatorWidth < 0 {
		result.AddError("bar.separator_width", fmt.Sprintf("must be non-negative, got %d", bc.SeparatorWidth))
	}
	if bc.Position != PositionTop && bc.Position != PositionBottom {
		result.AddError("bar.position", fmt.Sprintf("unknown position %d", bc.Position))
	}
	if strings.TrimSpace(bc.Font) == "" {
		result.AddWarning("bar.font", "empty, using the built-in font")
	}
}

func validateColors(cc *ColorConfig, result *ValidationResult) {
	single := []struct {
		field, value string
	}{
		{"colors.background", cc.Background},
		{"colors.statusline", cc.Statusline},
		{"colors.separator", cc.Separator},
	}
	for _, c := range single {
		if !IsColor(c.value) {
			result.AddError(c.field, fmt.Sprintf("invalid color %q", c.value))
		}
	}

	multi := []struct {
		field, value string
	}{
		{"colors.focused_workspace", cc.FocusedWorkspace},
		{"colors.active_workspace", cc.ActiveWorkspace},
		{"colors.inactive_workspace", cc.InactiveWorkspace},
		{"colors.urgent_workspace", cc.UrgentWorkspace},
	}
	for _, c := range multi {
		if err := validateColorList(c.value, 3); err != "" {
			result.AddError(c.field, err)
		}
	}
}

// validateColorList checks a whitespace separated list of at most limit
// colors, where "-" stands for an unchanged slot.
func validateColorList(s string, limit int) string {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return "empty color list"
	}
	if len(tokens) > limit {
		return fmt.Sprintf("expected at most %d colors, got %d", limit, len(tokens))
	}
	for _, t := range tokens {
		if t != "-" && !IsColor(t) {
			return fmt.Sprintf("invalid color %q", t)
		}
	}
	return ""
}
