// Package pathtemplate renders file-path templates against substitution
// records, e.g.
//
//	{data_dir}/l1/sub-{subject}/ses-{session}/sub-{subject}_ses-{session}_acq-{acquisition}_tstat.nii.gz
//
// Placeholders are {field} names looked up in the record. Resolution is pure
// string work followed by home expansion and absolutization; it never checks
// whether the resulting path exists.
package pathtemplate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"voxreport/domain/core"
	"voxreport/domain/report"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Resolve substitutes every placeholder in template from record and returns
// the expanded absolute path. A placeholder whose key is absent from the
// record fails with core.ErrTemplateField.
func Resolve(template string, record report.SubstitutionRecord) (string, error) {
	var missing string
	resolved := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		field := m[1 : len(m)-1]
		v, ok := record.Lookup(field)
		if !ok {
			if missing == "" {
				missing = field
			}
			return m
		}
		return v
	})
	if missing != "" {
		return "", core.NewTemplateFieldError(missing, template)
	}
	return Expand(resolved)
}

// Fields returns the placeholder names referenced by a template, in order of
// first appearance.
func Fields(template string) []string {
	seen := map[string]bool{}
	var fields []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			fields = append(fields, m[1])
		}
	}
	return fields
}

// Expand performs user-home expansion and absolutization on a path.
func Expand(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to absolutize %q: %w", path, err)
	}
	return abs, nil
}
