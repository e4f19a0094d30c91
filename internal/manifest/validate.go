package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/beevik/etree"
)

// ValidationSeverity indicates the severity of a validation finding.
type ValidationSeverity int

const (
	// SeverityError means the manifest is broken.
	SeverityError ValidationSeverity = iota
	// SeverityWarning means the manifest is suspicious but usable.
	SeverityWarning
)

// String returns the severity name.
func (s ValidationSeverity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// ValidationFinding is a single validation issue.
type ValidationFinding struct {
	Severity ValidationSeverity
	Subject  string
	Message  string
}

// Error implements the error interface.
func (f *ValidationFinding) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Subject, f.Message)
}

// ValidationResult holds all findings from a validation run.
type ValidationResult struct {
	Findings []ValidationFinding
}

// HasErrors returns true if any error-severity findings exist.
func (r *ValidationResult) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Validate parses the manifest inside root and checks it for structural
// problems: generated entries without a src, entries whose src does not
// exist under root, and min_version attributes that are not valid semver.
// A manifest that fails to parse is returned as an error, not a finding.
func Validate(root string) (*ValidationResult, error) {
	path := PathIn(root)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no manifest at %s", path)
		}

		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	docRoot := doc.Root()
	if docRoot == nil {
		return nil, fmt.Errorf("%w: %s: no root element", ErrParse, path)
	}

	v := &validator{root: root, result: &ValidationResult{}}

	if !strings.EqualFold(docRoot.Tag, rootTag) {
		v.warn(docRoot.Tag, fmt.Sprintf("root element is <%s>, expected <%s>", docRoot.Tag, rootTag))
	}

	v.checkMinVersions(docRoot)

	for _, el := range docRoot.ChildElements() {
		if isGeneratedTag(el.Tag) {
			v.checkEntry(el)
		}
	}

	return v.result, nil
}

type validator struct {
	root   string
	result *ValidationResult
}

func (v *validator) add(sev ValidationSeverity, subject, msg string) {
	v.result.Findings = append(v.result.Findings, ValidationFinding{
		Severity: sev,
		Subject:  subject,
		Message:  msg,
	})
}

func (v *validator) fail(subject, msg string) { v.add(SeverityError, subject, msg) }
func (v *validator) warn(subject, msg string) { v.add(SeverityWarning, subject, msg) }

// checkMinVersions validates optional min_version / min_version_client /
// min_version_server attributes on the manifest root.
func (v *validator) checkMinVersions(root *etree.Element) {
	for _, attr := range root.Attr {
		key := strings.ToLower(attr.Key)
		if key != "min_version" && !strings.HasPrefix(key, "min_version_") {
			continue
		}

		if _, err := semver.NewVersion(attr.Value); err != nil {
			v.fail(attr.Key, fmt.Sprintf("value %q is not a valid version: %v", attr.Value, err))
		}
	}
}

func (v *validator) checkEntry(el *etree.Element) {
	subject := "<" + el.Tag + ">"

	src := el.SelectAttrValue("src", "")
	if src == "" {
		v.fail(subject, "missing src attribute")
		return
	}

	subject = fmt.Sprintf("<%s src=%q>", el.Tag, src)

	if strings.HasPrefix(src, "/") || strings.Contains(src, "\\") {
		v.fail(subject, "src must be a root-relative forward-slash path")
	}

	if _, err := os.Stat(filepath.Join(v.root, filepath.FromSlash(src))); err != nil {
		v.warn(subject, "file does not exist under the watched root")
	}

	if strings.EqualFold(el.Tag, tagScript) {
		switch typ := el.SelectAttrValue("type", ""); typ {
		case "server", "client":
		case "":
			v.fail(subject, "missing type attribute")
		default:
			v.fail(subject, fmt.Sprintf("type %q must be server or client", typ))
		}

		if el.SelectAttrValue("lang", "") == "" {
			v.fail(subject, "missing lang attribute")
		}
	}
}
