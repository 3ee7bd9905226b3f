package telepub

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Template file format constants
const (
	templateFileFrontmatterDelim = "---"
)

// TemplateFileMeta holds the YAML frontmatter of a template file.
type TemplateFileMeta struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
	Sample      map[string]any    `yaml:"sample,omitempty"`
}

// TemplateFile represents a parsed template document: YAML frontmatter
// between "---" delimiters followed by the template body.
type TemplateFile struct {
	// Meta is the parsed frontmatter
	Meta TemplateFileMeta
	// Body is the template source
	Body string
}

// ParseTemplateFile parses a frontmatter-delimited template document.
func ParseTemplateFile(content string) (*TemplateFile, error) {
	if content == "" {
		return nil, NewTemplateFileError(ErrMsgMissingFrontmatter, nil)
	}

	// Trim any leading whitespace/BOM
	content = strings.TrimLeft(content, "\xef\xbb\xbf \t")

	if !strings.HasPrefix(content, templateFileFrontmatterDelim) {
		return nil, NewTemplateFileError(ErrMsgMissingFrontmatter, nil)
	}

	afterOpening := content[len(templateFileFrontmatterDelim):]
	if len(afterOpening) > 0 && afterOpening[0] == '\n' {
		afterOpening = afterOpening[1:]
	}

	closeIdx := strings.Index(afterOpening, "\n"+templateFileFrontmatterDelim)
	if closeIdx == -1 {
		return nil, NewTemplateFileError(ErrMsgMissingFrontmatter, nil)
	}

	fmYAML := afterOpening[:closeIdx]

	bodyStart := closeIdx + len("\n"+templateFileFrontmatterDelim)
	body := ""
	if bodyStart < len(afterOpening) {
		body = afterOpening[bodyStart:]
		if len(body) > 0 && body[0] == '\n' {
			body = body[1:]
		}
	}

	var meta TemplateFileMeta
	if err := yaml.Unmarshal([]byte(fmYAML), &meta); err != nil {
		return nil, NewTemplateFileError(ErrMsgInvalidFrontmatter, err)
	}
	if meta.Name == "" {
		return nil, NewTemplateFileError(ErrMsgEmptyTemplateName, nil)
	}
	if strings.TrimSpace(body) == "" {
		return nil, NewTemplateFileError(ErrMsgMissingBody, nil)
	}

	return &TemplateFile{Meta: meta, Body: body}, nil
}

// Export renders the template file back to its on-disk format.
func (f *TemplateFile) Export() (string, error) {
	if f == nil {
		return "", nil
	}

	yamlBytes, err := yaml.Marshal(f.Meta)
	if err != nil {
		return "", NewTemplateFileError(ErrMsgInvalidFrontmatter, err)
	}

	var sb strings.Builder
	sb.WriteString(templateFileFrontmatterDelim)
	sb.WriteString("\n")
	sb.Write(yamlBytes)
	sb.WriteString(templateFileFrontmatterDelim)
	sb.WriteString("\n")
	sb.WriteString(f.Body)

	return sb.String(), nil
}

// Stored converts the file into a StoredTemplate ready for a TemplateStore.
// Timestamps are left zero; Save fills them.
func (f *TemplateFile) Stored() *StoredTemplate {
	if f == nil {
		return nil
	}
	return &StoredTemplate{
		Name:        f.Meta.Name,
		Source:      f.Body,
		Description: f.Meta.Description,
		Tags:        append([]string(nil), f.Meta.Tags...),
		Metadata:    copyMetadata(f.Meta.Metadata),
	}
}

// FromStored builds a TemplateFile from a stored template.
func FromStored(tmpl *StoredTemplate) *TemplateFile {
	if tmpl == nil {
		return nil
	}
	return &TemplateFile{
		Meta: TemplateFileMeta{
			Name:        tmpl.Name,
			Description: tmpl.Description,
			Tags:        append([]string(nil), tmpl.Tags...),
			Metadata:    copyMetadata(tmpl.Metadata),
		},
		Body: tmpl.Source,
	}
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
