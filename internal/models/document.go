// ABOUTME: KnowledgeBaseDocument is the per-user sectioned memory document
// ABOUTME: Parses and serializes the markdown layout used on disk
package models

import (
	"strings"
)

// Known section names. Every document has all of these after any write.
const (
	SectionAboutMe         = "About Me"
	SectionImportantPeople = "Important People"
	SectionWorkContext     = "Work Context"
	SectionPreferences     = "Preferences"
	SectionCustomReminders = "Custom Reminders"
	SectionNotes           = "Notes"
)

// KnownSections lists the fixed section set in display order.
var KnownSections = []string{
	SectionAboutMe,
	SectionImportantPeople,
	SectionWorkContext,
	SectionPreferences,
	SectionCustomReminders,
	SectionNotes,
}

// DocumentTitle is the first line of every knowledge base file.
const DocumentTitle = "# Personal Knowledge Base"

// Section is one named block of free-form text.
type Section struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// KnowledgeBaseDocument is an ordered set of sections. Unknown sections are
// preserved verbatim but never interpreted.
type KnowledgeBaseDocument struct {
	Sections []Section `json:"sections"`
}

// NewKnowledgeBaseDocument returns a document with every known section
// present and empty.
func NewKnowledgeBaseDocument() *KnowledgeBaseDocument {
	doc := &KnowledgeBaseDocument{}
	for _, name := range KnownSections {
		doc.Sections = append(doc.Sections, Section{Name: name})
	}
	return doc
}

// Get returns the body of the named section and whether it exists.
func (d *KnowledgeBaseDocument) Get(name string) (string, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s.Body, true
		}
	}
	return "", false
}

// Set replaces the body of the named section, adding the section at the end
// if it does not exist yet.
func (d *KnowledgeBaseDocument) Set(name, body string) {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			d.Sections[i].Body = body
			return
		}
	}
	d.Sections = append(d.Sections, Section{Name: name, Body: body})
}

// Append adds text to the end of the named section, creating the section if
// needed. A blank body becomes the text itself.
func (d *KnowledgeBaseDocument) Append(name, text string) {
	body, ok := d.Get(name)
	if !ok || strings.TrimSpace(body) == "" {
		d.Set(name, strings.TrimSpace(text))
		return
	}
	d.Set(name, strings.TrimRight(body, "\n")+"\n"+strings.TrimSpace(text))
}

// Normalize ensures every known section is present, preserving unknown
// sections and their order. Called before every serialization.
func (d *KnowledgeBaseDocument) Normalize() {
	for _, name := range KnownSections {
		if _, ok := d.Get(name); !ok {
			d.Sections = append(d.Sections, Section{Name: name})
		}
	}
}

// Marshal renders the document in the on-disk markdown layout.
func (d *KnowledgeBaseDocument) Marshal() []byte {
	d.Normalize()
	var b strings.Builder
	b.WriteString(DocumentTitle + "\n")
	for _, s := range d.Sections {
		b.WriteString("\n## " + s.Name + "\n")
		body := strings.TrimRight(s.Body, "\n")
		if body != "" {
			b.WriteString(body + "\n")
		}
	}
	return []byte(b.String())
}

// ParseKnowledgeBaseDocument parses the markdown layout back into a
// document. Text before the first section header is ignored apart from the
// title. Section order is preserved as written.
func ParseKnowledgeBaseDocument(data []byte) *KnowledgeBaseDocument {
	doc := &KnowledgeBaseDocument{}
	lines := strings.Split(string(data), "\n")

	current := ""
	var body []string
	flush := func() {
		if current != "" {
			doc.Sections = append(doc.Sections, Section{
				Name: current,
				Body: strings.Trim(strings.Join(body, "\n"), "\n"),
			})
		}
		body = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			flush()
			current = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			continue
		}
		if current != "" {
			body = append(body, line)
		}
	}
	flush()

	doc.Normalize()
	return doc
}
