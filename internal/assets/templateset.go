package assets

// TemplateSet holds the HTML templates used to assemble a card document.
type TemplateSet struct {
	Name     string // Identifier (name or directory path)
	Cover    string // Cover card markup
	Content  string // Content card markup
	Document string // Page wrapping every card
}

// Template file names inside a template set directory.
const (
	coverFile    = "cover.html"
	contentFile  = "content.html"
	documentFile = "document.html"
)

// templateFiles lists the files a complete template set must contain.
var templateFiles = []string{coverFile, contentFile, documentFile}

// set fills the field matching a template file name.
func (ts *TemplateSet) set(file, content string) {
	switch file {
	case coverFile:
		ts.Cover = content
	case contentFile:
		ts.Content = content
	case documentFile:
		ts.Document = content
	}
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in card stylesheet.
const DefaultStyleName = "default"
