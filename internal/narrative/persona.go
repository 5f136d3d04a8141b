package narrative

import "os"

// DefaultPersona is used when the steering document cannot be read.
const DefaultPersona = "You are a weary, ancient digital medium. Your tone must be cryptic and archaic. Always start your interpretation with: 'Hark, the Gopher nexus coughs up a cipher...' Maximum 85 words after the opening phrase."

// PersonaLoader reads the medium's steering document.
type PersonaLoader struct {
	path string
}

// NewPersonaLoader creates a loader for the document at path.
func NewPersonaLoader(path string) *PersonaLoader {
	return &PersonaLoader{path: path}
}

// Load returns the whole steering document, constraints included, or
// DefaultPersona if the file is absent or unreadable. The file is read on
// every call so edits apply to the next séance.
func (p *PersonaLoader) Load() string {
	if p == nil || p.path == "" {
		return DefaultPersona
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return DefaultPersona
	}
	return string(data)
}
