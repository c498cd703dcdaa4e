// Package domain defines which document fields carry PII and how each is masked.
package domain

// Kind selects the masking rule applied to a field.
type Kind string

const (
	KindEmail    Kind = "email"
	KindName     Kind = "name"
	KindPhone    Kind = "phone"
	KindFreeText Kind = "free_text"
)

// Sentinel is returned for empty or unparsable input.
const Sentinel = "***"

// DocumentType names a family of documents sharing one field allow-list.
type DocumentType string

const (
	// DocumentInquiry is a concierge inquiry submitted through the public form.
	DocumentInquiry DocumentType = "inquiry"
)

// ProtectedField is a named value inside a document subject to encryption at rest
// and masking in list views.
type ProtectedField struct {
	Name string
	Kind Kind
}

// Registry holds the protected fields of one document type.
// Fields outside the registry are never encrypted, decrypted or masked.
type Registry struct {
	docType DocumentType
	fields  []ProtectedField
	byName  map[string]ProtectedField
}

// NewRegistry creates a Registry from a slice of ProtectedField definitions.
// Declaration order is preserved by Fields and Names.
func NewRegistry(docType DocumentType, fields []ProtectedField) *Registry {
	byName := make(map[string]ProtectedField, len(fields))
	ordered := make([]ProtectedField, 0, len(fields))
	for _, f := range fields {
		if _, dup := byName[f.Name]; dup {
			continue
		}
		byName[f.Name] = f
		ordered = append(ordered, f)
	}
	return &Registry{docType: docType, fields: ordered, byName: byName}
}

// DocumentType returns the document type the registry describes.
func (r *Registry) DocumentType() DocumentType {
	return r.docType
}

// IsProtected returns true if the given field name is in the registry.
func (r *Registry) IsProtected(fieldName string) bool {
	_, ok := r.byName[fieldName]
	return ok
}

// GetField returns the ProtectedField definition for the given name.
func (r *Registry) GetField(fieldName string) (ProtectedField, bool) {
	f, ok := r.byName[fieldName]
	return f, ok
}

// Fields returns all registered protected fields.
func (r *Registry) Fields() []ProtectedField {
	out := make([]ProtectedField, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the allow-list of field names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		names = append(names, f.Name)
	}
	return names
}

// InquiryRegistry returns the protected fields of an inquiry document.
func InquiryRegistry() *Registry {
	return NewRegistry(DocumentInquiry, []ProtectedField{
		{Name: "full_name", Kind: KindName},
		{Name: "email", Kind: KindEmail},
		{Name: "phone", Kind: KindPhone},
		{Name: "whatsapp", Kind: KindPhone},
		{Name: "contact_id", Kind: KindFreeText},
		{Name: "messenger_handle", Kind: KindFreeText},
		{Name: "message", Kind: KindFreeText},
	})
}
