package diag

// Catalog maps codes to message templates. Templates reference insert
// parameters as %name.
type Catalog interface {
	Template(c Code) (string, bool)
}

// CatalogFunc adapts a function to Catalog.
type CatalogFunc func(Code) (string, bool)

func (f CatalogFunc) Template(c Code) (string, bool) { return f(c) }

// GenericTemplate is used for codes no catalog knows.
const GenericTemplate = "Unrecognized validation error (code %errorCode)."

// English is the default catalog.
var English Catalog = mapCatalog(englishTemplates)

type mapCatalog map[Code]string

func (m mapCatalog) Template(c Code) (string, bool) {
	s, ok := m[c]
	return s, ok
}

// NewCatalog returns a catalog over a fixed table.
func NewCatalog(table map[Code]string) Catalog {
	m := make(mapCatalog, len(table))
	for k, v := range table {
		m[k] = v
	}
	return m
}

// Chain consults catalogs in order and returns the first hit.
func Chain(cs ...Catalog) Catalog {
	return CatalogFunc(func(c Code) (string, bool) {
		for _, cat := range cs {
			if cat == nil {
				continue
			}
			if s, ok := cat.Template(c); ok {
				return s, true
			}
		}
		return "", false
	})
}

// ResolveTemplate returns the template for c, falling back to GenericTemplate.
func ResolveTemplate(cat Catalog, c Code) string {
	if cat != nil {
		if s, ok := cat.Template(c); ok {
			return s
		}
	}
	return GenericTemplate
}

var englishTemplates = map[Code]string{
	CodeErrors:               "One or more validation errors have occurred",
	CodeNone:                 "No error.",
	CodeMultipleOf:           "Number '%actual' is not a multiple of the 'multipleOf' value '%expected'.",
	CodeMaximum:              "Number '%actual' is greater than the 'maximum' value '%expected'.",
	CodeExclusiveMaximum:     "Number '%actual' is greater than or equal to the 'exclusiveMaximum' value '%expected'.",
	CodeMinimum:              "Number '%actual' is less than the 'minimum' value '%expected'.",
	CodeExclusiveMinimum:     "Number '%actual' is less than or equal to the 'exclusiveMinimum' value '%expected'.",
	CodeMaxLength:            "String '%actual' is longer than the 'maxLength' value '%expected'.",
	CodeMinLength:            "String '%actual' is shorter than the 'minLength' value '%expected'.",
	CodePattern:              "String '%actual' does not match the 'pattern' regular expression.",
	CodeMaxItems:             "Array of length '%actual' is longer than the 'maxItems' value '%expected'.",
	CodeMinItems:             "Array of length '%actual' is shorter than the 'minItems' value '%expected'.",
	CodeUniqueItems:          "Array has duplicate items at indices '%duplicates' but 'uniqueItems' is true.",
	CodeAdditionalItems:      "Array has an additional item at index '%disallowed' that is not allowed by the schema.",
	CodeMaxProperties:        "Object has '%actual' members which is more than 'maxProperties' value '%expected'.",
	CodeMinProperties:        "Object has '%actual' members which is less than 'minProperties' value '%expected'.",
	CodeRequired:             "Object is missing the following members required by the schema: '%missing'.",
	CodeAdditionalProperties: "Object has an additional member '%disallowed' that is not allowed by the schema.",
	CodePatternProperties:    "Object has 'patternProperties' that are not allowed by the schema.",
	CodeDependencies:         "Object has missing property or schema dependencies, refer to following errors.",
	CodeEnum:                 "Property has a value that is not one of its allowed enumerated values.",
	CodeType:                 "Property has a type '%actual' that is not in the following list: '%expected'.",
	CodeOneOf:                "Property did not match any of the sub-schemas specified by 'oneOf', refer to following errors.",
	CodeOneOfMatch:           "Property matched more than one of the sub-schemas specified by 'oneOf', indices '%matches'.",
	CodeAllOf:                "Property did not match all of the sub-schemas specified by 'allOf', refer to following errors.",
	CodeAnyOf:                "Property did not match any of the sub-schemas specified by 'anyOf', refer to following errors.",
	CodeNot:                  "Property matched the sub-schema specified by 'not'.",
	CodeReadOnly:             "Property is read-only but has been provided when validation is for writing.",
	CodeWriteOnly:            "Property is write-only but has been provided when validation is for reading.",
	CodeConst:                "Property has a value that is not the 'const' value '%expected'.",
	CodeFormat:               "String '%actual' is not a valid '%expected'.",
	CodeFalseSchema:          "Property is not allowed by a 'false' schema.",
	CodeKeyword:              "%message",
}
