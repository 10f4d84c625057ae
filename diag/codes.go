package diag

import "strconv"

// Code identifies a kind of validation failure. Values 1-27 follow the
// numbering used by RapidJSON's schema validator so error trees written by
// either tool decode to the same codes; 100 and up cover keywords RapidJSON
// does not report.
type Code int

const (
	CodeNone                 Code = -1
	CodeErrors               Code = 0
	CodeMultipleOf           Code = 1
	CodeMaximum              Code = 2
	CodeExclusiveMaximum     Code = 3
	CodeMinimum              Code = 4
	CodeExclusiveMinimum     Code = 5
	CodeMaxLength            Code = 6
	CodeMinLength            Code = 7
	CodePattern              Code = 8
	CodeMaxItems             Code = 9
	CodeMinItems             Code = 10
	CodeUniqueItems          Code = 11
	CodeAdditionalItems      Code = 12
	CodeMaxProperties        Code = 13
	CodeMinProperties        Code = 14
	CodeRequired             Code = 15
	CodeAdditionalProperties Code = 16
	CodePatternProperties    Code = 17
	CodeDependencies         Code = 18
	CodeEnum                 Code = 19
	CodeType                 Code = 20
	CodeOneOf                Code = 21
	CodeOneOfMatch           Code = 22
	CodeAllOf                Code = 23
	CodeAnyOf                Code = 24
	CodeNot                  Code = 25
	CodeReadOnly             Code = 26
	CodeWriteOnly            Code = 27

	CodeConst       Code = 100
	CodeFormat      Code = 101
	CodeFalseSchema Code = 102
	CodeKeyword     Code = 199
)

var keywords = map[Code]string{
	CodeMultipleOf:           "multipleOf",
	CodeMaximum:              "maximum",
	CodeExclusiveMaximum:     "exclusiveMaximum",
	CodeMinimum:              "minimum",
	CodeExclusiveMinimum:     "exclusiveMinimum",
	CodeMaxLength:            "maxLength",
	CodeMinLength:            "minLength",
	CodePattern:              "pattern",
	CodeMaxItems:             "maxItems",
	CodeMinItems:             "minItems",
	CodeUniqueItems:          "uniqueItems",
	CodeAdditionalItems:      "additionalItems",
	CodeMaxProperties:        "maxProperties",
	CodeMinProperties:        "minProperties",
	CodeRequired:             "required",
	CodeAdditionalProperties: "additionalProperties",
	CodePatternProperties:    "patternProperties",
	CodeDependencies:         "dependencies",
	CodeEnum:                 "enum",
	CodeType:                 "type",
	CodeOneOf:                "oneOf",
	CodeOneOfMatch:           "oneOf",
	CodeAllOf:                "allOf",
	CodeAnyOf:                "anyOf",
	CodeNot:                  "not",
	CodeReadOnly:             "readOnly",
	CodeWriteOnly:            "writeOnly",
	CodeConst:                "const",
	CodeFormat:               "format",
	CodeFalseSchema:          "false",
}

// Keyword returns the schema keyword reported for c, or "" when c has none.
func (c Code) Keyword() string { return keywords[c] }

func (c Code) String() string {
	if k, ok := keywords[c]; ok {
		return k
	}
	return "code(" + strconv.Itoa(int(c)) + ")"
}
