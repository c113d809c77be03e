package enums

import "fmt"

// SectionType classifies the body of a user-authored report template section.
type SectionType string

const (
	SectionTypeText SectionType = "text"
	SectionTypeHTML SectionType = "html"
)

var validSectionTypes = []SectionType{
	SectionTypeText,
	SectionTypeHTML,
}

// String implements fmt.Stringer.
func (s SectionType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SectionType.
func (s SectionType) IsValid() bool {
	for _, candidate := range validSectionTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSectionType converts raw input into a SectionType.
func ParseSectionType(value string) (SectionType, error) {
	for _, candidate := range validSectionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid section type %q", value)
}
