package domain

// Recognized enhancement styles accepted by the transformation service.
const (
	StyleFormal       = "formal"
	StyleCasual       = "casual"
	StyleProfessional = "professional"
)

// ValidStyle reports whether style is empty or one of the recognized values.
func ValidStyle(style string) bool {
	switch style {
	case "", StyleFormal, StyleCasual, StyleProfessional:
		return true
	default:
		return false
	}
}

// ValidKind reports whether kind names a supported batch operation.
func ValidKind(kind TransformKind) bool {
	switch kind {
	case TransformKindTranslate, TransformKindEnhance, TransformKindGenerate:
		return true
	default:
		return false
	}
}
