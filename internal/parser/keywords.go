package parser

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

var (
	accessKeywords = newWordSet("public", "protected", "private")

	modifierKeywords = newWordSet("static", "final", "abstract", "synchronized", "volatile")

	// structuralKeywords are the Java keywords that shape declarations. Those
	// with no grammar role (native, transient, ...) are lexed as keywords so
	// they never end up in a type name, and are reported as unsupported.
	structuralKeywords = newWordSet(
		"class", "interface", "enum", "package", "import",
		"extends", "implements", "throws",
		"public", "protected", "private",
		"static", "final", "abstract", "synchronized", "volatile",
		"native", "transient", "strictfp", "default", "sealed", "non-sealed", "permits",
	)

	docTags = newWordSet(
		"@author", "@code", "@deprecated", "@docRoot", "@exception", "@inheritDoc",
		"@link", "@linkplain", "@literal", "@param", "@return", "@see", "@serial",
		"@serialData", "@serialField", "@since", "@throws", "@value", "@version",
	)

	// annotationKeywords are built-in annotations; they mark the start of an
	// annotation exactly like any other @-prefixed word.
	annotationKeywords = newWordSet(
		"@Override", "@Deprecated", "@SuppressWarnings", "@FunctionalInterface",
		"@SafeVarargs", "@Documented", "@Inherited", "@Retention", "@Target",
	)

	// conditionalKeywords only occur in initializers at the depths the lexer
	// reads; they are dropped without a diagnostic.
	conditionalKeywords = newWordSet(
		"if", "else", "for", "while", "do", "switch", "case", "try", "catch",
		"finally", "return", "new", "throw", "instanceof", "break", "continue",
	)
)

// isKeyword reports whether the lexer classifies w as a Keyword token.
func isKeyword(w string) bool {
	return structuralKeywords.has(w) || docTags.has(w) ||
		annotationKeywords.has(w) || conditionalKeywords.has(w)
}
