package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

// ErrInconsistentState is returned when the token stream reaches a state no
// statement form accounts for. It indicates a lexer/builder mismatch, not bad
// Java input.
var ErrInconsistentState = errors.New("inconsistent parser state")

// span is the kind of source region the builder is in.
type span int

const (
	spanCode span = iota
	spanLineComment
	spanBlockComment
	spanDoc
)

// parseState selects the handler for the next "{" terminator.
type parseState int

const (
	stateOther parseState = iota
	stateClass
	stateInterface
	stateEnum
	stateNested
)

var typeKeywords = map[string]struct {
	object model.ObjectState
	parse  parseState
}{
	"class":     {model.StateClass, stateClass},
	"interface": {model.StateInterface, stateInterface},
	"enum":      {model.StateEnumeration, stateEnum},
}

// cursor tracks where the builder is in the source.
type cursor struct {
	line     int
	stmtLine int
	signs    map[int]string
}

// startStatement records the current line as the start of the statement
// unless one is already open.
func (c *cursor) startStatement() {
	if c.stmtLine == 0 {
		c.stmtLine = c.line
	}
}

// signature returns the trimmed text of the line the statement started on.
func (c *cursor) signature() string {
	if c.stmtLine == 0 {
		return c.signs[c.line]
	}
	return c.signs[c.stmtLine]
}

type builder struct {
	obj *model.Object
	cur cursor

	span       span
	annotation bool
	ignore     int
	skipAbove  int

	inObject   bool
	bodyOpen   bool
	enumListed bool
	state      parseState

	doc          model.Doc
	docTokens    []DocToken
	docGlue      string
	docAttach    bool
	docLineStart bool
	comment      strings.Builder

	parts       []Part
	words       []string
	pendingName string
	params      bool
	assigned    bool

	diags []model.Diagnostic
}

// Build runs the declaration state machine over a token stream and returns
// the finalized declaration. Recoverable problems are returned as
// diagnostics; the error is reserved for ErrInconsistentState.
func Build(tokens []Token) (model.ObjectType, []model.Diagnostic, error) {
	b := &builder{
		obj:       model.NewObject(),
		cur:       cursor{line: 1, signs: make(map[int]string)},
		skipAbove: -1,
	}
	for _, tok := range tokens {
		if tok.Kind == Sign {
			b.cur.signs[tok.Line] = tok.Text
		}
	}

	for _, tok := range tokens {
		if err := b.step(tok); err != nil {
			return nil, b.diags, err
		}
	}
	b.finish()

	obj, ok := b.obj.Finalize()
	if !ok {
		b.diag("no class, interface or enum declaration found")
	}
	return obj, b.diags, nil
}

func (b *builder) step(tok Token) error {
	switch tok.Kind {
	case LineNumber:
		b.cur.line = tok.Line
		switch b.span {
		case spanLineComment:
			b.span = spanCode
		case spanBlockComment:
			if b.comment.Len() > 0 {
				b.comment.WriteByte('\n')
			}
		case spanDoc:
			b.docLineStart = true
		}
		return nil
	case Sign:
		return nil
	}

	// Method bodies opened at file level reach the builder; drop them.
	if b.skipAbove >= 0 {
		if tok.Depth > b.skipAbove {
			return nil
		}
		b.skipAbove = -1
	}

	if b.ignore > 0 {
		switch tok.Kind {
		case ParamStart:
			b.ignore++
		case ParamEnd:
			b.ignore--
		}
		return nil
	}

	switch tok.Kind {
	case Keyword:
		b.keyword(tok.Text)
	case Symbol:
		b.symbolText(tok.Text)
	case Join:
		b.join()
	case ParamStart:
		b.paramStart()
	case ParamEnd:
		b.paramEnd()
	case ExpressionEnd:
		return b.expressionEnd(tok)
	}
	return nil
}

func (b *builder) keyword(w string) {
	switch b.span {
	case spanDoc:
		if docTags.has(w) {
			b.docTokens = append(b.docTokens, DocToken{Kind: DocKeyword, Text: w, Line: b.cur.line})
			b.docLineStart = false
			b.docAttach = false
		} else {
			b.docWord(w)
		}
		return
	case spanLineComment, spanBlockComment:
		b.commentWord(w)
		return
	}

	// Bounds inside a type parameter list ("<T extends Number>") stay part
	// of the type.
	if openGenerics(b.words) {
		b.words[len(b.words)-1] += " " + w
		return
	}

	b.flushWords()
	b.annotation = false

	if t, ok := typeKeywords[w]; ok {
		b.typeKeyword(w, t.object, t.parse)
		return
	}

	switch {
	case w == "package":
		if license := strings.TrimSpace(b.comment.String()); license != "" {
			b.obj.License = license
		}
		b.addPart(PartPackage, w)
	case w == "import":
		b.addPart(PartImport, w)
	case w == "extends":
		b.addPart(PartParent, w)
	case w == "implements":
		b.addPart(PartImplement, w)
	case w == "throws":
		b.addPart(PartException, w)
	case accessKeywords.has(w):
		b.addPart(PartAccess, w)
	case modifierKeywords.has(w):
		b.addPart(PartModifier, w)
	case annotationKeywords.has(w):
		b.annotation = true
	case conditionalKeywords.has(w):
	case docTags.has(w):
		b.diag("doc tag %s outside a doc comment", w)
		b.annotation = true
	default:
		b.diag("unsupported keyword %q", w)
		b.addPart(PartUnsupported, w)
	}
}

func (b *builder) typeKeyword(w string, object model.ObjectState, parse parseState) {
	if !b.obj.ChangeState(object) {
		b.diag("unsupported pattern: nested or secondary %s declaration skipped", w)
		b.state = stateNested
		return
	}
	b.inObject = true
	b.state = parse
	b.addPart(PartObject, w)
}

// symbolText splits comment delimiters glued to a word ("/**Adds",
// "value.*/", "x;//note") and feeds the pieces through symbol in order.
func (b *builder) symbolText(w string) {
	for w != "" {
		head, marker, rest := b.nextMarker(w)
		if head != "" {
			b.symbol(head)
		}
		if marker != "" {
			b.symbol(marker)
		}
		w = rest
	}
}

// nextMarker finds the first comment delimiter in w that matters in the
// current span. In code, delimiters after a quote are part of a string
// literal and are left alone.
func (b *builder) nextMarker(w string) (head, marker, rest string) {
	switch b.span {
	case spanLineComment:
		return w, "", ""
	case spanDoc, spanBlockComment:
		if i := strings.Index(w, "*/"); i >= 0 {
			return w[:i], "*/", w[i+2:]
		}
		return w, "", ""
	}

	i := strings.Index(w, "/")
	for i >= 0 && i+1 < len(w) {
		if strings.ContainsAny(w[:i], `"'`) {
			return w, "", ""
		}
		switch w[i+1] {
		case '/':
			return w[:i], "//", w[i+2:]
		case '*':
			if strings.HasPrefix(w[i:], "/**") && !strings.HasPrefix(w[i:], "/**/") {
				return w[:i], "/**", w[i+3:]
			}
			return w[:i], "/*", w[i+2:]
		}
		next := strings.Index(w[i+1:], "/")
		if next < 0 {
			break
		}
		i += next + 1
	}
	if j := strings.Index(w, "*/"); j >= 0 {
		return w[:j], "*/", w[j+2:]
	}
	return w, "", ""
}

func (b *builder) symbol(w string) {
	switch b.span {
	case spanDoc:
		switch {
		case w == "*/":
			b.closeDoc()
		case w == "*":
		case b.docLineStart && isTagWord(w):
			b.docTokens = append(b.docTokens, DocToken{Kind: DocKeyword, Text: w, Line: b.cur.line})
			b.docLineStart = false
			b.docAttach = false
		default:
			b.docWord(w)
		}
		return
	case spanBlockComment:
		switch w {
		case "*/":
			b.span = spanCode
		case "*":
		default:
			b.commentWord(w)
		}
		return
	case spanLineComment:
		b.commentWord(w)
		return
	}

	switch w {
	case "/**":
		b.span = spanDoc
		b.docTokens = nil
		b.docGlue = ""
		b.docAttach = false
		b.docLineStart = true
		return
	case "/*":
		b.span = spanBlockComment
		b.comment.Reset()
		return
	case "//":
		b.span = spanLineComment
		return
	case "*/":
		b.diag("unmatched */")
		return
	}

	if strings.HasPrefix(w, "@") {
		b.annotation = true
		return
	}
	b.annotation = false
	b.cur.startStatement()
	if strings.Contains(w, "=") {
		b.assigned = true
	}
	b.words = append(b.words, w)
}

// isTagWord reports whether w looks like a javadoc block tag.
func isTagWord(w string) bool {
	if len(w) < 2 || w[0] != '@' {
		return false
	}
	c := w[1]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (b *builder) closeDoc() {
	b.span = spanCode
	doc, diags := ParseDoc(b.docTokens)
	b.doc = doc
	b.diags = append(b.diags, diags...)
	b.docTokens = nil
	b.docGlue = ""
	b.docAttach = false

	// Enum constants may carry their own doc comments; the list they belong
	// to must survive them.
	if b.inEnumConstants() {
		return
	}
	b.parts = nil
	b.words = nil
	b.pendingName = ""
	b.params = false
	b.assigned = false
	b.cur.stmtLine = 0
}

func (b *builder) docWord(w string) {
	if b.docAttach {
		b.docAttach = false
		b.docTokens[len(b.docTokens)-1].Text += w
		return
	}
	if b.docGlue != "" {
		w = b.docGlue + w
		b.docGlue = ""
	}
	b.docTokens = append(b.docTokens, DocToken{Kind: DocSymbol, Text: w, Line: b.cur.line})
	b.docLineStart = false
}

// lastDocWord reports whether the doc stream ends in a word that
// punctuation can attach to.
func (b *builder) lastDocWord() bool {
	n := len(b.docTokens)
	return n > 0 && b.docTokens[n-1].Kind == DocSymbol && b.docTokens[n-1].Text != "*"
}

// docAdjacent reports whether punct directly follows the last doc word on
// its source line, as in "foo(" but not "foo (".
func (b *builder) docAdjacent(punct string) bool {
	if !b.lastDocWord() {
		return false
	}
	last := b.docTokens[len(b.docTokens)-1]
	return strings.Contains(b.cur.signs[last.Line], lastSegment(last.Text)+punct)
}

// lastSegment returns the text after the last space, "(" or ",".
func lastSegment(w string) string {
	if i := strings.LastIndexAny(w, " (,"); i >= 0 {
		return w[i+1:]
	}
	return w
}

// docAppend attaches punctuation the lexer split off to the previous word.
func (b *builder) docAppend(s string) {
	if b.lastDocWord() {
		b.docTokens[len(b.docTokens)-1].Text += s
		return
	}
	b.docWord(s)
}

// commentWord collects block comment text for the license header. Line
// comments are dropped.
func (b *builder) commentWord(w string) {
	if b.span != spanBlockComment {
		return
	}
	if n := b.comment.Len(); n > 0 && !strings.HasSuffix(b.comment.String(), "\n") {
		b.comment.WriteByte(' ')
	}
	b.comment.WriteString(w)
}

func (b *builder) join() {
	switch b.span {
	case spanDoc:
		b.docAppend(",")
		return
	case spanLineComment, spanBlockComment:
		return
	}
	if openGenerics(b.words) {
		b.words[len(b.words)-1] += ","
		return
	}
	b.flushWords()
}

func (b *builder) paramStart() {
	switch b.span {
	case spanDoc:
		// "foo(bar)" stays one word; a parenthesis opening a line or
		// following a tag glues to the next word instead.
		if !b.docLineStart && b.docGlue == "" && b.docAdjacent("(") {
			b.docAppend("(")
			b.docAttach = true
		} else {
			b.docGlue += "("
		}
		return
	case spanLineComment, spanBlockComment:
		return
	}
	if b.annotation {
		b.annotation = false
		b.ignore = 1
		return
	}
	b.flushWords()
	if b.inEnumConstants() {
		// constructor arguments of an enum constant
		b.ignore = 1
		return
	}
	if !b.assigned {
		b.params = true
	}
}

func (b *builder) paramEnd() {
	switch b.span {
	case spanDoc:
		if strings.HasSuffix(b.docGlue, "(") {
			b.docGlue = strings.TrimSuffix(b.docGlue, "(")
			b.docAppend("()")
		} else {
			b.docAttach = false
			b.docAppend(")")
		}
		return
	case spanLineComment, spanBlockComment:
		return
	}
	if len(b.words) == 1 {
		b.pendingName = b.words[0]
		b.words = nil
		return
	}
	b.flushWords()
}

func (b *builder) expressionEnd(tok Token) error {
	term := tok.Text
	switch b.span {
	case spanDoc:
		if term == ";" {
			b.docAppend(";")
		}
		return nil
	case spanLineComment, spanBlockComment:
		return nil
	}

	b.flushWords()
	b.annotation = false
	switch term {
	case ";":
		b.statementEnd()
	case "{":
		b.blockStart(tok.Depth)
	default:
		return fmt.Errorf("%w: terminator %q at line %d", ErrInconsistentState, term, b.cur.line)
	}
	b.resetStatement()
	return nil
}

// statementEnd handles a statement terminated by ";".
func (b *builder) statementEnd() {
	if b.state == stateNested {
		return
	}
	if len(b.parts) == 0 {
		if b.inEnumConstants() {
			b.enumListed = true
		}
		return
	}
	if !b.inObject {
		b.fileStatement()
		return
	}
	switch {
	case b.inEnumConstants():
		b.enumList()
		b.enumListed = true
	case b.params:
		b.method()
	default:
		b.field()
	}
}

// blockStart handles a statement terminated by "{". Every block except a
// type body is skipped up to its closing brace.
func (b *builder) blockStart(depth int) {
	if b.state == stateOther || b.state == stateNested {
		b.skipAbove = depth
	}
	switch {
	case b.state == stateNested:
	case b.state != stateOther:
		b.header()
		b.bodyOpen = true
	case b.inEnumConstants():
		b.enumList()
	case b.assigned:
		b.field()
	case !b.hasWords() && b.pendingName == "":
		if len(b.parts) > 0 || b.bodyOpen {
			b.diag("unsupported pattern: initializer block skipped")
		}
	default:
		b.method()
	}
}

// fileStatement handles a ";" statement outside the type body.
func (b *builder) fileStatement() {
	first := b.parts[0]
	if first.Kind != PartImport && first.Kind != PartPackage {
		b.field()
		return
	}
	var name string
	for _, p := range b.parts[1:] {
		if p.Kind == PartModifier {
			continue
		}
		if p.Kind == PartVariable {
			name = p.Text()
		}
		break
	}
	if name == "" {
		b.diag("unsupported pattern: %s statement", first.Text())
		return
	}
	if first.Kind == PartImport {
		b.obj.AddDependency(name)
	} else {
		b.obj.Package = name
	}
}

func (b *builder) inEnumConstants() bool {
	return b.obj.State == model.StateEnumeration && b.bodyOpen && !b.enumListed
}

func (b *builder) hasWords() bool {
	for _, p := range b.parts {
		if p.Kind == PartType || p.Kind == PartVariable {
			return true
		}
	}
	return false
}

func (b *builder) flushWords() {
	if len(b.words) == 0 {
		return
	}
	b.parts = append(b.parts, Classify(b.words)...)
	b.words = nil
}

func (b *builder) addPart(kind PartKind, w string) {
	b.cur.startStatement()
	b.parts = append(b.parts, Part{Kind: kind, Units: []string{w}})
}

func (b *builder) resetStatement() {
	b.state = stateOther
	b.doc = model.Doc{}
	b.parts = nil
	b.words = nil
	b.pendingName = ""
	b.params = false
	b.assigned = false
	b.cur.stmtLine = 0
}

// finish handles the end of the token stream: an enum body closed without a
// ";" still holds its constants.
func (b *builder) finish() {
	switch b.span {
	case spanDoc:
		b.diag("unterminated doc comment")
	case spanBlockComment:
		b.diag("unterminated block comment")
	}
	b.flushWords()
	if b.inEnumConstants() && len(b.parts) > 0 {
		b.enumList()
	}
}

func (b *builder) diag(format string, args ...any) {
	b.diags = append(b.diags, model.Diagnostic{Line: b.cur.line, Message: fmt.Sprintf(format, args...)})
}
