package richtext

// Position addresses a point in the document: a rune offset inside the
// inline node at Blocks[Block].Inlines[Inline].
type Position struct {
	Block  int
	Inline int
	Offset int
}

// Selection is a pair of positions. Start and End equal means a caret.
// Formatting operations require both ends inside the same block.
type Selection struct {
	Start Position
	End   Position
}

// Caret returns a collapsed selection at the given position.
func Caret(block, inline, offset int) Selection {
	p := Position{Block: block, Inline: inline, Offset: offset}
	return Selection{Start: p, End: p}
}

// Range returns a selection spanning two positions in one block.
func Range(block, startInline, startOffset, endInline, endOffset int) Selection {
	return Selection{
		Start: Position{Block: block, Inline: startInline, Offset: startOffset},
		End:   Position{Block: block, Inline: endInline, Offset: endOffset},
	}
}

// Collapsed reports whether the selection is a caret.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// normalized orders Start before End.
func (s Selection) normalized() Selection {
	if s.End.Inline < s.Start.Inline ||
		(s.End.Inline == s.Start.Inline && s.End.Offset < s.Start.Offset) {
		return Selection{Start: s.End, End: s.Start}
	}
	return s
}
