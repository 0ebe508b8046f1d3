package munch

// Item is the payload carried between stages: either a line of data or the end of stream
// marker. A producer enqueues EndOfStream exactly once, as its last item.
type Item struct {
	line string
	end  bool
}

// EndOfStream tells the consumer that its producer will never enqueue anything again.
var EndOfStream = Item{end: true}

// Data wraps a line into an Item.
func Data(line string) Item {
	return Item{line: line}
}

// Line returns the carried line. ok is false for EndOfStream.
func (i Item) Line() (line string, ok bool) {
	return i.line, !i.end
}

// IsEnd reports whether i is EndOfStream.
func (i Item) IsEnd() bool {
	return i.end
}

func (i Item) String() string {
	if i.end {
		return "<end of stream>"
	}
	return i.line
}
