package domain

// Cursor tracks which page a rail fetches next and whether its query has
// run out of pages. NextPage only moves forward until Reset.
type Cursor struct {
	NextPage  int  // 1-based index of the next page to fetch
	Exhausted bool // True once a page reported no successor
}

// NewCursor returns a cursor positioned on the first page
func NewCursor() Cursor {
	return Cursor{NextPage: 1}
}

// Reset rewinds the cursor to the first page
func (c *Cursor) Reset() {
	*c = NewCursor()
}

// Advance moves past a consumed page
func (c *Cursor) Advance(hasNext bool) {
	c.NextPage++
	if !hasNext {
		c.Exhausted = true
	}
}
