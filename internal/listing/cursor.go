package listing

// Cursor tracks pagination of a list. The page only advances after a
// successful non-empty fetch; a failed or empty next page leaves it where
// it was.
type Cursor struct {
	Page        int
	HasMore     bool
	LoadingMore bool
}

// NewCursor returns a cursor positioned before the first page.
func NewCursor() Cursor {
	return Cursor{Page: 1, HasMore: true}
}

// Reset moves the cursor back to page 1 and assumes more pages exist.
func (c *Cursor) Reset() {
	*c = NewCursor()
}

// BeginNext starts loading the next page and returns its number. It returns
// false while another next page is loading or when no pages remain.
func (c *Cursor) BeginNext() (page int, ok bool) {
	if c.LoadingMore || !c.HasMore {
		return 0, false
	}
	c.LoadingMore = true
	c.Page++
	return c.Page, true
}

// CompleteFirst records a first page of n items. A full page implies more.
func (c *Cursor) CompleteFirst(n, pageSize int) {
	c.CompleteFirstReported(n > 0 && n >= pageSize)
}

// CompleteFirstReported records a first page whose continuation is known
// from the server.
func (c *Cursor) CompleteFirstReported(hasMore bool) {
	c.Page = 1
	c.LoadingMore = false
	c.HasMore = hasMore
}

// CompleteNext records a next page of n items. An empty page ends
// pagination regardless of earlier pages.
func (c *Cursor) CompleteNext(n, pageSize int) {
	c.CompleteNextReported(n, n >= pageSize)
}

// CompleteNextReported records a next page of n items whose continuation
// is known from the server.
func (c *Cursor) CompleteNextReported(n int, hasMore bool) {
	c.LoadingMore = false
	if n == 0 {
		c.rollback()
		c.HasMore = false
		return
	}
	c.HasMore = hasMore
}

// FailNext undoes BeginNext so a retry requests the same page again.
func (c *Cursor) FailNext() {
	c.LoadingMore = false
	c.rollback()
}

func (c *Cursor) rollback() {
	if c.Page > 1 {
		c.Page--
	}
}
