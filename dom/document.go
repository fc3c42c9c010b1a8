package dom

// Document is a page: a body element plus lookups over it.
type Document struct {
	Page string
	Body *Element
}

// NewDocument creates an empty document for the named page.
func NewDocument(page string) *Document {
	return &Document{
		Page: page,
		Body: NewElement("body"),
	}
}

// GetElementByID returns the first element with id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	return d.Body.Find(func(el *Element) bool { return el.ID == id })
}

// NodeByNumber returns the attached element with the given node number.
func (d *Document) NodeByNumber(node uint64) *Element {
	return d.Body.Find(func(el *Element) bool { return el.node == node })
}

// QueryClass returns every element carrying class.
func (d *Document) QueryClass(class string) []*Element {
	return d.Body.QueryClass(class)
}

// FindByData returns the first element carrying class whose data attribute key
// equals value.
func (d *Document) FindByData(class, key, value string) *Element {
	return d.Body.Find(func(el *Element) bool {
		if !el.HasClass(class) {
			return false
		}
		v, ok := el.Data(key)
		return ok && v == value
	})
}
