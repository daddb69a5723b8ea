package services

// Viewer is the authenticated caller of a request. A nil *Viewer is an anonymous visitor.
type Viewer struct {
	UserID   uint
	Username string
}

// Page is a LIMIT/OFFSET window. Limit 0 means no pagination at all.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized() Page {
	if p.Limit < 0 {
		p.Limit = 0
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Upload is a media file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}
