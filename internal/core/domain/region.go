package domain

// BoxRegion is a detected rectangular region in image coordinates.
// Width and height are non-negative. Regions are transient inputs to
// spatial association and are not persisted in a session.
type BoxRegion struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"class_name"`
}

// Area returns the box area.
func (b BoxRegion) Area() float64 {
	return b.Width * b.Height
}

// TextRegion is one OCR extraction with its bounding box.
type TextRegion struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Box        BoxRegion `json:"box"`
}

// FormField is a detected form element with the text value associated
// to it by spatial overlap, when one qualifies.
type FormField struct {
	FieldType  string    `json:"field_type"`
	Value      string    `json:"value,omitempty"`
	Box        BoxRegion `json:"box"`
	Confidence float64   `json:"confidence"`
}
